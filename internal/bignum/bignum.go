// Package bignum is the arbitrary-precision façade every other engine in
// this module builds on. It wraps math/big.Int with the small, closed set
// of operations the RSA and DHM engines need (import/export to fixed
// big-endian buffers, powm, gcd, lcm, modular inverse, probabilistic
// primality) so call sites share one vocabulary instead of reaching into
// math/big ad hoc.
package bignum

import (
	"math/big"
)

// Int is a thin alias so call sites in this module read as bignum
// operations rather than raw math/big plumbing.
type Int = big.Int

// MinWitnesses is the floor on Miller-Rabin rounds for every primality
// check in this module.
const MinWitnesses = 50

// New returns a zero-valued Int.
func New() *Int { return new(big.Int) }

// FromBytes imports a big-endian, MSB-first, no-nails magnitude.
func FromBytes(b []byte) *Int {
	return new(big.Int).SetBytes(b)
}

// FromUint64 builds an Int from a native unsigned value (used for the
// 32-bit public exponent magnitude and small constants like 65536).
func FromUint64(v uint64) *Int {
	return new(big.Int).SetUint64(v)
}

// ExportBytes returns the minimal big-endian magnitude with no leading
// zeros. The caller is responsible for right-justifying the result into a
// fixed-width field (see package canon) whenever it lands in a wire
// format.
func ExportBytes(x *Int) []byte {
	return x.Bytes()
}

// SizeInBase2 returns the bit length of x, i.e. sizeinbase(x, 2).
func SizeInBase2(x *Int) int {
	return x.BitLen()
}

// Cmp, Add, Sub, Mul, Mod are thin re-exports so call sites never need to
// import math/big directly.
func Cmp(a, b *Int) int { return a.Cmp(b) }

func Add(a, b *Int) *Int { return new(big.Int).Add(a, b) }

func Sub(a, b *Int) *Int { return new(big.Int).Sub(a, b) }

func Mul(a, b *Int) *Int { return new(big.Int).Mul(a, b) }

func Mod(a, m *Int) *Int { return new(big.Int).Mod(a, m) }

// PowM computes base^exp mod m.
func PowM(base, exp, mod *Int) *Int {
	return new(big.Int).Exp(base, exp, mod)
}

// GCD computes the greatest common divisor of a and b.
func GCD(a, b *Int) *Int {
	return new(big.Int).GCD(nil, nil, a, b)
}

// LCM computes the least common multiple of a and b via gcd.
func LCM(a, b *Int) *Int {
	g := GCD(a, b)
	if g.Sign() == 0 {
		return new(big.Int)
	}
	q := new(big.Int).Div(a, g)
	return new(big.Int).Mul(q, b)
}

// Invert computes x^-1 mod m. ok is false when x and m are not coprime,
// in which case the returned Int is nil; failure is signalled through the
// return, never a panic.
func Invert(x, m *Int) (inv *Int, ok bool) {
	inv = new(big.Int).ModInverse(x, m)
	return inv, inv != nil
}

// ProbablyPrime runs Miller-Rabin with witnesses rounds (never fewer
// than MinWitnesses) via math/big and returns 0 (composite) or 1
// (probably prime). It never returns 2: no candidate is reported as
// definitely prime, not even a small one that math/big's check decides
// exactly.
func ProbablyPrime(x *Int, witnesses int) int {
	if witnesses < MinWitnesses {
		witnesses = MinWitnesses
	}
	if !x.ProbablyPrime(witnesses) {
		return 0
	}
	return 1
}

// NextPrime returns the smallest prime strictly greater than x, found by
// probing successive odd candidates with ProbablyPrime. x itself is never
// returned even when it is prime, matching GMP's mpz_nextprime contract.
// Because only odd candidates are probed, 2 is never returned: for x < 2
// the result is 3.
func NextPrime(x *Int) *Int {
	one := big.NewInt(1)
	two := big.NewInt(2)
	cand := new(big.Int).Add(x, one)
	if cand.Bit(0) == 0 {
		cand.Add(cand, one)
	}
	for ProbablyPrime(cand, MinWitnesses) == 0 {
		cand.Add(cand, two)
	}
	return cand
}

// Package rsakey is the key engine: RSA key-pair generation, the typed
// field-stream serialization format, and deserialization back into an
// in-memory key. Every field of a loaded key is optionally present;
// operations validate what they need at use time.
package rsakey

import (
	"math/big"

	"github.com/relayforge/rsaforge/internal/bignum"
)

// RecordType tags each field in the serialized key-file format.
type RecordType uint8

const (
	RecordModulus         RecordType = 1
	RecordPublicExponent  RecordType = 2
	RecordPrivateExponent RecordType = 3
	RecordP               RecordType = 4
	RecordQ               RecordType = 5
	RecordDP              RecordType = 6
	RecordDQ              RecordType = 7
	RecordQInv            RecordType = 8
)

// MinModulusBits is the generator's floor; the file engine also rejects
// keys below this width at load time regardless of how the key was
// produced.
const MinModulusBits = 768

// MaxModulusBits and BitsStep bound and quantize the --bits CLI flag.
const (
	MaxModulusBits = 262144
	BitsStep       = 256
)

const (
	DefaultBits   = 4096
	MaxWorkers    = 48
	startExponent = 65536
)

// Key is the sparse in-memory RSA key record. Each field is paired with a
// Has* flag recording whether the corresponding record was present when
// the key was loaded (or has been computed, for a freshly generated key).
// No field is required; operations validate what they need at use time.
type Key struct {
	Bits int // K: modulus bit width, set by the modulus record

	N    *big.Int
	E    *big.Int
	D    *big.Int
	P    *big.Int
	Q    *big.Int
	DP   *big.Int
	DQ   *big.Int
	QInv *big.Int

	HasN, HasE, HasD, HasP, HasQ, HasDP, HasDQ, HasQInv bool
}

// IsPrivate reports whether every private-key field is present.
func (k *Key) IsPrivate() bool {
	return k.HasN && k.HasD && k.HasP && k.HasQ && k.HasDP && k.HasDQ && k.HasQInv
}

// IsPublic reports whether the minimum fields for encryption/verification
// are present.
func (k *Key) IsPublic() bool {
	return k.HasN && k.HasE
}

// smallPrimesUpTo100 is the table p-1 and q-1 are screened against:
// neither may be divisible by any odd prime <= 100. Generated once via
// NextPrime starting from 1, so it holds 3 through 97; 2 is not in it.
var smallPrimesUpTo100 = buildSmallPrimes(100)

func buildSmallPrimes(limit int64) []*big.Int {
	var out []*big.Int
	cur := bignum.FromUint64(1)
	for {
		cur = bignum.NextPrime(cur)
		if cur.Cmp(big.NewInt(limit)) > 0 {
			break
		}
		out = append(out, cur)
	}
	return out
}

// hasSmallFactor reports whether x shares a factor with any odd prime
// <= 100.
func hasSmallFactor(x *big.Int) bool {
	for _, p := range smallPrimesUpTo100 {
		if bignum.GCD(x, p).Cmp(big.NewInt(1)) != 0 {
			return true
		}
	}
	return false
}

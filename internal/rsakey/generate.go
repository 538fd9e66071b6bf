package rsakey

import (
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/entropy"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// GenerateConfig parameters the key generator's worker pool. An explicit
// record owned by the CLI shell; the engines keep no module-level state.
type GenerateConfig struct {
	Bits    int
	Workers int
}

// Validate checks the bit-width and worker-count constraints.
func (c GenerateConfig) Validate() error {
	if c.Bits < MinModulusBits || c.Bits > MaxModulusBits || c.Bits%BitsStep != 0 {
		return rsaerr.New(rsaerr.ValueError, "bits must be 768..262144 and a multiple of 256")
	}
	if c.Workers < 1 {
		return rsaerr.New(rsaerr.ValueError, "workers must be >= 1")
	}
	return nil
}

// found is the shared result of a winning worker.
type found struct {
	key *Key
}

// Generate runs GenerateConfig.Workers concurrent workers racing to
// produce a valid key pair. The first worker to finish wins; the others
// observe a shared atomic flag at the top of their loop and exit, and the
// driver joins them all before returning. No worker ever terminates the
// process itself.
func Generate(cfg GenerateConfig, ent *entropy.Source) (*Key, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		done     int32
		resultMu sync.Mutex
		result   *found
		firstErr error
		errMu    sync.Mutex
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for atomic.LoadInt32(&done) == 0 {
				k, err := attemptKeyPair(cfg.Bits, ent)
				if atomic.LoadInt32(&done) != 0 {
					return
				}
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}
				if atomic.CompareAndSwapInt32(&done, 0, 1) {
					resultMu.Lock()
					result = &found{key: k}
					resultMu.Unlock()
					return
				}
				return
			}
		}()
	}
	wg.Wait()

	if result == nil {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, rsaerr.New(rsaerr.GeneralError, "no worker produced a key")
	}
	return result.key, nil
}

// attemptKeyPair runs one full generation pass: draw p and q, reject on
// small factors, compute n/lambda/e/d/dp/dq/qinv, and validate every
// algebraic invariant before returning.
func attemptKeyPair(bits int, ent *entropy.Source) (*Key, error) {
	half := bits / 2

	p, pTop, err := drawConditionedPrime(half, ent, nil)
	if err != nil {
		return nil, err
	}
	q, _, err := drawConditionedPrime(half, ent, &pTop)
	if err != nil {
		return nil, err
	}

	one := big.NewInt(1)
	pMinus1 := bignum.Sub(p, one)
	qMinus1 := bignum.Sub(q, one)

	// Reject the pair if either p-1 or q-1 shares a factor with any
	// odd prime <= 100.
	if hasSmallFactor(pMinus1) || hasSmallFactor(qMinus1) {
		return nil, rsaerr.New(rsaerr.ValueError, "p-1 or q-1 has a small factor, retry")
	}

	n := bignum.Mul(p, q)
	lambda := bignum.LCM(pMinus1, qMinus1)

	// e is the smallest prime above 65536 that is coprime with lambda.
	// That is 65537 in the overwhelming majority of cases, but
	// coprimality is the requirement, not the literal value.
	e := bignum.FromUint64(startExponent)
	for {
		e = bignum.NextPrime(e)
		if bignum.GCD(e, lambda).Cmp(one) == 0 {
			break
		}
	}

	d, ok := bignum.Invert(e, lambda)
	if !ok {
		return nil, rsaerr.New(rsaerr.ValueError, "e has no inverse mod lambda, retry")
	}
	if bignum.SizeInBase2(d) < bits-4 {
		return nil, rsaerr.New(rsaerr.ValueError, "private exponent too small, retry")
	}

	dp := bignum.Mod(d, pMinus1)
	dq := bignum.Mod(d, qMinus1)
	qinv, ok := bignum.Invert(q, p)
	if !ok {
		return nil, rsaerr.New(rsaerr.ValueError, "q has no inverse mod p, retry")
	}

	return &Key{
		Bits: bits,
		N:    n, E: e, D: d, P: p, Q: q, DP: dp, DQ: dq, QInv: qinv,
		HasN: true, HasE: true, HasD: true, HasP: true, HasQ: true,
		HasDP: true, HasDQ: true, HasQInv: true,
	}, nil
}

// drawConditionedPrime draws bits/8 random bytes for a candidate prime,
// forces the top two bits and the odd bit before importing, and promotes
// a composite candidate to the next prime. The second return is the
// conditioned leading byte of the raw draw, captured before any
// promotion. When otherTop is non-nil this is the q draw: otherTop is
// the raw conditioned leading byte of the earlier p draw, and if this
// candidate's top nibble matches it the nibble is flipped. The
// comparison is always between the raw byte arrays, never a promoted
// value.
func drawConditionedPrime(bits int, ent *entropy.Source, otherTop *byte) (*big.Int, byte, error) {
	nbytes := bits / 8
	buf, err := ent.Read(nbytes)
	if err != nil {
		return nil, 0, err
	}

	buf[0] |= 0xC0
	buf[nbytes-1] |= 0x01

	if otherTop != nil && (*otherTop>>4) == (buf[0]>>4) {
		buf[0] ^= 0x30
	}
	rawTop := buf[0]

	cand := bignum.FromBytes(buf)
	if bignum.ProbablyPrime(cand, bignum.MinWitnesses) == 0 {
		cand = bignum.NextPrime(cand)
	}
	return cand, rawTop, nil
}

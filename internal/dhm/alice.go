package dhm

import (
	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// BuildAlicePacket draws a fresh modulus p, picks g from {3, 5}, draws
// Alice's private exponent a, and computes A = g^a mod p. The session
// retains p, g, and a so FinishAlice can later derive the shared secret
// from Bob's reply.
func (s *Session) BuildAlicePacket() (*AlicePacket, error) {
	p, err := drawModulusPrime(s.entropy)
	if err != nil {
		return nil, err
	}
	g, err := chooseGenerator(s.entropy)
	if err != nil {
		return nil, err
	}
	a, err := drawExponent(s.entropy)
	if err != nil {
		return nil, err
	}

	gBig := bignum.FromUint64(uint64(g))
	A := bignum.PowM(gBig, a, p)

	s.p, s.g, s.a = p, gBig, a

	pkt := &AlicePacket{PackType: PackTypeAlice, GUID: s.guid, G: g}
	copy(pkt.P[:], exportFixed(p, ModulusBytes))
	copy(pkt.A[:], exportFixed(A, ModulusBytes))

	gField := make([]byte, 2)
	putUint16(gField, g)
	pkt.Hash = hashAfter(pkt.GUID[:], gField, pkt.P[:], pkt.A[:])
	return pkt, nil
}

// FinishAlice validates Bob's reply packet against the session GUID and
// self-hash, then derives the shared secret K = B^a mod p.
func (s *Session) FinishAlice(bob *BobPacket) error {
	if bob.PackType != PackTypeBob {
		return rsaerr.New(rsaerr.UnknownPacketType, "not a Bob packet")
	}
	if bob.GUID != s.guid {
		return rsaerr.New(rsaerr.ValueError, "session GUID mismatch")
	}
	want := hashAfter(bob.GUID[:], bob.B[:])
	if want != bob.Hash {
		return rsaerr.New(rsaerr.HashMismatch, "Bob packet self-hash does not match")
	}

	B := bignum.FromBytes(bob.B[:])
	k := bignum.PowM(B, s.a, s.p)
	copy(s.secret[:], exportFixed(k, ModulusBytes))
	return nil
}

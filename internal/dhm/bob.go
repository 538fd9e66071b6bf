package dhm

import (
	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// AcceptAlicePacket validates an incoming Alice packet's self-hash, draws
// Bob's own private exponent b, computes B = g^b mod p, and returns the
// reply packet with the shared secret K = A^b mod p stored in the
// session. Bob retains no state across calls; the whole exchange
// completes in one round trip on his side.
func (s *Session) AcceptAlicePacket(alice *AlicePacket) (*BobPacket, error) {
	if alice.PackType != PackTypeAlice {
		return nil, rsaerr.New(rsaerr.UnknownPacketType, "not an Alice packet")
	}

	gField := make([]byte, 2)
	putUint16(gField, alice.G)
	want := hashAfter(alice.GUID[:], gField, alice.P[:], alice.A[:])
	if want != alice.Hash {
		return nil, rsaerr.New(rsaerr.HashMismatch, "Alice packet self-hash does not match")
	}

	p := bignum.FromBytes(alice.P[:])
	A := bignum.FromBytes(alice.A[:])
	g := bignum.FromUint64(uint64(alice.G))

	b, err := drawExponent(s.entropy)
	if err != nil {
		return nil, err
	}
	B := bignum.PowM(g, b, p)
	k := bignum.PowM(A, b, p)
	copy(s.secret[:], exportFixed(k, ModulusBytes))

	s.guid = alice.GUID
	pkt := &BobPacket{PackType: PackTypeBob, GUID: s.guid}
	copy(pkt.B[:], exportFixed(B, ModulusBytes))
	pkt.Hash = hashAfter(pkt.GUID[:], pkt.B[:])
	return pkt, nil
}

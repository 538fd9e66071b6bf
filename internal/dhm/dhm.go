// Package dhm implements the Diffie-Hellman-Merkle key-exchange session:
// two self-authenticating packets exchanged over an untrusted channel
// that let Alice and Bob derive the same shared secret. Each side draws a
// random exponent, raises a generator to it modulo a large prime, and
// authenticates its packet with a hash over the wire bytes.
package dhm

import (
	"crypto/sha256"
	"encoding/binary"

	uuid "github.com/satori/go.uuid"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/entropy"
)

// Wire sizes: public modulus 2176 bits = 272 bytes; private exponent
// 368 bits = 46 bytes.
const (
	ModulusBits  = 2176
	ModulusBytes = ModulusBits / 8 // 272
	ExpBits      = 368
	ExpBytes     = ExpBits / 8 // 46
	GUIDBytes    = 12
	HashBytes    = 28 // SHA-224
)

// Packet type tags, network byte order.
const (
	PackTypeAlice uint16 = 0xC1A5
	PackTypeBob   uint16 = 0xC2A5
)

// AlicePacket is Alice's half of the exchange.
type AlicePacket struct {
	PackType uint16
	Hash     [HashBytes]byte
	GUID     [GUIDBytes]byte
	G        uint16 // 3 or 5
	P        [ModulusBytes]byte
	A        [ModulusBytes]byte
}

// BobPacket is Bob's half of the exchange.
type BobPacket struct {
	PackType uint16
	Hash     [HashBytes]byte
	GUID     [GUIDBytes]byte
	B        [ModulusBytes]byte
}

// Session owns the entropy handle, the session GUID, and the derived
// secret slot.
type Session struct {
	entropy *entropy.Source
	guid    [GUIDBytes]byte
	secret  [ModulusBytes]byte

	// retained across Alice's two calls within one exchange
	p *bignum.Int
	g *bignum.Int
	a *bignum.Int
}

// NewSession binds a session to an already-opened (and warmed) entropy
// handle and populates a random session GUID from a v4 UUID's leading
// bytes.
func NewSession(ent *entropy.Source) (*Session, error) {
	id := uuid.NewV4()
	var guid [GUIDBytes]byte
	copy(guid[:], id.Bytes()[:GUIDBytes])
	return &Session{entropy: ent, guid: guid}, nil
}

// GUID returns the session's 12-byte identifier.
func (s *Session) GUID() [GUIDBytes]byte { return s.guid }

// Secret returns the derived shared secret once both sides of the
// exchange have completed.
func (s *Session) Secret() [ModulusBytes]byte { return s.secret }

// hashAfter computes the SHA-224 self-hash over everything after a
// packet's type and hash fields: the GUID plus whatever fields follow
// it.
func hashAfter(fields ...[]byte) [HashBytes]byte {
	h := sha256.New224()
	for _, f := range fields {
		h.Write(f)
	}
	var out [HashBytes]byte
	copy(out[:], h.Sum(nil))
	return out
}

func putUint16(b []byte, v uint16) {
	binary.BigEndian.PutUint16(b, v)
}

func chooseGenerator(ent *entropy.Source) (uint16, error) {
	draw, err := ent.Read(4)
	if err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(draw)
	if v%2 == 0 {
		return 3, nil
	}
	return 5, nil
}

// drawModulusPrime draws a 272-byte candidate with the top bit and low bit
// forced (2^2175 <= p < 2^2176, odd) and promotes to the next prime if
// composite.
func drawModulusPrime(ent *entropy.Source) (*bignum.Int, error) {
	buf, err := ent.Read(ModulusBytes)
	if err != nil {
		return nil, err
	}
	buf[0] |= 0x80
	buf[ModulusBytes-1] |= 0x01
	cand := bignum.FromBytes(buf)
	if bignum.ProbablyPrime(cand, bignum.MinWitnesses) == 0 {
		cand = bignum.NextPrime(cand)
	}
	return cand, nil
}

func drawExponent(ent *entropy.Source) (*bignum.Int, error) {
	buf, err := ent.Read(ExpBytes)
	if err != nil {
		return nil, err
	}
	return bignum.FromBytes(buf), nil
}

func exportFixed(x *bignum.Int, width int) []byte {
	return canon.RightJustify(bignum.ExportBytes(x), width)
}

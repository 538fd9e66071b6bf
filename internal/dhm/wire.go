package dhm

import (
	"encoding/binary"

	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// Marshal serializes an Alice packet to its wire layout: packtype, hash,
// GUID, g, p, A, all fixed-width and in network byte order.
func (p *AlicePacket) Marshal() []byte {
	buf := make([]byte, 2+HashBytes+GUIDBytes+2+ModulusBytes+ModulusBytes)
	off := 0
	binary.BigEndian.PutUint16(buf[off:], p.PackType)
	off += 2
	copy(buf[off:], p.Hash[:])
	off += HashBytes
	copy(buf[off:], p.GUID[:])
	off += GUIDBytes
	binary.BigEndian.PutUint16(buf[off:], p.G)
	off += 2
	copy(buf[off:], p.P[:])
	off += ModulusBytes
	copy(buf[off:], p.A[:])
	return buf
}

// UnmarshalAlicePacket is Marshal's inverse.
func UnmarshalAlicePacket(buf []byte) (*AlicePacket, error) {
	want := 2 + HashBytes + GUIDBytes + 2 + ModulusBytes + ModulusBytes
	if len(buf) != want {
		return nil, rsaerr.New(rsaerr.BadBlockSize, "Alice packet has the wrong length")
	}
	p := &AlicePacket{}
	off := 0
	p.PackType = binary.BigEndian.Uint16(buf[off:])
	off += 2
	copy(p.Hash[:], buf[off:off+HashBytes])
	off += HashBytes
	copy(p.GUID[:], buf[off:off+GUIDBytes])
	off += GUIDBytes
	p.G = binary.BigEndian.Uint16(buf[off:])
	off += 2
	copy(p.P[:], buf[off:off+ModulusBytes])
	off += ModulusBytes
	copy(p.A[:], buf[off:off+ModulusBytes])
	return p, nil
}

// Marshal serializes a Bob packet to its wire layout.
func (p *BobPacket) Marshal() []byte {
	buf := make([]byte, 2+HashBytes+GUIDBytes+ModulusBytes)
	off := 0
	binary.BigEndian.PutUint16(buf[off:], p.PackType)
	off += 2
	copy(buf[off:], p.Hash[:])
	off += HashBytes
	copy(buf[off:], p.GUID[:])
	off += GUIDBytes
	copy(buf[off:], p.B[:])
	return buf
}

// UnmarshalBobPacket is Marshal's inverse.
func UnmarshalBobPacket(buf []byte) (*BobPacket, error) {
	want := 2 + HashBytes + GUIDBytes + ModulusBytes
	if len(buf) != want {
		return nil, rsaerr.New(rsaerr.BadBlockSize, "Bob packet has the wrong length")
	}
	p := &BobPacket{}
	off := 0
	p.PackType = binary.BigEndian.Uint16(buf[off:])
	off += 2
	copy(p.Hash[:], buf[off:off+HashBytes])
	off += HashBytes
	copy(p.GUID[:], buf[off:off+GUIDBytes])
	off += GUIDBytes
	copy(p.B[:], buf[off:off+ModulusBytes])
	return p, nil
}

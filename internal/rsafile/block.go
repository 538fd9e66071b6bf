// Package rsafile is the file engine: given a loaded key and an
// operation, it turns a plaintext stream into a stream of RSA blocks (or
// back), and computes/verifies the signed envelope.
package rsafile

import (
	"encoding/binary"
	"math"

	"github.com/relayforge/rsaforge/internal/entropy"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// headerSize is sizeof(fileinfoHeader) packed with no padding: flags(1)
// + size(4) + size_xor(4) + crc(4) + crc_xor(4) + time(8) + lat(4) +
// lon(4) = 33 bytes. Encrypt and Decrypt must always agree on this
// constant; the on-disk format has no other record of it.
const headerSize = 33

// blockOverhead is the 1 leading zero byte + 7 padding bytes + 4 trailing
// reserved bytes every block carries. Structured content begins at
// payloadStart; the payload area runs
// [payloadStart, payloadStart+BlockCapacity), leaving 4 trailing bytes of
// the block as untouched random padding.
const (
	blockOverhead = 12
	payloadStart  = 8
)

// sigBlockPayload is the signature block's structured payload: a 64-byte
// SHA-512 digest + time(8) + lat(4) + lon(4) = 80 bytes.
const sigBlockPayload = 64 + 8 + 4 + 4

// Sizing carries the block-size arithmetic derived from a modulus width,
// computed once per operation.
type Sizing struct {
	BlockSize          int // K/8
	BlockCapacity      int // BlockSize - 12
	FirstBlockCapacity int // BlockCapacity - headerSize
}

// NewSizing validates the modulus width against the generator's minimum
// and derives the block arithmetic every operation shares.
func NewSizing(bits int) (Sizing, error) {
	if bits < 768 {
		return Sizing{}, rsaerr.New(rsaerr.ModulusTooSmall,
			"modulus must be at least 768 bits (generator minimum)")
	}
	blockSize := bits / 8
	blockCapacity := blockSize - blockOverhead
	firstBlockCapacity := blockCapacity - headerSize
	return Sizing{
		BlockSize:          blockSize,
		BlockCapacity:      blockCapacity,
		FirstBlockCapacity: firstBlockCapacity,
	}, nil
}

// fileinfoHeader is the authenticated envelope at the start of the first
// block's payload area. The high bit of Flags is reserved for "signed
// content" even though the sign operation writes a separate signature
// file rather than setting it; Encrypt always leaves it clear.
type fileinfoHeader struct {
	Flags     byte
	Size      uint32
	SizeXor   uint32
	Crc       uint32
	CrcXor    uint32
	Time      int64
	Latitude  float32
	Longitude float32
}

// pack writes h in canonical (big-endian) layout. encoding/binary.BigEndian
// writes each value MSB-first regardless of host architecture;
// canon.ReverseInt64/ReverseFloat32 remain available for callers that
// need to fix up an existing host-order buffer instead.
func (h fileinfoHeader) pack() []byte {
	buf := make([]byte, headerSize)
	buf[0] = h.Flags
	binary.BigEndian.PutUint32(buf[1:5], h.Size)
	binary.BigEndian.PutUint32(buf[5:9], h.SizeXor)
	binary.BigEndian.PutUint32(buf[9:13], h.Crc)
	binary.BigEndian.PutUint32(buf[13:17], h.CrcXor)
	binary.BigEndian.PutUint64(buf[17:25], uint64(h.Time))
	binary.BigEndian.PutUint32(buf[25:29], math.Float32bits(h.Latitude))
	binary.BigEndian.PutUint32(buf[29:33], math.Float32bits(h.Longitude))
	return buf
}

func unpackHeader(buf []byte) fileinfoHeader {
	var h fileinfoHeader
	h.Flags = buf[0]
	h.Size = binary.BigEndian.Uint32(buf[1:5])
	h.SizeXor = binary.BigEndian.Uint32(buf[5:9])
	h.Crc = binary.BigEndian.Uint32(buf[9:13])
	h.CrcXor = binary.BigEndian.Uint32(buf[13:17])
	h.Time = int64(binary.BigEndian.Uint64(buf[17:25]))
	h.Latitude = math.Float32frombits(binary.BigEndian.Uint32(buf[25:29]))
	h.Longitude = math.Float32frombits(binary.BigEndian.Uint32(buf[29:33]))
	return h
}

// entropyBlock fills an entire block-sized buffer with random bytes, then
// zeroes byte 0 while leaving bytes 1-7 as random padding. The zero byte
// forces the big-endian magnitude strictly below n, because n's top bit
// is set.
func entropyBlock(size int, ent *entropy.Source) ([]byte, error) {
	buf, err := ent.Read(size)
	if err != nil {
		return nil, err
	}
	buf[0] = 0x00
	return buf, nil
}

package rsakey

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// record is one typed field in the serialized key-file format:
// {type u8, bit_width u32 big-endian, payload big-endian magnitude of
// ceil(bit_width/8) bytes}.
type record struct {
	typ      RecordType
	bitWidth uint32
	payload  []byte
}

func writeRecord(w io.Writer, r record) error {
	if _, err := w.Write([]byte{byte(r.typ)}); err != nil {
		return rsaerr.Wrap(rsaerr.KeyFileIO, "write record type", err)
	}
	var widthBuf [4]byte
	binary.BigEndian.PutUint32(widthBuf[:], r.bitWidth)
	if _, err := w.Write(widthBuf[:]); err != nil {
		return rsaerr.Wrap(rsaerr.KeyFileIO, "write record width", err)
	}
	if _, err := w.Write(r.payload); err != nil {
		return rsaerr.Wrap(rsaerr.KeyFileIO, "write record payload", err)
	}
	return nil
}

func fieldRecord(typ RecordType, x *big.Int) record {
	bits := uint32(bignum.SizeInBase2(x))
	width := (bits + 7) / 8
	payload := canon.RightJustify(bignum.ExportBytes(x), int(width))
	return record{typ: typ, bitWidth: bits, payload: payload}
}

// exponentRecord stores e as a fixed 32-bit magnitude.
func exponentRecord(e *big.Int) record {
	payload := canon.RightJustify(bignum.ExportBytes(e), 4)
	return record{typ: RecordPublicExponent, bitWidth: 32, payload: payload}
}

// SerializePublic writes records {1, 2}: modulus and public exponent.
func (k *Key) SerializePublic(w io.Writer) error {
	if !k.HasN || !k.HasE {
		return rsaerr.New(rsaerr.MissingKeyField, "key is missing n or e")
	}
	if err := writeRecord(w, fieldRecord(RecordModulus, k.N)); err != nil {
		return err
	}
	return writeRecord(w, exponentRecord(k.E))
}

// SerializePrivate writes records {1..8} in order.
func (k *Key) SerializePrivate(w io.Writer) error {
	if !k.IsPrivate() || !k.HasE {
		return rsaerr.New(rsaerr.MissingKeyField, "key is missing a required private field")
	}
	recs := []record{
		fieldRecord(RecordModulus, k.N),
		exponentRecord(k.E),
		fieldRecord(RecordPrivateExponent, k.D),
		fieldRecord(RecordP, k.P),
		fieldRecord(RecordQ, k.Q),
		fieldRecord(RecordDP, k.DP),
		fieldRecord(RecordDQ, k.DQ),
		fieldRecord(RecordQInv, k.QInv),
	}
	for _, r := range recs {
		if err := writeRecord(w, r); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads typed records until EOF and populates a Key. Unknown
// record types are tolerated by skipping their payload bytes. No record
// is required; callers validate the fields they need at use time.
func Deserialize(r io.Reader) (*Key, error) {
	k := &Key{}
	br := bufio.NewReader(r)

	for {
		var hdr [5]byte
		n, err := io.ReadFull(br, hdr[:])
		if err == io.EOF && n == 0 {
			break
		}
		if err != nil {
			return nil, rsaerr.Wrap(rsaerr.KeyFieldTruncated, "truncated record header", err)
		}

		typ := RecordType(hdr[0])
		bitWidth := binary.BigEndian.Uint32(hdr[1:5])
		nbytes := (int(bitWidth) + 7) / 8

		payload := make([]byte, nbytes)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, rsaerr.Wrap(rsaerr.KeyFieldTruncated, "truncated record payload", err)
		}

		switch typ {
		case RecordModulus:
			k.N = bignum.FromBytes(payload)
			k.HasN = true
			k.Bits = int(bitWidth)
		case RecordPublicExponent:
			k.E = bignum.FromBytes(payload)
			k.HasE = true
		case RecordPrivateExponent:
			k.D = bignum.FromBytes(payload)
			k.HasD = true
		case RecordP:
			k.P = bignum.FromBytes(payload)
			k.HasP = true
		case RecordQ:
			k.Q = bignum.FromBytes(payload)
			k.HasQ = true
		case RecordDP:
			k.DP = bignum.FromBytes(payload)
			k.HasDP = true
		case RecordDQ:
			k.DQ = bignum.FromBytes(payload)
			k.HasDQ = true
		case RecordQInv:
			k.QInv = bignum.FromBytes(payload)
			k.HasQInv = true
		default:
			// Unknown field: already consumed via the payload read above.
		}
	}
	return k, nil
}

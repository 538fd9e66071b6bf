package rsafile

import (
	"crypto/sha512"
	"encoding/binary"
	"io"
	"math"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

const readChunkSize = 4096

// Sign computes the SHA-512 digest of in (4 KiB reads) and writes a
// single block-sized signature encrypted with the private exponent.
func Sign(cfg Config, sizing Sizing, in io.Reader, out io.Writer) error {
	if !cfg.Key.IsPrivate() {
		return rsaerr.New(rsaerr.MissingKeyField, "key has no private fields for signing")
	}
	if sigBlockPayload > sizing.BlockCapacity {
		return rsaerr.New(rsaerr.ModulusTooSmall, "modulus too small to hold a signature payload")
	}

	digest, err := sha512Sum(in)
	if err != nil {
		return err
	}

	buf, err := entropyBlock(sizing.BlockSize, cfg.Entropy)
	if err != nil {
		return err
	}
	copy(buf[payloadStart:payloadStart+64], digest[:])
	putSignatureTail(buf, cfg.stampTime(), cfg.Latitude, cfg.Longitude)

	m := bignum.FromBytes(buf)
	s := bignum.PowM(m, cfg.Key.D, cfg.Key.N)
	sbuf := canon.RightJustify(bignum.ExportBytes(s), sizing.BlockSize)
	if _, err := out.Write(sbuf); err != nil {
		return rsaerr.Wrap(rsaerr.GeneralError, "write signature block", err)
	}
	return nil
}

func sha512Sum(r io.Reader) ([64]byte, error) {
	h := sha512.New()
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			var zero [64]byte
			return zero, rsaerr.Wrap(rsaerr.GeneralError, "read input for signing", err)
		}
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// putSignatureTail writes time/lat/lon starting at payloadStart+64
// (bytes 72..87 of the block): digest, then time i64, latitude f32,
// longitude f32, all big-endian.
func putSignatureTail(buf []byte, t int64, lat, lon float32) {
	off := payloadStart + 64
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(t))
	binary.BigEndian.PutUint32(buf[off+8:off+12], math.Float32bits(lat))
	binary.BigEndian.PutUint32(buf[off+12:off+16], math.Float32bits(lon))
}

// readSignatureTail is verify.go's counterpart to putSignatureTail.
func readSignatureTail(buf []byte) (t int64, lat, lon float32) {
	off := payloadStart + 64
	t = int64(binary.BigEndian.Uint64(buf[off : off+8]))
	lat = math.Float32frombits(binary.BigEndian.Uint32(buf[off+8 : off+12]))
	lon = math.Float32frombits(binary.BigEndian.Uint32(buf[off+12 : off+16]))
	return
}

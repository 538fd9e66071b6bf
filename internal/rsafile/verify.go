package rsafile

import (
	"crypto/subtle"
	"io"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// VerifyResult carries the outcome and, on success, the timestamp and
// geolocation embedded in the signature block.
type VerifyResult struct {
	OK        bool
	Time      int64
	Latitude  float32
	Longitude float32
}

// Verify reads exactly sizing.BlockSize bytes from sig, decrypts with the
// public exponent, and compares the embedded digest against the SHA-512
// of in.
func Verify(cfg Config, sizing Sizing, in io.Reader, sig io.Reader) (VerifyResult, error) {
	if !cfg.Key.IsPublic() {
		return VerifyResult{}, rsaerr.New(rsaerr.MissingKeyField, "key has no modulus/exponent for verification")
	}

	sbuf := make([]byte, sizing.BlockSize)
	if _, err := io.ReadFull(sig, sbuf); err != nil {
		return VerifyResult{}, rsaerr.Wrap(rsaerr.BadBlockSize, "signature file is not exactly one block", err)
	}
	var extra [1]byte
	if _, err := io.ReadFull(sig, extra[:]); err != io.EOF {
		if err == nil {
			return VerifyResult{}, rsaerr.New(rsaerr.BadBlockSize, "signature file is longer than one block")
		}
		return VerifyResult{}, rsaerr.Wrap(rsaerr.BadBlockSize, "signature file is not exactly one block", err)
	}

	s := bignum.FromBytes(sbuf)
	m := bignum.PowM(s, cfg.Key.E, cfg.Key.N)
	mbuf := canon.RightJustify(bignum.ExportBytes(m), sizing.BlockSize)

	digest, err := sha512Sum(in)
	if err != nil {
		return VerifyResult{}, err
	}

	embedded := mbuf[payloadStart : payloadStart+64]
	ok := subtle.ConstantTimeCompare(embedded, digest[:]) == 1
	if !ok {
		return VerifyResult{OK: false}, nil
	}

	t, lat, lon := readSignatureTail(mbuf)
	return VerifyResult{OK: true, Time: t, Latitude: lat, Longitude: lon}, nil
}

package rsafile

import (
	"io"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// Encrypt reads the entire content of in (via CRC32), rewinds, and writes
// a sequence of Sizing.BlockSize ciphertext blocks to out. in must be an
// io.ReadSeeker so the CRC pass and the encode pass can both read from
// the start.
func Encrypt(cfg Config, sizing Sizing, in io.ReadSeeker, size int64, out io.Writer) (crc uint32, err error) {
	if !cfg.Key.IsPublic() {
		return 0, rsaerr.New(rsaerr.MissingKeyField, "key has no modulus/exponent for encryption")
	}

	crc, err = canon.CRC32(in)
	if err != nil {
		return 0, err
	}
	if _, err = in.Seek(0, io.SeekStart); err != nil {
		return 0, rsaerr.Wrap(rsaerr.GeneralError, "rewind input", err)
	}

	flagByte, err := cfg.Entropy.Read(1)
	if err != nil {
		return 0, err
	}
	header := fileinfoHeader{
		Flags:     flagByte[0] & 0x7F, // high bit 0 == encrypted content
		Size:      uint32(size),
		SizeXor:   uint32(size) ^ 0xFFFFFFFF,
		Crc:       crc,
		CrcXor:    crc ^ 0xFFFFFFFF,
		Time:      cfg.stampTime(),
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
	}

	// First block: header + up to FirstBlockCapacity plaintext bytes,
	// both confined to the payload area [payloadStart, payloadStart+BlockCapacity).
	buf, err := entropyBlock(sizing.BlockSize, cfg.Entropy)
	if err != nil {
		return 0, err
	}
	copy(buf[payloadStart:payloadStart+headerSize], header.pack())
	payloadEnd := payloadStart + sizing.BlockCapacity
	n, err := io.ReadFull(in, buf[payloadStart+headerSize:payloadEnd])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, rsaerr.Wrap(rsaerr.GeneralError, "read first block payload", err)
	}
	lastBlock := n < sizing.FirstBlockCapacity
	if err = encryptAndWriteBlock(cfg, sizing, buf, out); err != nil {
		return 0, err
	}
	if lastBlock {
		return crc, nil
	}

	// Subsequent blocks: the entire payload area is plaintext. A short
	// read marks the last block; a read of exactly zero bytes means the
	// input ended on a capacity boundary and no trailing block is emitted.
	for {
		buf, err = entropyBlock(sizing.BlockSize, cfg.Entropy)
		if err != nil {
			return 0, err
		}
		n, err = io.ReadFull(in, buf[payloadStart:payloadEnd])
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, rsaerr.Wrap(rsaerr.GeneralError, "read block payload", err)
		}
		if n == 0 {
			break
		}
		if err = encryptAndWriteBlock(cfg, sizing, buf, out); err != nil {
			return 0, err
		}
		if n < sizing.BlockCapacity {
			break
		}
	}
	return crc, nil
}

// encryptAndWriteBlock interprets buf as a big-endian magnitude m < n,
// computes c = m^e mod n, right-justifies the export back to
// sizing.BlockSize bytes, and writes it to out.
func encryptAndWriteBlock(cfg Config, sizing Sizing, buf []byte, out io.Writer) error {
	m := bignum.FromBytes(buf)
	c := bignum.PowM(m, cfg.Key.E, cfg.Key.N)
	cbuf := canon.RightJustify(bignum.ExportBytes(c), sizing.BlockSize)
	if _, err := out.Write(cbuf); err != nil {
		return rsaerr.Wrap(rsaerr.GeneralError, "write ciphertext block", err)
	}
	return nil
}

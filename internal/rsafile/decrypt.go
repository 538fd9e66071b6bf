package rsafile

import (
	"io"
	"sort"
	"sync"

	"github.com/relayforge/rsaforge/internal/bignum"
	"github.com/relayforge/rsaforge/internal/canon"
	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// decryptedBlock is one worker's result, tagged with its 1-based ciphertext
// index so the driver can commit blocks to the output in ascending order
// regardless of completion order.
type decryptedBlock struct {
	index int
	plain []byte
}

// Decrypt requires in's length to be a multiple of sizing.BlockSize. It
// dispatches ciphertext blocks to cfg.Workers goroutines in batches and
// commits the resulting plaintext to out strictly in ascending
// block-index order within each batch. Returns the CRC of the plaintext
// it wrote and an error for any fatal condition; wrong-key detection on
// block 1 is the one per-block error that is never recoverable.
func Decrypt(cfg Config, sizing Sizing, in io.Reader, inSize int64, out io.Writer) (outCRC uint32, crcOK bool, err error) {
	if !cfg.Key.IsPrivate() {
		return 0, false, rsaerr.New(rsaerr.MissingKeyField, "key has no private fields for decryption")
	}
	if inSize%int64(sizing.BlockSize) != 0 {
		return 0, false, rsaerr.New(rsaerr.BadBlockSize, "ciphertext length is not a multiple of the block size")
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		written      int64
		declaredSize uint32
		declaredCrc  uint32
		haveSize     bool
		index        = 1
		crcWriter    = newTrackingWriter(out)
		done         = false
	)

	for !done {
		batch := make([][]byte, 0, workers)
		for len(batch) < workers {
			buf := make([]byte, sizing.BlockSize)
			n, rerr := io.ReadFull(in, buf)
			if rerr == io.EOF && n == 0 {
				done = true
				break
			}
			if rerr != nil {
				return 0, false, rsaerr.Wrap(rsaerr.BadBlockSize, "short ciphertext block read", rerr)
			}
			batch = append(batch, buf)
		}
		if len(batch) == 0 {
			break
		}

		results := make([]decryptedBlock, len(batch))
		var wg sync.WaitGroup
		for i, block := range batch {
			wg.Add(1)
			go func(i int, block []byte, idx int) {
				defer wg.Done()
				results[i] = decryptedBlock{index: idx, plain: decryptBlock(cfg, sizing, block)}
			}(i, block, index+i)
		}
		wg.Wait()
		index += len(batch)

		sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

		for _, r := range results {
			if r.index == 1 {
				h := unpackHeader(r.plain[:headerSize])
				if (h.Size^h.SizeXor) != 0xFFFFFFFF || (h.Crc^h.CrcXor) != 0xFFFFFFFF {
					return 0, false, rsaerr.New(rsaerr.WrongKeyOrCorrupt,
						"size/crc complement mismatch after decrypting block 1: wrong key or damaged key")
				}
				declaredSize = h.Size
				declaredCrc = h.Crc
				haveSize = true
				remain := int64(declaredSize) - written
				n := min64(remain, int64(sizing.FirstBlockCapacity))
				if n > 0 {
					if _, werr := crcWriter.Write(r.plain[headerSize : headerSize+int(n)]); werr != nil {
						return 0, false, rsaerr.Wrap(rsaerr.GeneralError, "write plaintext", werr)
					}
					written += n
				}
			} else {
				remain := int64(declaredSize) - written
				n := min64(remain, int64(sizing.BlockCapacity))
				if n > 0 {
					if _, werr := crcWriter.Write(r.plain[:int(n)]); werr != nil {
						return 0, false, rsaerr.Wrap(rsaerr.GeneralError, "write plaintext", werr)
					}
					written += n
				}
			}
			if haveSize && written >= int64(declaredSize) {
				done = true
			}
		}
	}

	return crcWriter.sum(), crcWriter.sum() == declaredCrc, nil
}

// decryptBlock computes the plaintext for one block. The CRT path
// (m1 = c^dp mod p, m2 = c^dq mod q, h = qinv*(m1-m2) mod p,
// m = m2 + h*q) is the default; setting NoChinese disables it and runs
// the direct path m = c^d mod n instead.
func decryptBlock(cfg Config, sizing Sizing, cipherBlock []byte) []byte {
	key := cfg.Key
	c := bignum.FromBytes(cipherBlock)

	var m *bignum.Int
	if cfg.NoChinese {
		m = bignum.PowM(c, key.D, key.N)
	} else {
		m1 := bignum.PowM(c, key.DP, key.P)
		m2 := bignum.PowM(c, key.DQ, key.Q)
		diff := bignum.Mod(bignum.Sub(m1, m2), key.P)
		h := bignum.Mod(bignum.Mul(key.QInv, diff), key.P)
		m = bignum.Add(m2, bignum.Mul(h, key.Q))
	}

	buf := canon.RightJustify(bignum.ExportBytes(m), sizing.BlockSize)
	return buf[payloadStart : payloadStart+sizing.BlockCapacity]
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

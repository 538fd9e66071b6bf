package canon

import (
	"hash/crc32"
	"io"
)

// hash/crc32's IEEE table (0xEDB88320) gives the standard table-driven
// checksum: initial register 0xFFFFFFFF, final XOR 0xFFFFFFFF.

const readChunkSize = 4096

// CRC32 computes the IEEE CRC-32 of r's entire remaining content, reading
// in readChunkSize chunks.
func CRC32(r io.Reader) (uint32, error) {
	buf := make([]byte, readChunkSize)
	crc := crc32.NewIEEE()
	for {
		n, err := r.Read(buf)
		if n > 0 {
			crc.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	return crc.Sum32(), nil
}

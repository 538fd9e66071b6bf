package rsafile

import (
	"hash/crc32"
	"io"
)

// trackingWriter forwards writes to an underlying writer while accumulating
// a running CRC32 of everything written, so Decrypt can report the output
// CRC against the header's declared CRC without a second pass over the
// output file.
type trackingWriter struct {
	w        io.Writer
	crcState uint32
}

func newTrackingWriter(w io.Writer) *trackingWriter {
	return &trackingWriter{w: w}
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.crcState = crc32.Update(t.crcState, crc32.IEEETable, p)
	return t.w.Write(p)
}

func (t *trackingWriter) sum() uint32 {
	return t.crcState
}

// Package entropy provides the process-wide handle onto a blocking source
// of uniform random bytes that every other engine draws from. It wraps
// crypto/rand.Reader behind a mutex so concurrent key-generation workers
// and DHM sessions can share one handle safely.
package entropy

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/relayforge/rsaforge/internal/rsaerr"
)

// warmReads and warmReadSize prime the random source with a fixed number
// of discarded reads at construction. On a modern OS-backed
// crypto/rand.Reader this has no observable effect; it guarantees the
// source is exercised before the first caller draws from it.
const (
	warmReads    = 32
	warmReadSize = 256
)

// Source is a process-wide, mutex-serialized handle onto crypto/rand. The
// zero value is not usable; construct one with Open.
type Source struct {
	mu     sync.Mutex
	reader io.Reader
}

// Open opens the entropy source and performs its warm-up reads. It
// returns an EntropyUnavailable error if the warm-up cannot be satisfied.
func Open() (*Source, error) {
	s := &Source{reader: rand.Reader}
	scratch := make([]byte, warmReadSize)
	for i := 0; i < warmReads; i++ {
		if _, err := io.ReadFull(s.reader, scratch); err != nil {
			return nil, rsaerr.Wrap(rsaerr.EntropyUnavailable, "warm-up read failed", err)
		}
	}
	return s, nil
}

// Read draws exactly n uniform random bytes. A short read is an
// EntropyRead error; callers always get exactly n bytes or nothing.
func (s *Source) Read(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, n)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return nil, rsaerr.Wrap(rsaerr.EntropyRead, "short read from entropy source", err)
	}
	return buf, nil
}

package rsafile

import (
	"runtime"
	"time"

	"github.com/relayforge/rsaforge/internal/entropy"
	"github.com/relayforge/rsaforge/internal/rsakey"
)

// Config is the file engine's configuration record, owned by the CLI
// shell and passed into each operation; the engine keeps no module-level
// state.
type Config struct {
	Key       *rsakey.Key
	Entropy   *entropy.Source
	Latitude  float32
	Longitude float32
	Workers   int
	NoChinese bool
	Overwrite bool

	// Time is the epoch-seconds stamp embedded in the fileinfo header and
	// the signature block. Zero means "now".
	Time int64
}

// stampTime resolves the configured timestamp, defaulting to the wall
// clock when the caller left it unset.
func (c Config) stampTime() int64 {
	if c.Time != 0 {
		return c.Time
	}
	return time.Now().Unix()
}

// DefaultWorkers is the online CPU count capped at the generator's
// worker ceiling, shared by the keygen pool and the decrypt pool.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > rsakey.MaxWorkers {
		n = rsakey.MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

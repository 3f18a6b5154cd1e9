package platform

import (
	"errors"
	"os"

	"github.com/ncw/directio"
)

// openFlags is used for both sides of a transfer. O_SYNC makes every write
// reach the device before the call returns.
const openFlags = os.O_RDWR | os.O_SYNC

// ErrAffinityUnsupported is returned by PinToCPU on platforms without a
// per-thread affinity syscall.
var ErrAffinityUnsupported = errors.New("cpu affinity not supported on this platform")

// DirectBlockSize is the granularity uncached I/O expects for buffer sizes
// and file offsets.
const DirectBlockSize = directio.BlockSize

// OpenFile opens path for synchronous read-write access. When direct is set
// the page cache is bypassed (O_DIRECT on Linux, F_NOCACHE on macOS).
func OpenFile(path string, direct bool) (*os.File, error) {
	if direct {
		return directio.OpenFile(path, openFlags, 0)
	}
	return os.OpenFile(path, openFlags, 0)
}

// PageSize returns the memory page size buffers are aligned to.
func PageSize() int {
	return os.Getpagesize()
}

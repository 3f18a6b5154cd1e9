//go:build unix

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AlignedBuffer is an I/O buffer whose first byte sits on a page boundary,
// as uncached I/O requires. It is backed by an anonymous mapping so it lives
// outside the Go heap and must be released explicitly.
type AlignedBuffer struct {
	b []byte
}

// NewAlignedBuffer maps size bytes of page-aligned memory and advises the
// kernel that it will be accessed sequentially.
func NewAlignedBuffer(size int) (*AlignedBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer size must be positive, got %d", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	//nolint:errcheck // madvise is a hint; kernels may ignore it
	unix.Madvise(b, unix.MADV_SEQUENTIAL)
	return &AlignedBuffer{b: b}, nil
}

// Bytes returns the buffer memory. It is invalid after Release.
func (a *AlignedBuffer) Bytes() []byte { return a.b }

// Release unmaps the buffer. Calling it more than once is safe.
func (a *AlignedBuffer) Release() error {
	if a == nil || a.b == nil {
		return nil
	}
	b := a.b
	a.b = nil
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

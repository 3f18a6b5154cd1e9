//go:build !unix

package platform

import (
	"fmt"
	"unsafe"
)

// AlignedBuffer is an I/O buffer whose first byte sits on a page boundary.
type AlignedBuffer struct {
	b []byte
}

// NewAlignedBuffer over-allocates on the Go heap and slices to the first
// page boundary.
func NewAlignedBuffer(size int) (*AlignedBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer size must be positive, got %d", size)
	}
	page := PageSize()
	raw := make([]byte, size+page)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&raw[0])) & uintptr(page-1)); rem != 0 {
		off = page - rem
	}
	return &AlignedBuffer{b: raw[off : off+size : off+size]}, nil
}

func (a *AlignedBuffer) Bytes() []byte { return a.b }

func (a *AlignedBuffer) Release() error {
	if a != nil {
		a.b = nil
	}
	return nil
}

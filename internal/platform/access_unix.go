//go:build unix

package platform

import "golang.org/x/sys/unix"

// CanRead reports whether the real user may read path, like access(2).
func CanRead(path string) error {
	return unix.Access(path, unix.R_OK)
}

// CanWrite reports whether the real user may write path.
func CanWrite(path string) error {
	return unix.Access(path, unix.W_OK)
}

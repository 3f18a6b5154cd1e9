package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashRange computes the BLAKE3 hash of length bytes of path starting at
// offset, returning the hex-encoded digest. A range running past the end of
// the file is an error.
func HashRange(path string, offset, length int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, 256*1024)
	n, err := io.CopyBuffer(h, io.NewSectionReader(f, offset, length), buf)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	if n != length {
		return "", fmt.Errorf("hash %s: %w: range [%d,%d) ends at %d", path, io.ErrUnexpectedEOF, offset, offset+length, offset+n)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

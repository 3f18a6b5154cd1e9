package engine

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates name under dir with data and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	data := make([]byte, n)
	_, err := rand.Read(data)
	require.NoError(t, err)
	return data
}

func filled(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

// newRequest builds a Request directly, skipping the processor-count check
// Validate performs so tests can plan more workers than the machine has.
func newRequest(src, dst string, blocks, bs int64, workers int) Request {
	return Request{
		Src:       src,
		Dst:       dst,
		Blocks:    blocks,
		BlockSize: bs,
		Workers:   workers,
	}
}

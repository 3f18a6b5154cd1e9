package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	KiB = 1 << 10
	MiB = 1 << 20
	GiB = 1 << 30
)

// ParseSize parses a non-negative integer with an optional K, M or G
// suffix (powers of 1024). Lowercase suffixes are accepted. Fractions,
// signs and any other suffix are rejected.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := int64(1)
	numStr := s
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = KiB
		numStr = s[:len(s)-1]
	case 'M', 'm':
		multiplier = MiB
		numStr = s[:len(s)-1]
	case 'G', 'g':
		multiplier = GiB
		numStr = s[:len(s)-1]
	}

	if numStr == "" || strings.IndexFunc(numStr, notDigit) >= 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return n * multiplier, nil
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

// Scale reduces v to the largest of G, M or K it is at least one of, and
// returns the scaled value with its unit letter. Values below 1 KiB are
// reported in bytes ('B').
func Scale(v float64) (float64, byte) {
	switch {
	case v >= GiB:
		return v / GiB, 'G'
	case v >= MiB:
		return v / MiB, 'M'
	case v >= KiB:
		return v / KiB, 'K'
	default:
		return v, 'B'
	}
}

package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"100", 100},
		{"4096", 4096},
		{"1K", 1024},
		{"4k", 4096},
		{"1M", 1048576},
		{"16m", 16 * 1048576},
		{"1G", 1073741824},
		{" 2K ", 2048},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSizeErrors(t *testing.T) {
	tests := []string{
		"",
		"K",
		"abc",
		"-1",
		"+4",
		"1.5G",
		"10T",
		"12X",
		"1 K",
		"9223372036854775807K",
		"99999999999999999999",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSize(input)
			assert.Error(t, err)
		})
	}
}

func TestScale(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
		unit byte
	}{
		{0, 0, 'B'},
		{1023, 1023, 'B'},
		{1024, 1, 'K'},
		{1536, 1.5, 'K'},
		{MiB, 1, 'M'},
		{GiB - 1, float64(GiB-1) / MiB, 'M'},
		{4 * GiB, 4, 'G'},
	}
	for _, tt := range tests {
		got, unit := Scale(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "Scale(%v)", tt.in)
		assert.Equal(t, tt.unit, unit, "Scale(%v)", tt.in)
	}
}

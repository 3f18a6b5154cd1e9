package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_Properties(t *testing.T) {
	totals := []int64{0, 1, 9, 10, 4095, 4096, 8192, 1<<20 + 7}
	blockSizes := []int64{1, 512, 4096}

	for _, total := range totals {
		for workers := 1; workers <= 8; workers++ {
			for _, bs := range blockSizes {
				name := fmt.Sprintf("total=%d/workers=%d/bs=%d", total, workers, bs)
				t.Run(name, func(t *testing.T) {
					as, err := Partition(total, workers, bs, 100, 7)
					require.NoError(t, err)
					require.Len(t, as, workers)

					chunk := total / int64(workers)
					var sum int64
					for i, a := range as {
						assert.Equal(t, i, a.Worker)
						assert.Equal(t, chunk, a.ChunkBytes)
						assert.Equal(t, bs, a.BufferSize)
						sum += a.ChunkBytes

						if i == 0 {
							continue
						}
						prev := as[i-1]
						assert.LessOrEqual(t, prev.SrcOffset+prev.ChunkBytes, a.SrcOffset, "source ranges overlap")
						assert.LessOrEqual(t, prev.DstOffset+prev.ChunkBytes, a.DstOffset, "destination ranges overlap")
						if chunk > 0 {
							assert.Greater(t, a.SrcOffset, prev.SrcOffset)
							assert.Greater(t, a.DstOffset, prev.DstOffset)
						}
					}
					assert.Equal(t, int64(workers)*chunk, sum)
					assert.LessOrEqual(t, sum, total)
				})
			}
		}
	}
}

func TestPartition_TenBytesThreeWorkers(t *testing.T) {
	as, err := Partition(10, 3, 1, 0, 0)
	require.NoError(t, err)

	require.Len(t, as, 3)
	for i, a := range as {
		assert.Equal(t, int64(3), a.ChunkBytes)
		assert.Equal(t, int64(i*3), a.SrcOffset)
		assert.Equal(t, int64(i*3), a.DstOffset)
		assert.Equal(t, int64(3), a.Moved())
	}
}

func TestPartition_BaseOffsets(t *testing.T) {
	as, err := Partition(8192, 2, 4096, 4096, 12288)
	require.NoError(t, err)

	assert.Equal(t, Assignment{Worker: 0, SrcOffset: 4096, DstOffset: 12288, ChunkBytes: 4096, BufferSize: 4096}, as[0])
	assert.Equal(t, Assignment{Worker: 1, SrcOffset: 8192, DstOffset: 16384, ChunkBytes: 4096, BufferSize: 4096}, as[1])
}

func TestPartition_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		workers int
		bs      int64
	}{
		{"zero workers", 10, 0, 1},
		{"negative workers", 10, -1, 1},
		{"negative total", -1, 1, 1},
		{"zero block size", 10, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Partition(tt.total, tt.workers, tt.bs, 0, 0)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestAssignment_BufferRemainder(t *testing.T) {
	a := Assignment{ChunkBytes: 10, BufferSize: 4}
	assert.Equal(t, int64(2), a.Buffers())
	assert.Equal(t, int64(8), a.Moved())

	a = Assignment{ChunkBytes: 3, BufferSize: 4}
	assert.Zero(t, a.Buffers())
	assert.Zero(t, a.Moved())
}

func TestNewPlan(t *testing.T) {
	// 3 blocks of 4 bytes over 2 workers: 6-byte chunks, one 4-byte
	// buffer each.
	p, err := NewPlan(newRequest("s", "d", 3, 4, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(12), p.TotalBytes)
	assert.Equal(t, int64(6), p.ChunkBytes())
	assert.Equal(t, int64(12), p.PlannedBytes())
	assert.Equal(t, int64(8), p.MovedBytes())
	assert.Equal(t, int64(4), p.Dropped())
}

func TestNewPlan_EvenSplit(t *testing.T) {
	p, err := NewPlan(newRequest("s", "d", 2, 4096, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(8192), p.PlannedBytes())
	assert.Equal(t, int64(8192), p.MovedBytes())
	assert.Zero(t, p.Dropped())
}

func TestPlan_Empty(t *testing.T) {
	var p Plan
	assert.Zero(t, p.ChunkBytes())
	assert.Zero(t, p.PlannedBytes())
}

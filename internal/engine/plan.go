package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidPlan reports a planner precondition violation. Validation
// should make it unreachable.
var ErrInvalidPlan = errors.New("invalid transfer plan")

// Assignment is one worker's share of a transfer.
type Assignment struct {
	Worker     int   // worker index, also the CPU the worker pins to
	SrcOffset  int64 // absolute byte offset in the source
	DstOffset  int64 // absolute byte offset in the destination
	ChunkBytes int64 // bytes assigned to this worker
	BufferSize int64 // bytes per read/write call
}

// Buffers is the number of full buffers the worker moves. A tail shorter
// than one buffer is not transferred.
func (a Assignment) Buffers() int64 { return a.ChunkBytes / a.BufferSize }

// Moved is the number of bytes the worker writes on success.
func (a Assignment) Moved() int64 { return a.Buffers() * a.BufferSize }

// Partition splits totalBytes into workers equal contiguous chunks starting
// at the given base offsets. The chunk size is floor(totalBytes/workers);
// the remainder is not assigned to anyone.
func Partition(totalBytes int64, workers int, blockSize, srcBase, dstBase int64) ([]Assignment, error) {
	switch {
	case workers < 1:
		return nil, fmt.Errorf("%w: %d workers", ErrInvalidPlan, workers)
	case totalBytes < 0:
		return nil, fmt.Errorf("%w: %d total bytes", ErrInvalidPlan, totalBytes)
	case blockSize <= 0:
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidPlan, blockSize)
	}

	chunk := totalBytes / int64(workers)
	out := make([]Assignment, workers)
	for i := range out {
		off := int64(i) * chunk
		out[i] = Assignment{
			Worker:     i,
			SrcOffset:  srcBase + off,
			DstOffset:  dstBase + off,
			ChunkBytes: chunk,
			BufferSize: blockSize,
		}
	}
	return out, nil
}

// Plan is the full set of assignments for a request.
type Plan struct {
	Assignments []Assignment
	TotalBytes  int64
}

// NewPlan partitions a validated request.
func NewPlan(req Request) (Plan, error) {
	as, err := Partition(req.TotalBytes(), req.Workers, req.BlockSize, req.SrcOffset, req.DstOffset)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Assignments: as, TotalBytes: req.TotalBytes()}, nil
}

// ChunkBytes is the per-worker chunk size.
func (p Plan) ChunkBytes() int64 {
	if len(p.Assignments) == 0 {
		return 0
	}
	return p.Assignments[0].ChunkBytes
}

// PlannedBytes is chunk size times worker count, the total reported to the
// user.
func (p Plan) PlannedBytes() int64 {
	return p.ChunkBytes() * int64(len(p.Assignments))
}

// MovedBytes is what the workers actually write: whole buffers only.
func (p Plan) MovedBytes() int64 {
	var n int64
	for _, a := range p.Assignments {
		n += a.Moved()
	}
	return n
}

// Dropped is the number of requested bytes no worker copies, from both the
// per-worker and the per-buffer truncation.
func (p Plan) Dropped() int64 {
	return p.TotalBytes - p.MovedBytes()
}

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/bamsammich/pdd/internal/platform"
)

// DefaultBlockSize is used when no block size is given.
const DefaultBlockSize = 4096

// MaxThreads is the largest thread count accepted on the command line.
const MaxThreads = 255

// DirectSide selects which descriptor, if any, bypasses the page cache.
type DirectSide int

const (
	DirectNone DirectSide = iota
	DirectSource
	DirectDest
)

// ParseDirectSide maps the --direct argument: "i" for the source, "o" for
// the destination, empty for neither.
func ParseDirectSide(s string) (DirectSide, error) {
	switch s {
	case "":
		return DirectNone, nil
	case "i":
		return DirectSource, nil
	case "o":
		return DirectDest, nil
	default:
		return DirectNone, fmt.Errorf("%w %q (use i or o)", ErrDirectSide, s)
	}
}

func (d DirectSide) String() string {
	switch d {
	case DirectNone:
		return "none"
	case DirectSource:
		return "source"
	case DirectDest:
		return "destination"
	default:
		return "unknown"
	}
}

// Validation errors. Each is fatal and detected before any worker starts.
var (
	ErrNoSource   = errors.New("source file not set")
	ErrNoDest     = errors.New("destination file not set")
	ErrZeroCount  = errors.New("transfer count is zero")
	ErrBlockSize  = errors.New("block size must be positive")
	ErrOffset     = errors.New("offset must be non-negative")
	ErrOverflow   = errors.New("transfer range overflows a 64-bit offset")
	ErrThreads    = errors.New("invalid thread count")
	ErrDirectSide = errors.New("invalid direct flag")
)

// Options are the raw transfer parameters as given on the command line.
// Skip, Seek and Count are in blocks.
type Options struct {
	Src       string
	Dst       string
	Skip      int64
	Seek      int64
	BlockSize int64 // 0 selects DefaultBlockSize
	Count     int64
	Threads   int
	Direct    DirectSide
}

// Request is a validated transfer. Offsets are in bytes. It is never
// modified after Validate returns it.
type Request struct {
	Src       string
	Dst       string
	SrcOffset int64
	DstOffset int64
	Blocks    int64
	BlockSize int64
	Workers   int
	Direct    DirectSide
}

// TotalBytes is the byte count partitioned across workers.
func (r Request) TotalBytes() int64 { return r.Blocks * r.BlockSize }

// Validate checks opts against the filesystem and the machine and converts
// block offsets to bytes.
func Validate(opts Options) (Request, error) {
	if opts.Src == "" {
		return Request{}, ErrNoSource
	}
	if _, err := os.Stat(opts.Src); err != nil {
		return Request{}, fmt.Errorf("source file %s does not exist: %w", opts.Src, err)
	}
	if err := platform.CanRead(opts.Src); err != nil {
		return Request{}, fmt.Errorf("source file %s is not readable: %w", opts.Src, err)
	}

	if opts.Dst == "" {
		return Request{}, ErrNoDest
	}
	if _, err := os.Stat(opts.Dst); err != nil {
		return Request{}, fmt.Errorf("destination file %s does not exist: %w", opts.Dst, err)
	}
	if err := platform.CanWrite(opts.Dst); err != nil {
		return Request{}, fmt.Errorf("destination file %s is not writable: %w", opts.Dst, err)
	}

	if opts.Count <= 0 {
		return Request{}, ErrZeroCount
	}

	bs := opts.BlockSize
	if bs == 0 {
		bs = DefaultBlockSize
	}
	if bs < 0 {
		return Request{}, fmt.Errorf("%w: %d", ErrBlockSize, bs)
	}

	maxWorkers := min(runtime.NumCPU(), MaxThreads)
	if opts.Threads < 1 || opts.Threads > maxWorkers {
		return Request{}, fmt.Errorf("%w: %d (must be between 1 and %d available processors)",
			ErrThreads, opts.Threads, maxWorkers)
	}

	req := Request{
		Src:       opts.Src,
		Dst:       opts.Dst,
		Blocks:    opts.Count,
		BlockSize: bs,
		Workers:   opts.Threads,
		Direct:    opts.Direct,
	}
	var err error
	if req.SrcOffset, err = blocksToBytes("skip", opts.Skip, bs); err != nil {
		return Request{}, err
	}
	if req.DstOffset, err = blocksToBytes("seek", opts.Seek, bs); err != nil {
		return Request{}, err
	}
	if err := req.check(); err != nil {
		return Request{}, err
	}

	if req.Direct != DirectNone && !req.directAligned() {
		slog.Warn("direct I/O requested with unaligned block size or offset; the kernel may reject it",
			"bs", req.BlockSize,
			"skip_bytes", req.SrcOffset,
			"seek_bytes", req.DstOffset,
			"alignment", platform.DirectBlockSize,
		)
	}

	return req, nil
}

// check enforces the structural invariants the planner and workers rely
// on. It does not touch the filesystem.
func (r Request) check() error {
	switch {
	case r.Src == "":
		return ErrNoSource
	case r.Dst == "":
		return ErrNoDest
	case r.Blocks <= 0:
		return ErrZeroCount
	case r.BlockSize <= 0:
		return ErrBlockSize
	case r.Workers < 1:
		return fmt.Errorf("%w: %d", ErrThreads, r.Workers)
	case r.SrcOffset < 0 || r.DstOffset < 0:
		return ErrOffset
	}
	if r.Blocks > math.MaxInt64/r.BlockSize {
		return fmt.Errorf("%w: %d blocks of %d bytes", ErrOverflow, r.Blocks, r.BlockSize)
	}
	total := r.TotalBytes()
	if r.SrcOffset > math.MaxInt64-total || r.DstOffset > math.MaxInt64-total {
		return fmt.Errorf("%w: offset plus %d bytes", ErrOverflow, total)
	}
	return nil
}

func (r Request) directAligned() bool {
	const align = platform.DirectBlockSize
	return r.BlockSize%align == 0 && r.SrcOffset%align == 0 && r.DstOffset%align == 0
}

func blocksToBytes(name string, blocks, bs int64) (int64, error) {
	if blocks < 0 {
		return 0, fmt.Errorf("%w: %s %d", ErrOffset, name, blocks)
	}
	if blocks > math.MaxInt64/bs {
		return 0, fmt.Errorf("%w: %s %d blocks of %d bytes", ErrOverflow, name, blocks, bs)
	}
	return blocks * bs, nil
}

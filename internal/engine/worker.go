package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/bamsammich/pdd/internal/platform"
	"github.com/bamsammich/pdd/internal/stats"
)

// Short transfers are fatal; nothing is retried.
var (
	ErrShortRead  = errors.New("short read")
	ErrShortWrite = errors.New("short write")
)

// WorkerError attributes a transfer failure to a worker.
type WorkerError struct {
	Worker int
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// RunWorker copies one assignment and returns the number of bytes written.
//
// The calling goroutine is locked to its OS thread and never unlocked, so
// the thread carrying the CPU pin is discarded when the goroutine exits.
// Run it on a goroutine of its own.
func RunWorker(ctx context.Context, a Assignment, req Request, st *stats.Collector) (moved int64, err error) {
	runtime.LockOSThread()
	switch pinErr := platform.PinToCPU(a.Worker); {
	case errors.Is(pinErr, platform.ErrAffinityUnsupported):
		slog.Debug("cpu pinning unsupported on this platform", "worker", a.Worker)
	case pinErr != nil:
		slog.Debug("cpu pinning skipped", "worker", a.Worker, "error", pinErr)
	}

	src, err := platform.OpenFile(req.Src, req.Direct == DirectSource)
	if err != nil {
		return 0, fmt.Errorf("open source %s: %w", req.Src, err)
	}
	defer closeFile(src, "source", &err)

	dst, err := platform.OpenFile(req.Dst, req.Direct == DirectDest)
	if err != nil {
		return 0, fmt.Errorf("open destination %s: %w", req.Dst, err)
	}
	defer closeFile(dst, "destination", &err)

	if _, err := src.Seek(a.SrcOffset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek source %s to %d: %w", req.Src, a.SrcOffset, err)
	}
	if _, err := dst.Seek(a.DstOffset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek destination %s to %d: %w", req.Dst, a.DstOffset, err)
	}

	buf, err := platform.NewAlignedBuffer(int(a.BufferSize))
	if err != nil {
		return 0, fmt.Errorf("allocate buffer: %w", err)
	}
	defer func() {
		if relErr := buf.Release(); relErr != nil && err == nil {
			err = fmt.Errorf("release buffer: %w", relErr)
		}
	}()

	return copyLoop(ctx, a, req, src, dst, buf.Bytes(), st)
}

// copyLoop moves a.Buffers() buffers from src to dst at their current
// positions. Cancellation is checked between buffers, never mid-call.
func copyLoop(
	ctx context.Context,
	a Assignment,
	req Request,
	src io.Reader,
	dst io.Writer,
	b []byte,
	st *stats.Collector,
) (int64, error) {
	var moved int64
	for i := range a.Buffers() {
		if err := ctx.Err(); err != nil {
			return moved, err
		}

		n, err := src.Read(b)
		if n != len(b) {
			if err == nil || errors.Is(err, io.EOF) {
				err = fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, len(b))
			}
			return moved, fmt.Errorf("read source %s at %d: %w", req.Src, a.SrcOffset+i*a.BufferSize, err)
		}

		// *os.File retries partial writes itself, so on regular files a
		// short write normally surfaces as an error such as ENOSPC.
		n, err = dst.Write(b)
		if n != len(b) {
			if err == nil || errors.Is(err, io.ErrShortWrite) {
				err = fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(b))
			}
			return moved, fmt.Errorf("write destination %s at %d: %w", req.Dst, a.DstOffset+i*a.BufferSize, err)
		}

		moved += int64(n)
		if st != nil {
			st.AddBuffer(int64(n))
		}
	}
	return moved, nil
}

// closeFile closes f and, if no earlier error is pending, reports a close
// failure through errp.
func closeFile(f *os.File, side string, errp *error) {
	if err := f.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("close %s %s: %w", side, f.Name(), err)
	}
}

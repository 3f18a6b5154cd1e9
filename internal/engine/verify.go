package engine

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
)

// VerifyConfig controls the post-copy verification pass.
type VerifyConfig struct {
	Request Request
	Plan    Plan
	Workers int // hashing concurrency; defaults to NumCPU
	Events  chan<- event.Event
	Stats   *stats.Collector
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Verified int64
	Failed   int64
	Errors   []VerifyError
}

// VerifyError records one chunk whose destination range does not match
// its source range.
type VerifyError struct {
	Worker  int
	SrcHash string
	DstHash string
	Err     error // set when a range could not be hashed
}

// Verify compares the BLAKE3 hash of every transferred source range with
// the destination range it was written to. Only whole buffers are
// compared; truncated tails were never copied.
func Verify(ctx context.Context, cfg VerifyConfig) VerifyResult {
	emitEvent(cfg.Events, event.Event{Type: event.VerifyStarted})

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	var result VerifyResult

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, a := range cfg.Plan.Assignments {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			verr := verifyAssignment(cfg.Request, a)

			mu.Lock()
			defer mu.Unlock()
			if verr != nil {
				result.Failed++
				result.Errors = append(result.Errors, *verr)
				if cfg.Stats != nil {
					cfg.Stats.AddChunkVerifyFailed()
				}
				emitEvent(cfg.Events, event.Event{
					Type:      event.VerifyFailed,
					Worker:    a.Worker,
					SrcOffset: a.SrcOffset,
					DstOffset: a.DstOffset,
					Size:      a.Moved(),
					Error:     verr.Err,
				})
				return nil
			}
			result.Verified++
			if cfg.Stats != nil {
				cfg.Stats.AddChunkVerified()
			}
			emitEvent(cfg.Events, event.Event{
				Type:      event.VerifyOK,
				Worker:    a.Worker,
				SrcOffset: a.SrcOffset,
				DstOffset: a.DstOffset,
				Size:      a.Moved(),
			})
			return nil
		})
	}
	//nolint:errcheck // only cancellation is returned; partial results stand
	g.Wait()

	slices.SortFunc(result.Errors, func(a, b VerifyError) int {
		return cmp.Compare(a.Worker, b.Worker)
	})
	return result
}

func verifyAssignment(req Request, a Assignment) *VerifyError {
	srcHash, err := HashRange(req.Src, a.SrcOffset, a.Moved())
	if err != nil {
		return &VerifyError{Worker: a.Worker, SrcHash: "error", DstHash: "n/a", Err: err}
	}
	dstHash, err := HashRange(req.Dst, a.DstOffset, a.Moved())
	if err != nil {
		return &VerifyError{Worker: a.Worker, SrcHash: srcHash, DstHash: "error", Err: err}
	}
	if srcHash != dstHash {
		return &VerifyError{Worker: a.Worker, SrcHash: srcHash, DstHash: dstHash}
	}
	return nil
}

func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

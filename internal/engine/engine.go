package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
)

// ErrVerify is returned when a copied range does not match its source.
var ErrVerify = errors.New("verification failed")

// Config describes a transfer.
type Config struct {
	Request Request
	Verify  bool
	Events  chan<- event.Event // optional; sends never block
	Stats   *stats.Collector   // optional
}

// WorkerResult is the outcome of one worker.
type WorkerResult struct {
	Worker int
	Moved  int64
	Err    error
}

// Result is the outcome of a transfer.
type Result struct {
	Plan    Plan
	Bytes   int64 // chunk size times worker count, as reported
	Moved   int64 // bytes actually written
	Elapsed time.Duration
	Workers []WorkerResult
	Verify  *VerifyResult
	Stats   stats.Snapshot
	Err     error
}

// Run executes a transfer, blocking until every worker has returned. The
// first failing worker cancels the rest; the reported error belongs to the
// lowest-indexed worker that failed for a reason other than cancellation.
func Run(ctx context.Context, cfg Config) Result {
	req := cfg.Request
	if err := req.check(); err != nil {
		return Result{Err: err}
	}
	plan, err := NewPlan(req)
	if err != nil {
		return Result{Err: err}
	}

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	collector.SetTotal(plan.MovedBytes())

	if dropped := plan.Dropped(); dropped > 0 {
		slog.Warn("transfer size is not a whole number of buffers per worker; trailing bytes will not be copied",
			"requested", plan.TotalBytes,
			"copied", plan.MovedBytes(),
			"dropped", dropped,
			"workers", req.Workers,
			"chunk", plan.ChunkBytes(),
			"bs", req.BlockSize,
		)
	}

	slog.Debug("starting transfer",
		"src", req.Src,
		"dst", req.Dst,
		"skip_bytes", req.SrcOffset,
		"seek_bytes", req.DstOffset,
		"bs", req.BlockSize,
		"workers", req.Workers,
		"chunk", plan.ChunkBytes(),
		"direct", req.Direct,
	)
	emitEvent(cfg.Events, event.Event{
		Type:    event.TransferStarted,
		Total:   plan.MovedBytes(),
		Workers: len(plan.Assignments),
	})

	start := time.Now()
	results := make([]WorkerResult, len(plan.Assignments))

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range plan.Assignments {
		g.Go(func() error {
			return runAssignment(gctx, a, req, cfg.Events, collector, &results[a.Worker])
		})
	}
	//nolint:errcheck // every outcome is recorded in results
	g.Wait()

	res := Result{
		Plan:    plan,
		Bytes:   plan.PlannedBytes(),
		Elapsed: time.Since(start),
		Workers: results,
	}
	for _, r := range results {
		res.Moved += r.Moved
	}
	res.Err = firstFailure(results)

	if res.Err == nil && cfg.Verify {
		vr := Verify(ctx, VerifyConfig{
			Request: req,
			Plan:    plan,
			Events:  cfg.Events,
			Stats:   collector,
		})
		res.Verify = &vr
		res.Err = verifyErr(ctx, vr, len(plan.Assignments))
	}

	res.Stats = collector.Snapshot()
	return res
}

func runAssignment(
	ctx context.Context,
	a Assignment,
	req Request,
	events chan<- event.Event,
	collector *stats.Collector,
	out *WorkerResult,
) error {
	collector.AddWorkerStarted()
	emitEvent(events, event.Event{
		Type:      event.WorkerStarted,
		Worker:    a.Worker,
		SrcOffset: a.SrcOffset,
		DstOffset: a.DstOffset,
		Size:      a.ChunkBytes,
	})

	moved, err := RunWorker(ctx, a, req, collector)
	*out = WorkerResult{Worker: a.Worker, Moved: moved, Err: err}

	if err != nil {
		collector.AddWorkerFailed()
		if !isCancel(err) {
			slog.Error("worker failed", "worker", a.Worker, "moved", moved, "error", err)
		}
		emitEvent(events, event.Event{
			Type:      event.WorkerFailed,
			Worker:    a.Worker,
			SrcOffset: a.SrcOffset,
			DstOffset: a.DstOffset,
			Size:      moved,
			Error:     err,
		})
		return &WorkerError{Worker: a.Worker, Err: err}
	}

	collector.AddWorkerDone()
	emitEvent(events, event.Event{
		Type:      event.WorkerCompleted,
		Worker:    a.Worker,
		SrcOffset: a.SrcOffset,
		DstOffset: a.DstOffset,
		Size:      moved,
	})
	return nil
}

// firstFailure picks the error to report. Workers stopped by cancellation
// are only reported when no worker failed on its own.
func firstFailure(results []WorkerResult) error {
	var cancelled error
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if isCancel(r.Err) {
			if cancelled == nil {
				cancelled = &WorkerError{Worker: r.Worker, Err: r.Err}
			}
			continue
		}
		return &WorkerError{Worker: r.Worker, Err: r.Err}
	}
	if cancelled != nil {
		return fmt.Errorf("transfer interrupted: %w", cancelled)
	}
	return nil
}

func verifyErr(ctx context.Context, vr VerifyResult, chunks int) error {
	if vr.Failed > 0 {
		e := vr.Errors[0]
		if e.Err != nil {
			return fmt.Errorf("%w: worker %d: %w", ErrVerify, e.Worker, e.Err)
		}
		return fmt.Errorf("%w: worker %d: source %s destination %s (%d of %d chunks mismatched)",
			ErrVerify, e.Worker, e.SrcHash, e.DstHash, vr.Failed, chunks)
	}
	if vr.Verified < int64(chunks) {
		return fmt.Errorf("verification interrupted: %w", context.Cause(ctx))
	}
	return nil
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

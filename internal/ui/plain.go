package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
)

// plainPresenter writes one line per worker event and a periodic progress
// line. Used when the output is not a terminal.
type plainPresenter struct {
	w        io.Writer
	stats    *stats.Collector
	interval time.Duration
}

func (p *plainPresenter) Run(events <-chan event.Event) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-secTicker.C:
			p.stats.Tick()
		case <-ticker.C:
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.TransferStarted:
		fmt.Fprintf(p.w, "transfer: %s across %d workers\n", FormatBytes(ev.Total), ev.Workers)
	case event.WorkerStarted:
		fmt.Fprintf(p.w, "worker %d: started  src@%d dst@%d  %s\n",
			ev.Worker, ev.SrcOffset, ev.DstOffset, FormatBytes(ev.Size))
	case event.WorkerCompleted:
		fmt.Fprintf(p.w, "worker %d: done  %s\n", ev.Worker, FormatBytes(ev.Size))
	case event.WorkerFailed:
		fmt.Fprintf(p.w, "worker %d: failed after %s: %s\n", ev.Worker, FormatBytes(ev.Size), errText(ev.Error))
	case event.VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case event.VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: worker %d  src@%d dst@%d  %s\n", ev.Worker, ev.SrcOffset, ev.DstOffset, errText(ev.Error))
	case event.VerifyOK:
		// silent in plain mode
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal <= 0 {
		return
	}
	pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
	fmt.Fprintf(p.w, "progress: %.0f%% %s/%s %s eta %s\n",
		pct,
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatETA(p.stats.ETA()),
	)
}

func errText(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}

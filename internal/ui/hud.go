package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
)

// ANSI escape sequences.
const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudLines         = 2
	hudMinInterval   = 50 * time.Millisecond
)

// hudPresenter prints a feed of worker events above a 2-line status block
// that redraws in place. Used when progress goes to a terminal.
type hudPresenter struct {
	w     io.Writer
	stats *stats.Collector

	workers     int
	hudDrawn    bool
	lastHUDDraw time.Time
}

func (p *hudPresenter) Run(events <-chan event.Event) error {
	// Fire the first tick quickly to seed the rate history.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawHUD()

		case <-redrawTicker.C:
			p.drawHUD()

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.TransferStarted:
		p.workers = ev.Workers
		p.feed("%stransfer  %s across %d workers%s\n", ansiDim, FormatBytes(ev.Total), ev.Workers, ansiReset)

	case event.WorkerStarted:
		// shown by the worker indicator

	case event.WorkerCompleted:
		p.feed("✓  worker %-3d %10s  %sdst@%d%s\n",
			ev.Worker, FormatBytes(ev.Size), ansiDim, ev.DstOffset, ansiReset)

	case event.WorkerFailed:
		p.feed("✗  worker %-3d %10s  %s\n", ev.Worker, FormatBytes(ev.Size), errText(ev.Error))

	case event.VerifyStarted:
		p.feed("%sverifying checksums...%s\n", ansiDim, ansiReset)

	case event.VerifyOK:
		// silent

	case event.VerifyFailed:
		p.feed("✗  worker %-3d CHECKSUM MISMATCH  %sdst@%d%s\n",
			ev.Worker, ansiDim, ev.DstOffset, ansiReset)
	}
}

// feed prints a line above the status block.
func (p *hudPresenter) feed(format string, args ...any) {
	p.clearHUD()
	fmt.Fprintf(p.w, format, args...)
	p.drawHUD()
}

func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	var pct float64
	if snap.BytesTotal > 0 {
		pct = float64(snap.BytesCopied) / float64(snap.BytesTotal)
	}

	// Line 1: throughput sparkline, rate and byte totals.
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		Sparkline(p.stats.History(sparklineWidth), sparklineWidth),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal))

	// Line 2: progress bar, busy workers and eta.
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s   eta %s\n",
		pct*100, ProgressBar(pct, progressBarWidth),
		WorkerIndicator(int(p.stats.Busy()), p.workers),
		FormatETA(p.stats.ETA()))

	p.hudDrawn = true
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", hudLines)
	p.hudDrawn = false
}

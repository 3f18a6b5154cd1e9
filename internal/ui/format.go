package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bamsammich/pdd/internal/units"
)

// FormatBytes formats a byte count using IEC units.
func FormatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// FormatRate formats a bytes-per-second rate.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

// FormatETA formats a duration as a human-readable ETA string.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	d = d.Round(time.Second)

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// ProgressBar renders a progress bar of the given width using ▪/□ characters.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = min(max(pct, 0), 1)
	filled := min(int(pct*float64(width)), width)
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// WorkerIndicator renders one cell per worker, filled while it is busy.
func WorkerIndicator(busy, total int) string {
	busy = min(max(busy, 0), total)
	if total <= 0 {
		return ""
	}
	return strings.Repeat("▪", busy) + strings.Repeat("□", total-busy)
}

// minElapsed floors the elapsed time so an instantaneous transfer still
// reports a finite rate.
const minElapsed = time.Microsecond

// CompletionSummary builds the final line printed after a successful run:
//
//	  8.00 K copied,   0.002 s,   3.906 M/s
//
// Total and rate each pick their own unit from B, K, M and G.
func CompletionSummary(total int64, elapsed time.Duration) string {
	elapsed = max(elapsed, minElapsed)
	secs := elapsed.Seconds()

	size, sizeUnit := units.Scale(float64(total))
	rate, rateUnit := units.Scale(float64(total) / secs)
	return fmt.Sprintf("  %6.2f %c copied, %7.3f s, %7.3f %c/s", size, sizeUnit, secs, rate, rateUnit)
}

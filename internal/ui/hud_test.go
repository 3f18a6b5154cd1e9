package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
)

func TestHudPresenterFeed(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotal(8192)

	p := &hudPresenter{w: &out, stats: collector}

	events := make(chan event.Event, 10)
	events <- event.Event{Type: event.TransferStarted, Total: 8192, Workers: 2}
	events <- event.Event{Type: event.WorkerCompleted, Worker: 0, Size: 4096, DstOffset: 0}
	events <- event.Event{Type: event.WorkerFailed, Worker: 1, Size: 0, Error: assert.AnError}
	close(events)

	require.NoError(t, p.Run(events))

	output := out.String()
	assert.Contains(t, output, "across 2 workers")
	assert.Contains(t, output, "✓  worker 0")
	assert.Contains(t, output, "✗  worker 1")
	assert.Contains(t, output, assert.AnError.Error())
	assert.Equal(t, 2, p.workers)
	assert.False(t, p.hudDrawn, "status block is cleared on exit")
}

func TestHudPresenterDrawHUD(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()
	collector.SetTotal(1000)
	collector.AddWorkerStarted()
	collector.AddBuffer(500)

	p := &hudPresenter{w: &out, stats: collector, workers: 4}
	p.drawHUD()

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "500 B / 1000 B")
	assert.Contains(t, lines[1], " 50%")
	assert.Contains(t, lines[1], "▪□□□")
	assert.True(t, p.hudDrawn)

	out.Reset()
	p.clearHUD()
	assert.Equal(t, "\033[2A\033[J", out.String())
	assert.False(t, p.hudDrawn)
}

func TestHudPresenterVerifyMismatch(t *testing.T) {
	var out bytes.Buffer
	p := &hudPresenter{w: &out, stats: stats.NewCollector()}
	p.handleEvent(event.Event{Type: event.VerifyFailed, Worker: 2, DstOffset: 8192})

	assert.Contains(t, out.String(), "worker 2   CHECKSUM MISMATCH")
	assert.Contains(t, out.String(), "dst@8192")
}

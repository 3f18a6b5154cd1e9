package ui

import (
	"io"
	"time"

	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
)

// Presenter consumes engine events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan event.Event) error
}

// Config configures a Presenter.
type Config struct {
	Writer   io.Writer // progress output, normally stderr
	Stats    *stats.Collector
	IsTTY    bool
	Quiet    bool
	Verbose  bool
	Interval time.Duration // plain progress interval; defaults to 5s
}

// NewPresenter creates the appropriate presenter based on configuration.
// Progress is only shown with Verbose; otherwise the run is silent until
// the completion summary.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet || !cfg.Verbose {
		return quietPresenter{}
	}
	if !cfg.IsTTY {
		interval := cfg.Interval
		if interval <= 0 {
			interval = 5 * time.Second
		}
		return &plainPresenter{w: cfg.Writer, stats: cfg.Stats, interval: interval}
	}
	return &hudPresenter{w: cfg.Writer, stats: cfg.Stats}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/pdd/internal/config"
	"github.com/bamsammich/pdd/internal/engine"
	"github.com/bamsammich/pdd/internal/event"
	"github.com/bamsammich/pdd/internal/stats"
	"github.com/bamsammich/pdd/internal/ui"
	"github.com/bamsammich/pdd/internal/units"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// flags holds the raw command line. Sizes stay strings until parsed so
// they accept the K/M/G suffixes.
type flags struct {
	src         string
	dst         string
	skip        string
	seek        string
	bs          string
	count       string
	direct      string
	threads     int
	verbose     bool
	quiet       bool
	verify      bool
	logFile     string
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "pdd --if SRC --of DST --count N [flags]",
		Short: "Parallel block copy between files or devices",
		Long: "pdd copies count blocks from SRC to DST, splitting the range into equal\n" +
			"chunks copied concurrently by workers pinned to their own CPUs.\n" +
			"Numeric values accept K, M and G suffixes (powers of 1024).",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.showVersion {
				fmt.Fprintf(stdout, "pdd %s\n", version)
				return nil
			}
			return runCopy(cmd, &f, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	fs := rootCmd.Flags()
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fs.StringVar(&f.src, "if", "", "source file or device")
	fs.StringVar(&f.dst, "of", "", "destination file or device (must exist)")
	fs.StringVar(&f.skip, "skip", "0", "blocks to skip at the start of the source")
	fs.StringVar(&f.seek, "seek", "0", "blocks to skip at the start of the destination")
	fs.StringVar(&f.bs, "bs", "", "block size in bytes (default 4096)")
	fs.StringVar(&f.count, "count", "", "number of blocks to copy (required)")
	fs.StringVar(&f.direct, "direct", "", "uncached I/O on one side: i (source) or o (destination)")
	fs.IntVar(&f.threads, "threads", 1, "number of workers, at most the CPU count")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and per-worker progress")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress everything except errors")
	fs.BoolVar(&f.verify, "verify", false, "verify copied ranges with BLAKE3 after the copy")
	fs.StringVar(&f.logFile, "log", "", "write structured JSON log to FILE")
	fs.SortFlags = false

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

//nolint:gocyclo // CLI entry point wires every flag
func runCopy(cmd *cobra.Command, f *flags, stdout, stderr io.Writer) error {
	cfg, cfgErr := config.Load()
	applyConfigDefaults(cmd.Flags(), cfg.Defaults, f)

	// Configure logging.
	logLevel := slog.LevelInfo
	switch {
	case f.verbose:
		logLevel = slog.LevelDebug
	case f.quiet:
		logLevel = slog.LevelWarn
	}
	runID := uuid.NewString()[:8]
	var logHandler slog.Handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})
	// Event records go to the --log file only; the presenter shows them on stderr.
	var eventLogger *slog.Logger
	if f.logFile != "" {
		lf, err := os.Create(f.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer lf.Close()
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(logHandler, jsonHandler)
		eventLogger = slog.New(jsonHandler).With("run", runID)
	}
	prevLogger := slog.Default()
	defer slog.SetDefault(prevLogger)
	slog.SetDefault(slog.New(logHandler).With("run", runID))

	if cfgErr != nil {
		slog.Warn("config file", "path", config.Path(), "error", cfgErr)
	}

	opts, err := parseOptions(f)
	if err != nil {
		return err
	}
	req, err := engine.Validate(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// When --log is set, tee events through a logging goroutine that
	// writes structured records before forwarding to the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if eventLogger != nil {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				logEvent(eventLogger, ev)
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	presenter := ui.NewPresenter(ui.Config{
		Writer:  stderr,
		Stats:   collector,
		IsTTY:   isTerminal(stderr),
		Quiet:   f.quiet,
		Verbose: f.verbose,
	})

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	result := engine.Run(ctx, engine.Config{
		Request: req,
		Verify:  f.verify,
		Events:  events,
		Stats:   collector,
	})
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
	}

	slog.Debug("transfer finished", "stats", result.Stats.String(), "elapsed", result.Elapsed)

	if result.Err != nil {
		slog.Error("copy failed", "error", result.Err, "copied", result.Moved)
		return &exitError{code: 1}
	}

	if !f.quiet {
		fmt.Fprintln(stdout, ui.CompletionSummary(result.Bytes, result.Elapsed))
	}
	return nil
}

// parseOptions turns the textual flags into engine options.
func parseOptions(f *flags) (engine.Options, error) {
	opts := engine.Options{
		Src:     f.src,
		Dst:     f.dst,
		Threads: f.threads,
	}

	sizes := []struct {
		name string
		val  string
		dst  *int64
	}{
		{"skip", f.skip, &opts.Skip},
		{"seek", f.seek, &opts.Seek},
		{"bs", f.bs, &opts.BlockSize},
		{"count", f.count, &opts.Count},
	}
	for _, s := range sizes {
		if s.val == "" {
			continue
		}
		n, err := units.ParseSize(s.val)
		if err != nil {
			return engine.Options{}, fmt.Errorf("invalid --%s: %w", s.name, err)
		}
		*s.dst = n
	}

	direct, err := engine.ParseDirectSide(f.direct)
	if err != nil {
		return engine.Options{}, err
	}
	opts.Direct = direct
	return opts, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(fs *pflag.FlagSet, defaults config.DefaultsConfig, f *flags) {
	if !fs.Changed("bs") && defaults.BlockSize != nil {
		f.bs = *defaults.BlockSize
	}
	if !fs.Changed("threads") && defaults.Threads != nil {
		f.threads = *defaults.Threads
	}
	if !fs.Changed("direct") && defaults.Direct != nil {
		f.direct = *defaults.Direct
	}
	if !fs.Changed("verify") && defaults.Verify != nil {
		f.verify = *defaults.Verify
	}
	if !fs.Changed("verbose") && defaults.Verbose != nil {
		f.verbose = *defaults.Verbose
	}
}

func logEvent(logger *slog.Logger, ev event.Event) {
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.Int("worker", ev.Worker),
		slog.Int64("src_offset", ev.SrcOffset),
		slog.Int64("dst_offset", ev.DstOffset),
		slog.Int64("size", ev.Size),
	}
	if ev.Type == event.TransferStarted {
		attrs = append(attrs, slog.Int64("total", ev.Total), slog.Int("workers", ev.Workers))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "pdd.event", attrs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f.Fd())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

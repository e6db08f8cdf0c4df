package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mandelbench/mandelbench/bench/internal/config"
	"github.com/mandelbench/mandelbench/bench/internal/runner"
	"github.com/mandelbench/mandelbench/bench/internal/shipper"
	"github.com/mandelbench/mandelbench/pkg/render"
	"github.com/mandelbench/mandelbench/pkg/report"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	watch := flag.Bool("watch", false, "re-run the benchmark whenever the config file changes")
	logLevel := flag.String("log-level", "info", "log level: debug | info | warn | error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	// Logs go to stderr so the timing table on stdout stays readable.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *watch && *configPath == "" {
		slog.Error("-watch requires -config")
		os.Exit(2)
	}
	slog.Info("config loaded",
		"region", cfg.Bench.Region,
		"width", cfg.Bench.Width,
		"height", cfg.Bench.Height,
		"max_iter", cfg.Bench.MaxIter,
		"runs", cfg.Bench.Runs,
		"methods", cfg.Bench.Methods,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var ship *shipper.Shipper
	if cfg.Bench.Viewer.Endpoint != "" {
		ship = shipper.New(cfg.Bench.Viewer)
	}

	if !*watch {
		ok := benchmark(ctx, cfg, ship)
		if ship != nil {
			flushCtx, done := context.WithTimeout(ctx, 30*time.Second)
			defer done()
			if err := ship.Flush(flushCtx); err != nil {
				slog.Error("failed to ship report", "endpoint", cfg.Bench.Viewer.Endpoint, "err", err)
				ok = false
			}
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	if ship != nil {
		go ship.Run(ctx)
	}
	benchmark(ctx, cfg, ship)

	// Runs are sequential; a change arriving mid-run waits for the next turn.
	changes := make(chan *config.Config, 1)
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			offer(changes, updated)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
			cancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("mandelbench shutting down", "pending_reports", pending(ship))
			return
		case updated := <-changes:
			benchmark(ctx, updated, ship)
		}
	}
}

// offer leaves cfg as the only pending change on ch, which has capacity one
// and a single sender. The receiver may drain ch at any moment, so the
// discard must not block.
func offer(ch chan *config.Config, cfg *config.Config) {
	select {
	case <-ch:
	default:
	}
	ch <- cfg
}

// benchmark runs one full benchmark for cfg and emits every configured
// output. It reports whether all steps succeeded.
func benchmark(ctx context.Context, cfg *config.Config, ship *shipper.Shipper) bool {
	b := cfg.Bench
	spec := runner.Spec{
		Region:  b.Region,
		Bounds:  *b.Bounds,
		Width:   b.Width,
		Height:  b.Height,
		MaxIter: b.MaxIter,
		Runs:    b.Runs,
		Methods: b.ParsedMethods(),
	}

	rep, grid, err := runner.New().Run(ctx, spec)
	if err != nil {
		slog.Error("benchmark failed", "err", err)
		return false
	}
	if err := runner.Print(os.Stdout, rep); err != nil {
		slog.Error("failed to print results", "err", err)
	}

	ok := true
	if b.ReportPath != "" {
		prev, err := report.PreviousMedians(b.ReportPath)
		if err != nil {
			slog.Warn("could not read previous report", "path", b.ReportPath, "err", err)
		}
		for _, res := range rep.Results {
			if old, found := prev[res.Method]; found && old > 0 {
				slog.Info("median changed since last run",
					"method", res.Method,
					"previous", old,
					"current", res.Median,
					"ratio", float64(res.Median)/float64(old),
				)
			}
		}
		if old, found, err := report.PreviousSpeedup(b.ReportPath); err == nil && found {
			if cur, ok := rep.Speedup(); ok {
				slog.Info("speedup changed since last run", "previous", old, "current", cur)
			}
		}
		if err := report.WriteFile(b.ReportPath, rep); err != nil {
			slog.Error("failed to write report", "path", b.ReportPath, "err", err)
			ok = false
		} else {
			slog.Info("report written", "path", b.ReportPath)
		}
	}

	if b.ImagePath != "" {
		palette, err := render.ParsePalette(b.Palette)
		if err == nil {
			err = render.WritePNG(b.ImagePath, render.Image(grid, palette))
		}
		if err != nil {
			slog.Error("failed to write image", "path", b.ImagePath, "err", err)
			ok = false
		} else {
			slog.Info("image written", "path", b.ImagePath)
		}
	}

	if ship != nil {
		ship.Ship(rep)
	}
	return ok
}

func pending(s *shipper.Shipper) int {
	if s == nil {
		return 0
	}
	return s.Pending()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mandelbench/mandelbench/pkg/types"
	"github.com/mandelbench/mandelbench/viewer/internal/alerts"
	"github.com/mandelbench/mandelbench/viewer/internal/api"
	"github.com/mandelbench/mandelbench/viewer/internal/auth"
	"github.com/mandelbench/mandelbench/viewer/internal/config"
	"github.com/mandelbench/mandelbench/viewer/internal/store"
	"github.com/mandelbench/mandelbench/viewer/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	uiDir := flag.String("ui-dir", "", "serve static UI files from this directory; leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("mandelbench-viewer starting", "config", *configPath)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	v := cfg.Viewer

	slog.Info("config loaded",
		"http_port", v.HTTPPort,
		"auth_mode", v.Auth.Mode,
		"report_ttl", v.ReportTTL,
		"max_pixels", v.MaxPixels,
		"max_iter_limit", v.MaxIterLimit,
		"alert_rules", len(v.Alerts.Rules),
	)
	if v.Auth.Mode == "apikey" && v.Auth.Key() == "" {
		slog.Warn("auth mode is apikey but the key variable is empty; report submission is open",
			"key_env", v.Auth.KeyEnv)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(v.ReportTTL)
	go st.Run(ctx)

	hub := ws.New(st, v.BroadcastInterval)
	go hub.Run(ctx)

	// Rules run on every received report.
	alertEngine := alerts.New(v.Alerts)

	apiHandler := api.New(st, api.Config{
		MaxPixels:    v.MaxPixels,
		MaxIterLimit: v.MaxIterLimit,
		Auth:         auth.APIKey(v.Auth.Mode, v.Auth.Header, v.Auth.Key()),
		OnReport: func(rep *types.Report) {
			alertEngine.Evaluate(rep)
			hub.Notify()
		},
		Alerts: alertEngine,
	})

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", apiHandler)
	httpMux.Handle("/metrics", apiHandler)
	httpMux.Handle("/ws/stream", hub)

	// Unknown paths fall back to index.html for client-side routing.
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := filepath.Join(*uiDir, filepath.Clean("/"+r.URL.Path))
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(*uiDir, "index.html"))
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", v.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", v.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("mandelbench-viewer shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
}

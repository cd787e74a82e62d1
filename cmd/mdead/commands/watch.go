package commands

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdead/internal/convert"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/logfields"
	"git.home.luguber.info/inful/mdead/internal/metrics"
	"git.home.luguber.info/inful/mdead/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	OutputFlags `embed:""`

	Dirs          []string      `arg:"" help:"Directories to watch" type:"existingdir"`
	Debounce      time.Duration `help:"Quiet period before converting changed files (default from configuration)"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address, e.g. :9090"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	w.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		if debounce, err = cfg.DebounceDuration(); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "watch.debounce").Fatal().Build()
		}
	}

	reg := prom.NewRegistry()
	conv := convert.New(cfg,
		convert.WithLogger(slog.Default()),
		convert.WithRecorder(metrics.NewPrometheusRecorder(reg)))

	watcher, err := watch.New(conv, w.Dirs, debounce, watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if w.MetricsListen != "" {
		srv := startMetricsServer(w.MetricsListen, reg)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return watcher.Run(ctx)
}

func startMetricsServer(addr string, reg *prom.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	slog.Info("Serving metrics", slog.String("addr", addr))
	return srv
}

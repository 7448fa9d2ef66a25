package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/doc-builder/internal/batch"
	"git.home.luguber.info/inful/doc-builder/internal/logfields"
	"git.home.luguber.info/inful/doc-builder/internal/metrics"
	"git.home.luguber.info/inful/doc-builder/internal/watch"
)

// WatchCmd implements the 'watch' command: continuous regeneration plus an
// optional Prometheus endpoint.
type WatchCmd struct {
	Root        string        `arg:"" help:"Directory whose subdirectories are studies"`
	TemplateDir string        `name:"template-dir" short:"t" help:"Directory holding .docx templates (overrides config)"`
	Output      string        `short:"o" help:"Output directory for generated reports (overrides config)"`
	QuietWindow time.Duration `name:"quiet-window" help:"How long a study must stay quiet before rebuilding" default:"500ms"`
	SkipInitial bool          `name:"skip-initial" help:"Do not run a full batch before watching"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadTool(root, w.TemplateDir, w.Output)
	if err != nil {
		return err
	}

	gen := newGenerator(cfg)
	runner := batch.NewRunner(gen)
	if store := openLedger(cfg); store != nil {
		runner.Ledger = store
		defer func() { _ = store.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder := metrics.NewPrometheusRecorder(reg)
		gen.Recorder = recorder
		runner.Recorder = recorder
		go serveMetrics(ctx, cfg.Metrics.Address, reg)
	}

	watcher, err := watch.New(w.Root, runner, watch.Config{
		QuietWindow:  w.QuietWindow,
		InitialBuild: !w.SkipInitial,
	})
	if err != nil {
		return err
	}

	err = watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveMetrics(ctx context.Context, address string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", slog.String("address", address))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics server failed", logfields.Error(err))
	}
}

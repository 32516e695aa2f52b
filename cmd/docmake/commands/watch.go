package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docmake/internal/logfields"
	"git.home.luguber.info/inful/docmake/internal/metrics"
	"git.home.luguber.info/inful/docmake/internal/orchestrator"
	"git.home.luguber.info/inful/docmake/internal/watch"
)

// WatchCmd rebuilds the documentation whenever the source tree changes.
// Optional extras from configuration: periodic linkcheck and inventory refresh
// schedules, a Prometheus endpoint, and build event publishing over NATS.
type WatchCmd struct {
	Mode   string `arg:"" optional:"" default:"html" help:"Generator mode to rebuild"`
	Strict bool   `short:"W" help:"Treat generator warnings as errors"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	o, cfg, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.MetricsAddr != "" {
		reg := prom.NewRegistry()
		o.WithRecorder(metrics.NewPrometheusRecorder(reg))
		srv := metrics.ServeMetrics(cfg.Watch.MetricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Watch.NATSURL != "" {
		subject := cfg.Watch.NATSSubject
		if subject == "" {
			subject = "docmake.builds"
		}
		pub, err := watch.NewPublisher(cfg.Watch.NATSURL, subject)
		if err != nil {
			// Events are a convenience, the watch loop still works without them.
			slog.Warn("Build event publishing unavailable", logfields.Error(err))
		} else {
			defer pub.Close()
			o.WithEventSink(func(id, target, mode, outcome string, warnings int, d time.Duration) {
				pub.Publish(watch.BuildEvent{
					BuildID:    id,
					Target:     target,
					Mode:       mode,
					Outcome:    outcome,
					Warnings:   warnings,
					DurationMS: d.Milliseconds(),
				})
			})
		}
	}

	debounce, err := time.ParseDuration(cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", cfg.Watch.Debounce, err)
	}

	// Rebuilds and scheduled targets share one orchestrator and one warnings
	// log; runMu keeps them strictly one at a time.
	var runMu sync.Mutex
	opts := orchestrator.BuildOptions{Strict: w.Strict}
	rebuild := func(ctx context.Context) {
		runMu.Lock()
		defer runMu.Unlock()
		if err := o.Build(ctx, w.Mode, opts); err != nil {
			slog.Error("Rebuild failed", logfields.Mode(w.Mode), logfields.Error(err))
		}
	}

	// The artifact tree and generated outputs must never retrigger the loop.
	exclude := []string{cfg.Paths.Build, cfg.Paths.WarningsLog, ".git"}
	exclude = append(exclude, cfg.Paths.Examples...)
	exclude = append(exclude, cfg.Paths.Autosummary...)

	watcher, err := watch.NewWatcher(cfg.Paths.Source, debounce, rebuild, exclude...)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = watcher.Stop()
	}()

	scheduler, err := w.startSchedules(ctx, cfg.Watch.LinkcheckInterval, cfg.Watch.IntersphinxInterval, o, &runMu)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() {
			_ = scheduler.Stop()
		}()
	}

	// Initial build so the watcher starts from a fresh tree.
	rebuild(ctx)

	<-ctx.Done()
	slog.Info("Watch mode stopped")
	return nil
}

// startSchedules wires the optional periodic maintenance jobs. Returns nil
// when no interval is configured. Jobs take runMu so they never run alongside
// a rebuild.
func (w *WatchCmd) startSchedules(ctx context.Context, linkcheckEvery, intersphinxEvery string, o *orchestrator.Orchestrator, runMu *sync.Mutex) (*watch.Scheduler, error) {
	if linkcheckEvery == "" && intersphinxEvery == "" {
		return nil, nil
	}
	scheduler, err := watch.NewScheduler()
	if err != nil {
		return nil, err
	}

	if linkcheckEvery != "" {
		interval, err := time.ParseDuration(linkcheckEvery)
		if err != nil {
			return nil, fmt.Errorf("invalid linkcheck interval %q: %w", linkcheckEvery, err)
		}
		if _, err := scheduler.Every(interval, "linkcheck", func() {
			runMu.Lock()
			defer runMu.Unlock()
			if err := o.Linkcheck(ctx, false); err != nil {
				slog.Warn("Scheduled linkcheck failed", logfields.Error(err))
			}
		}); err != nil {
			return nil, err
		}
	}

	if intersphinxEvery != "" {
		interval, err := time.ParseDuration(intersphinxEvery)
		if err != nil {
			return nil, fmt.Errorf("invalid intersphinx interval %q: %w", intersphinxEvery, err)
		}
		if _, err := scheduler.Every(interval, "update-intersphinx", func() {
			runMu.Lock()
			defer runMu.Unlock()
			if err := o.UpdateIntersphinx(ctx); err != nil {
				slog.Warn("Scheduled inventory refresh failed", logfields.Error(err))
			}
		}); err != nil {
			return nil, err
		}
	}

	scheduler.Start()
	return scheduler, nil
}

// Package orchestrator implements the documentation build targets: build,
// clean, linkcheck, inventory refresh and publish. Targets are idempotent and
// run strictly one after another; the only parallelism is the generator's own.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docmake/internal/buildstore"
	"git.home.luguber.info/inful/docmake/internal/config"
	"git.home.luguber.info/inful/docmake/internal/deploy"
	"git.home.luguber.info/inful/docmake/internal/logfields"
	"git.home.luguber.info/inful/docmake/internal/metrics"
	"git.home.luguber.info/inful/docmake/internal/sphinx"
	"git.home.luguber.info/inful/docmake/internal/workspace"
)

// ErrDeployAborted is returned when the operator did not confirm a deploy.
// No destructive action has happened when this error is seen.
var ErrDeployAborted = errors.New("deploy aborted: not confirmed")

// Publisher pushes the built tree to the hosting branch. Swappable in tests.
type Publisher interface {
	Publish(ctx context.Context, htmlDir string, opts deploy.Options) error
}

// EventSink receives completed target runs (watch mode wires NATS here).
type EventSink func(id, target, mode, outcome string, warnings int, d time.Duration)

type gitPublisher struct{}

func (gitPublisher) Publish(ctx context.Context, htmlDir string, opts deploy.Options) error {
	return deploy.Publish(ctx, htmlDir, opts)
}

// Orchestrator holds the resolved configuration and collaborators for a run.
type Orchestrator struct {
	cfg       *config.Config
	backend   sphinx.Backend
	ws        *workspace.Manager
	store     *buildstore.Store // optional
	recorder  metrics.Recorder
	publisher Publisher
	events    EventSink // optional
}

// New creates an orchestrator. The warnings log and the generated example and
// autosummary trees are auxiliary outputs owned alongside the artifact tree.
func New(cfg *config.Config, backend sphinx.Backend) *Orchestrator {
	aux := []string{cfg.Paths.WarningsLog}
	aux = append(aux, cfg.Paths.Examples...)
	aux = append(aux, cfg.Paths.Autosummary...)

	return &Orchestrator{
		cfg:       cfg,
		backend:   backend,
		ws:        workspace.NewManager(cfg.Paths.Build, aux...),
		recorder:  metrics.NoopRecorder{},
		publisher: gitPublisher{},
	}
}

// WithStore attaches the build history store.
func (o *Orchestrator) WithStore(store *buildstore.Store) *Orchestrator {
	o.store = store
	return o
}

// WithRecorder attaches a metrics recorder.
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator {
	if r != nil {
		o.recorder = r
	}
	return o
}

// WithPublisher overrides the deploy publisher (for testing).
func (o *Orchestrator) WithPublisher(p Publisher) *Orchestrator {
	o.publisher = p
	return o
}

// WithEventSink attaches a completed-run callback.
func (o *Orchestrator) WithEventSink(sink EventSink) *Orchestrator {
	o.events = sink
	return o
}

// Workspace exposes the artifact tree manager.
func (o *Orchestrator) Workspace() *workspace.Manager { return o.ws }

// record persists and observes one completed target run.
func (o *Orchestrator) record(ctx context.Context, target, mode string, start time.Time, outcome string, warningCount int) {
	id := uuid.NewString()
	elapsed := time.Since(start)

	o.recorder.ObserveTargetDuration(target, elapsed)
	o.recorder.IncTargetOutcome(target, outcome)
	o.recorder.SetWarnings(warningCount)

	if o.store != nil {
		rec := buildstore.Record{
			ID:        id,
			Target:    target,
			Mode:      mode,
			StartedAt: start,
			Duration:  elapsed,
			Outcome:   outcome,
			Warnings:  warningCount,
		}
		if err := o.store.Record(ctx, rec); err != nil {
			slog.Warn("Failed to record build history", logfields.Error(err))
		}
	}

	if o.events != nil {
		o.events(id, target, mode, outcome, warningCount, elapsed)
	}

	slog.Info("Target finished",
		logfields.Target(target),
		logfields.Outcome(outcome),
		logfields.Warnings(warningCount),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
}

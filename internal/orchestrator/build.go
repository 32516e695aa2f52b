package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docmake/internal/logfields"
	"git.home.luguber.info/inful/docmake/internal/metrics"
	"git.home.luguber.info/inful/docmake/internal/sphinx"
	"git.home.luguber.info/inful/docmake/internal/warnings"
)

// BuildOptions control a single generator run.
type BuildOptions struct {
	Strict    bool // escalate warnings to errors
	KeepGoing bool // aggregate errors instead of failing on the first
	Jobs      int  // 0 serial, -1 all processing units, >0 fixed
	ExtraOpts []string
}

// Build runs the generator for the given mode. The mode is passed through to
// the generator's own dispatch, so any mode it knows (html, latexpdf, man,
// ...) works. In strict mode a non-empty warnings log fails the target even
// when the generator itself exited zero.
func (o *Orchestrator) Build(ctx context.Context, mode string, opts BuildOptions) error {
	start := time.Now()

	if err := o.ws.Ensure(); err != nil {
		return err
	}
	if err := warnings.Reset(o.cfg.Paths.WarningsLog); err != nil {
		return err
	}

	inv := sphinx.Invocation{
		Mode:        mode,
		SourceDir:   o.cfg.Paths.Source,
		BuildDir:    o.cfg.Paths.Build,
		Doctrees:    o.cfg.Paths.Doctrees,
		WarningsLog: o.cfg.Paths.WarningsLog,
		Strict:      opts.Strict,
		KeepGoing:   opts.KeepGoing,
		Nitpicky:    opts.Strict,
		Jobs:        opts.Jobs,
		ExtraOpts:   append(append([]string{}, o.cfg.Sphinx.ExtraOpts...), opts.ExtraOpts...),
	}

	runErr := o.backend.Run(ctx, inv)

	warningCount, countErr := warnings.Count(o.cfg.Paths.WarningsLog)
	if countErr != nil {
		slog.Warn("Could not read warnings log", logfields.Error(countErr))
	}

	outcome := metrics.OutcomeSuccess
	switch {
	case runErr != nil:
		outcome = metrics.OutcomeFailed
	case opts.Strict && warningCount > 0:
		// The generator can exit zero with --keep-going even though warnings
		// occurred; the log is the authority in strict mode.
		outcome = metrics.OutcomeFailed
		runErr = fmt.Errorf("strict mode: %d warnings in %s", warningCount, o.cfg.Paths.WarningsLog)
	case warningCount > 0:
		outcome = metrics.OutcomeWarnings
	}

	o.record(ctx, "build", mode, start, outcome, warningCount)
	return runErr
}

// BuildParallel runs the html build with all available processing units.
// Resource intensive; semantically identical to the serial build.
func (o *Orchestrator) BuildParallel(ctx context.Context, mode string, opts BuildOptions) error {
	slog.Info("Parallel build requested, this uses all processing units", logfields.Mode(mode))
	opts.Jobs = -1
	return o.Build(ctx, mode, opts)
}

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docmake/internal/linkcheck"
	"git.home.luguber.info/inful/docmake/internal/logfields"
	"git.home.luguber.info/inful/docmake/internal/metrics"
	"git.home.luguber.info/inful/docmake/internal/sphinx"
	"git.home.luguber.info/inful/docmake/internal/warnings"
)

// Linkcheck runs the generator's link checker and filters its output log down
// to actionable failures. The filtered result decides the target's exit: the
// checker exits non-zero for exempt broken links too, and that is noise.
// In strict mode internal cross references of a previously built HTML tree and
// the link destinations of markdown source pages are verified as well.
func (o *Orchestrator) Linkcheck(ctx context.Context, strict bool) error {
	start := time.Now()

	if err := o.ws.Ensure(); err != nil {
		return err
	}
	if err := warnings.Reset(o.cfg.Paths.WarningsLog); err != nil {
		return err
	}

	inv := sphinx.Invocation{
		Mode:        "linkcheck",
		SourceDir:   o.cfg.Paths.Source,
		BuildDir:    o.cfg.Paths.Build,
		Doctrees:    o.cfg.Paths.Doctrees,
		WarningsLog: o.cfg.Paths.WarningsLog,
		Nitpicky:    strict,
		ExtraOpts:   o.cfg.Sphinx.ExtraOpts,
	}
	runErr := o.backend.Run(ctx, inv)

	failures, filterErr := o.LinkcheckFilter(o.cfg.LinkcheckLog())
	if filterErr != nil {
		if runErr != nil {
			// No log to judge by: the checker itself failed, propagate that.
			o.record(ctx, "linkcheck", "", start, metrics.OutcomeFailed, 0)
			return runErr
		}
		o.record(ctx, "linkcheck", "", start, metrics.OutcomeFailed, 0)
		return filterErr
	}

	if strict {
		problems, err := o.scanInternalRefs()
		if err != nil {
			o.record(ctx, "linkcheck", "", start, metrics.OutcomeFailed, len(failures))
			return err
		}
		srcProblems, err := linkcheck.ScanSources(o.cfg.Paths.Source, o.cfg.Paths.Build)
		if err != nil {
			o.record(ctx, "linkcheck", "", start, metrics.OutcomeFailed, len(failures))
			return err
		}
		problems = append(problems, srcProblems...)
		for _, p := range problems {
			slog.Warn("Broken internal reference", logfields.Path(p.Page), logfields.URL(p.URL), slog.String("reason", p.Reason))
		}
		if len(problems) > 0 {
			o.record(ctx, "linkcheck", "", start, metrics.OutcomeFailed, len(failures)+len(problems))
			return fmt.Errorf("linkcheck: %d broken internal references", len(problems))
		}
	}

	if len(failures) > 0 {
		for _, f := range failures {
			slog.Warn("Broken link", logfields.Path(f.Source), logfields.URL(f.URI), slog.String("detail", f.Detail))
		}
		o.record(ctx, "linkcheck", "", start, metrics.OutcomeFailed, len(failures))
		return fmt.Errorf("linkcheck: %d broken links", len(failures))
	}

	o.record(ctx, "linkcheck", "", start, metrics.OutcomeSuccess, 0)
	return nil
}

// LinkcheckFilter scans a link checker output log and returns the actionable
// failures after exemptions. An empty result means the log is clean.
func (o *Orchestrator) LinkcheckFilter(logPath string) ([]linkcheck.LogEntry, error) {
	filter, err := linkcheck.NewFilter(o.cfg.Linkcheck.Ignore)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(logPath))
	if err != nil {
		return nil, fmt.Errorf("open linkcheck log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return filter.FilterLog(f)
}

// scanInternalRefs verifies internal cross references against the built HTML
// tree when one exists. Without a prior html build there is nothing to scan.
func (o *Orchestrator) scanInternalRefs() ([]linkcheck.Problem, error) {
	htmlDir := o.cfg.HTMLDir()
	if _, err := os.Stat(htmlDir); os.IsNotExist(err) {
		slog.Debug("No built HTML tree, skipping internal reference scan", logfields.Path(htmlDir))
		return nil, nil
	}
	return linkcheck.ScanTree(htmlDir)
}

package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"git.home.luguber.info/inful/docmake/internal/deploy"
	"git.home.luguber.info/inful/docmake/internal/intersphinx"
	"git.home.luguber.info/inful/docmake/internal/metrics"
)

// Deploy publishes the built HTML tree to the hosting branch. The confirmed
// flag carries the operator's answer; without it nothing is touched, locally
// or remotely. This must never run unattended.
func (o *Orchestrator) Deploy(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrDeployAborted
	}

	htmlDir := o.cfg.HTMLDir()
	if _, err := os.Stat(htmlDir); err != nil {
		return fmt.Errorf("nothing to deploy, run a build first: %w", err)
	}

	start := time.Now()
	opts := deploy.Options{
		Remote: o.cfg.Deploy.Remote,
		Branch: o.cfg.Deploy.Branch,
		CNAME:  o.cfg.Deploy.CNAME,
	}

	err := o.publisher.Publish(ctx, htmlDir, opts)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	o.record(ctx, "deploy", "", start, outcome, 0)
	return err
}

// UpdateIntersphinx refreshes the pinned cross-project inventories.
func (o *Orchestrator) UpdateIntersphinx(ctx context.Context) error {
	fetcher := intersphinx.NewFetcher(
		o.cfg.Intersphinx.Dir,
		time.Duration(o.cfg.Intersphinx.TimeoutSecs)*time.Second,
		intersphinx.DefaultPolicy(),
	)
	return fetcher.UpdateAll(ctx, o.cfg.Intersphinx.Inventories)
}

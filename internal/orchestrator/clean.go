package orchestrator

import (
	"log/slog"

	"git.home.luguber.info/inful/docmake/internal/workspace"
)

// Clean removes the entire artifact tree, the warnings log and every
// generated example and autosummary directory. Safe to call when nothing
// exists yet; calling it twice in a row is a no-op the second time.
func (o *Orchestrator) Clean() error {
	return o.ws.Clean()
}

// CleanExceptExamples cleans like Clean but preserves the generated example
// galleries, which are expensive to regenerate during iterative authoring.
func (o *Orchestrator) CleanExceptExamples() error {
	if len(o.cfg.Paths.Examples) == 0 {
		slog.Debug("No example subtrees configured, cleaning everything")
		return o.ws.Clean()
	}
	return o.ws.CleanExcept(o.cfg.Paths.Examples)
}

// CleanAutosummary removes only the generated API stub directories, forcing
// the generator to regenerate per-page summaries on the next build.
func (o *Orchestrator) CleanAutosummary() error {
	return workspace.RemovePaths(o.cfg.Paths.Autosummary)
}

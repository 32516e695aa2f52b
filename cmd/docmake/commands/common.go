package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmake/internal/buildstore"
	"git.home.luguber.info/inful/docmake/internal/config"
	"git.home.luguber.info/inful/docmake/internal/logfields"
	"git.home.luguber.info/inful/docmake/internal/orchestrator"
	"git.home.luguber.info/inful/docmake/internal/sphinx"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags. Running without a command prints usage, which
// doubles as the help target.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docmake.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build               BuildCmd             `cmd:"" help:"Run the generator for a mode (html, latexpdf, ...)"`
	Phtml               PhtmlCmd             `cmd:"" help:"Parallel HTML build using all processing units (resource intensive)"`
	Clean               CleanCmd             `cmd:"" help:"Remove the artifact tree and all generated files"`
	CleanExceptExamples CleanExamplesCmd     `cmd:"" name:"clean-except-examples" help:"Clean but keep the generated example galleries"`
	CleanAutosummary    CleanAutosummaryCmd  `cmd:"" name:"clean-autosummary" help:"Remove generated API stub directories only"`
	Linkcheck           LinkcheckCmd         `cmd:"" help:"Run the link-integrity checker"`
	LinkcheckGrep       LinkcheckGrepCmd     `cmd:"" name:"linkcheck-grep" help:"Filter a linkcheck log down to actionable failures"`
	UpdateIntersphinx   UpdateIntersphinxCmd `cmd:"" name:"update-intersphinx" help:"Refresh pinned intersphinx inventories"`
	Deploy              DeployCmd            `cmd:"" help:"Publish the built tree to the hosting branch (interactive, destructive)"`
	Watch               WatchCmd             `cmd:"" help:"Rebuild on source changes with optional schedules and metrics"`
	History             HistoryCmd           `cmd:"" help:"Show recent target runs"`
	Init                InitCmd              `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file, falling back to defaults when the
// default file is absent so the tool works in an unconfigured doc tree.
func loadConfig(c *CLI) (*config.Config, error) {
	if _, err := os.Stat(c.Config); os.IsNotExist(err) && c.Config == "docmake.yaml" {
		slog.Debug("No configuration file, using defaults")
		return config.Default(), nil
	}
	return config.Load(c.Config)
}

// newOrchestrator wires the orchestrator with the real generator backend and,
// when enabled, the build history store. The loaded configuration is returned
// so commands do not parse the file twice. The closer is always safe to call.
func newOrchestrator(c *CLI) (*orchestrator.Orchestrator, *config.Config, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, func() {}, err
	}

	backend := sphinx.NewExecBackend(cfg.Sphinx.Binary, cfg.Sphinx.OffScreenEnv, *cfg.Sphinx.OffScreen)
	o := orchestrator.New(cfg, backend)

	closer := func() {}
	if !cfg.History.Disabled {
		store, err := buildstore.NewStore(cfg.History.Path)
		if err != nil {
			// History is a convenience, not a build dependency.
			slog.Warn("Build history unavailable", logfields.Error(err))
		} else {
			o.WithStore(store)
			closer = func() { _ = store.Close() }
		}
	}
	return o, cfg, closer, nil
}

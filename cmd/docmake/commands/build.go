package commands

import (
	"context"

	"git.home.luguber.info/inful/docmake/internal/orchestrator"
)

// BuildCmd implements the 'build' command. The mode argument routes straight
// to the generator's own dispatch, so any mode sphinx knows works here.
type BuildCmd struct {
	Mode      string   `arg:"" optional:"" default:"html" help:"Generator mode (html, latexpdf, man, ...)"`
	Strict    bool     `short:"W" help:"Treat warnings as errors (fails on a non-empty warnings log)"`
	KeepGoing bool     `help:"With --strict, aggregate errors instead of stopping at the first"`
	Jobs      int      `short:"j" help:"Generator worker count (0 = serial)"`
	Opt       []string `short:"o" name:"opt" help:"Extra options passed to the generator"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()

	return o.Build(context.Background(), b.Mode, orchestrator.BuildOptions{
		Strict:    b.Strict,
		KeepGoing: b.KeepGoing,
		Jobs:      b.Jobs,
		ExtraOpts: b.Opt,
	})
}

// PhtmlCmd implements the 'phtml' command: the html build with all available
// processing units.
type PhtmlCmd struct {
	Strict    bool `short:"W" help:"Treat warnings as errors"`
	KeepGoing bool `help:"With --strict, aggregate errors instead of stopping at the first"`
}

func (p *PhtmlCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()

	return o.BuildParallel(context.Background(), "html", orchestrator.BuildOptions{
		Strict:    p.Strict,
		KeepGoing: p.KeepGoing,
	})
}

package commands

import (
	"context"
	"fmt"
)

// LinkcheckCmd runs the generator's link checker and filters its output.
type LinkcheckCmd struct {
	Strict bool `help:"Also fail on nitpicky internal cross-reference violations"`
}

func (l *LinkcheckCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()
	return o.Linkcheck(context.Background(), l.Strict)
}

// LinkcheckGrepCmd filters an existing linkcheck output log without running
// the checker: exits non-zero iff an unexempt broken entry exists.
type LinkcheckGrepCmd struct {
	Log string `arg:"" optional:"" help:"Linkcheck output log (defaults to the artifact tree's)"`
}

func (l *LinkcheckGrepCmd) Run(_ *Global, root *CLI) error {
	o, cfg, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()

	logPath := l.Log
	if logPath == "" {
		logPath = cfg.LinkcheckLog()
	}

	failures, err := o.LinkcheckFilter(logPath)
	if err != nil {
		return err
	}
	for _, f := range failures {
		fmt.Printf("%s:%d: [%s] %s %s\n", f.Source, f.Line, f.Status, f.URI, f.Detail)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d actionable link failures", len(failures))
	}
	fmt.Println("No actionable link failures")
	return nil
}

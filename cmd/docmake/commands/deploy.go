package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/docmake/internal/deploy"
	"git.home.luguber.info/inful/docmake/internal/orchestrator"
)

// DeployCmd publishes the built tree to the hosting branch. Interactive and
// destructive: the remote branch history is overwritten. The prompt defaults
// to no; --yes exists for operators who already know what they are doing,
// never for automation.
type DeployCmd struct {
	Yes bool `help:"Skip the confirmation prompt (answers yes)"`
}

func (d *DeployCmd) Run(_ *Global, root *CLI) error {
	o, _, closer, err := newOrchestrator(root)
	if err != nil {
		return err
	}
	defer closer()

	confirmed := d.Yes
	if !confirmed {
		confirmed = promptConfirm(os.Stdin, os.Stdout)
	}

	err = o.Deploy(context.Background(), confirmed)
	if errors.Is(err, orchestrator.ErrDeployAborted) {
		fmt.Println("Deploy aborted, nothing was pushed.")
		return nil
	}
	return err
}

// promptConfirm asks the operator and interprets the answer. EOF or anything
// other than the affirmative token means no.
func promptConfirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "This will FORCE PUSH the built documentation, overwriting the hosting branch history.\nContinue? [y/N]: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return deploy.Confirmed(line)
}

// Package sphinx invokes the external documentation generator. The rest of the
// repository only sees the Backend interface, so tests can swap in a recording
// double without a sphinx installation.
package sphinx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"

	"git.home.luguber.info/inful/docmake/internal/logfields"
)

// Invocation describes a single generator run. Flags map onto sphinx-build
// options; the orchestrator assembles them, the backend only executes.
type Invocation struct {
	Mode        string // generator mode: html, linkcheck, latexpdf, ...
	SourceDir   string
	BuildDir    string
	Doctrees    string // pickled environment cache directory
	WarningsLog string // -w target; truncated by the orchestrator before each run
	Strict      bool   // -W: escalate warnings to errors
	KeepGoing   bool   // --keep-going: aggregate errors instead of failing on the first
	Nitpicky    bool   // -n: warn about all missing references
	Jobs        int    // 0 = serial, -1 = all processing units, >0 = fixed worker count
	ExtraOpts   []string
}

// Args renders the sphinx-build argument list for this invocation.
func (inv Invocation) Args() []string {
	args := []string{"-M", inv.Mode, inv.SourceDir, inv.BuildDir, "-N"}
	if inv.Doctrees != "" {
		args = append(args, "-d", inv.Doctrees)
	}
	if inv.WarningsLog != "" {
		args = append(args, "-w", inv.WarningsLog)
	}
	if inv.Strict {
		args = append(args, "-W")
		if inv.KeepGoing {
			args = append(args, "--keep-going")
		}
	}
	if inv.Nitpicky {
		args = append(args, "-n")
	}
	switch {
	case inv.Jobs < 0:
		args = append(args, "-j", "auto")
	case inv.Jobs > 0:
		args = append(args, "-j", strconv.Itoa(inv.Jobs))
	}
	args = append(args, inv.ExtraOpts...)
	return args
}

// Backend runs generator invocations. Exit codes propagate as errors without
// translation; the caller decides what a failure means for its target.
type Backend interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecBackend shells out to the real generator binary.
type ExecBackend struct {
	Binary       string
	OffScreenEnv string // env var name exported to the generator process
	OffScreen    bool   // value exported when the operator has not set it
	Stdout       io.Writer
	Stderr       io.Writer
}

// NewExecBackend creates a backend for the given binary with output attached
// to the current process.
func NewExecBackend(binary, offScreenEnv string, offScreen bool) *ExecBackend {
	return &ExecBackend{
		Binary:       binary,
		OffScreenEnv: offScreenEnv,
		OffScreen:    offScreen,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// Run executes the generator as a single blocking subprocess.
func (b *ExecBackend) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, b.Binary, inv.Args()...)
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	cmd.Env = b.environ()

	slog.Info("Running documentation generator", logfields.Mode(inv.Mode), slog.String("binary", b.Binary))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", b.Binary, inv.Mode, err)
	}
	return nil
}

// environ builds the subprocess environment. The operator's explicit setting
// of the off-screen variable always wins over the configured default.
func (b *ExecBackend) environ() []string {
	env := os.Environ()
	if b.OffScreenEnv == "" {
		return env
	}
	if _, set := os.LookupEnv(b.OffScreenEnv); set {
		return env
	}
	return append(env, fmt.Sprintf("%s=%s", b.OffScreenEnv, strconv.FormatBool(b.OffScreen)))
}

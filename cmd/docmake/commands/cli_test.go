package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("docmake"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

func TestParseBuildDefaults(t *testing.T) {
	cli, ctx := parseCLI(t, "build")
	require.Equal(t, "build", ctx.Command())
	require.Equal(t, "html", cli.Build.Mode)
	require.False(t, cli.Build.Strict)
	require.Zero(t, cli.Build.Jobs)
}

func TestParseBuildMode(t *testing.T) {
	cli, ctx := parseCLI(t, "build", "latexpdf", "-W", "--keep-going", "-j", "4")
	require.Equal(t, "build <mode>", ctx.Command())
	require.Equal(t, "latexpdf", cli.Build.Mode)
	require.True(t, cli.Build.Strict)
	require.True(t, cli.Build.KeepGoing)
	require.Equal(t, 4, cli.Build.Jobs)
}

func TestParseBuildExtraOpts(t *testing.T) {
	cli, _ := parseCLI(t, "build", "html", "-o", "-T", "-o", "-q")
	require.Equal(t, []string{"-T", "-q"}, cli.Build.Opt)
}

func TestParseSubcommands(t *testing.T) {
	tests := []struct {
		args []string
		cmd  string
	}{
		{[]string{"phtml"}, "phtml"},
		{[]string{"clean"}, "clean"},
		{[]string{"clean-except-examples"}, "clean-except-examples"},
		{[]string{"clean-autosummary"}, "clean-autosummary"},
		{[]string{"linkcheck"}, "linkcheck"},
		{[]string{"linkcheck-grep"}, "linkcheck-grep"},
		{[]string{"update-intersphinx"}, "update-intersphinx"},
		{[]string{"deploy"}, "deploy"},
		{[]string{"watch"}, "watch"},
		{[]string{"history"}, "history"},
		{[]string{"init"}, "init"},
	}

	for _, test := range tests {
		_, ctx := parseCLI(t, test.args...)
		require.Equal(t, test.cmd, ctx.Command())
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cli, _ := parseCLI(t, "-c", "custom.yaml", "-v", "clean")
	require.Equal(t, "custom.yaml", cli.Config)
	require.True(t, cli.Verbose)
}

func TestParseDeployYes(t *testing.T) {
	cli, _ := parseCLI(t, "deploy", "--yes")
	require.True(t, cli.Deploy.Yes)
}

func TestParseLinkcheckGrepLogArgument(t *testing.T) {
	cli, ctx := parseCLI(t, "linkcheck-grep", "_build/linkcheck/output.txt")
	require.Equal(t, "linkcheck-grep <log>", ctx.Command())
	require.Equal(t, "_build/linkcheck/output.txt", cli.LinkcheckGrep.Log)
}

func TestParseHistoryLimit(t *testing.T) {
	cli, _ := parseCLI(t, "history", "-n", "5")
	require.Equal(t, 5, cli.History.Limit)
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false}, // EOF without input
	}

	for _, test := range tests {
		var out strings.Builder
		got := promptConfirm(strings.NewReader(test.input), &out)
		require.Equal(t, test.want, got, "input %q", test.input)
		require.Contains(t, out.String(), "FORCE PUSH", "prompt must spell out the consequence")
	}
}

func TestNewOrchestratorReturnsLoadedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docmake.yaml")
	content := "paths:\n  build: " + filepath.Join(dir, "_build") + "\nhistory:\n  disabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	o, cfg, closer, err := newOrchestrator(&CLI{Config: path})
	require.NoError(t, err)
	defer closer()

	require.NotNil(t, o)
	require.NotNil(t, cfg)
	require.Equal(t, filepath.Join(dir, "_build"), cfg.Paths.Build)
}

func TestParseRejectsUnknownCommand(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("docmake"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"frobnicate"})
	require.Error(t, err)
}

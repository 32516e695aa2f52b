package sphinx

import (
	"strings"
	"testing"
)

func TestInvocationArgs(t *testing.T) {
	tests := []struct {
		name string
		inv  Invocation
		want string
	}{
		{
			name: "plain html",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build"},
			want: "-M html . _build -N",
		},
		{
			name: "with doctrees and warnings log",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build", Doctrees: "_build/doctrees", WarningsLog: "sphinx_warnings.txt"},
			want: "-M html . _build -N -d _build/doctrees -w sphinx_warnings.txt",
		},
		{
			name: "strict with keep-going",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build", Strict: true, KeepGoing: true},
			want: "-M html . _build -N -W --keep-going",
		},
		{
			name: "keep-going without strict is ignored",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build", KeepGoing: true},
			want: "-M html . _build -N",
		},
		{
			name: "parallel auto",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build", Jobs: -1},
			want: "-M html . _build -N -j auto",
		},
		{
			name: "fixed worker count",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build", Jobs: 4},
			want: "-M html . _build -N -j 4",
		},
		{
			name: "nitpicky linkcheck",
			inv:  Invocation{Mode: "linkcheck", SourceDir: ".", BuildDir: "_build", Nitpicky: true},
			want: "-M linkcheck . _build -N -n",
		},
		{
			name: "extra opts last",
			inv:  Invocation{Mode: "html", SourceDir: ".", BuildDir: "_build", ExtraOpts: []string{"-T", "-q"}},
			want: "-M html . _build -N -T -q",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := strings.Join(test.inv.Args(), " ")
			if got != test.want {
				t.Errorf("Args() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestEnvironAppendsOffScreenDefault(t *testing.T) {
	b := NewExecBackend("sphinx-build", "TEST_OFF_SCREEN_UNSET", true)

	env := b.environ()
	found := false
	for _, kv := range env {
		if kv == "TEST_OFF_SCREEN_UNSET=true" {
			found = true
		}
	}
	if !found {
		t.Error("Expected off-screen default to be exported when the operator has not set it")
	}
}

func TestEnvironOperatorSettingWins(t *testing.T) {
	t.Setenv("TEST_OFF_SCREEN_SET", "false")
	b := NewExecBackend("sphinx-build", "TEST_OFF_SCREEN_SET", true)

	for _, kv := range b.environ() {
		if kv == "TEST_OFF_SCREEN_SET=true" {
			t.Error("Configured default must not override the operator's explicit setting")
		}
	}
}

func TestEnvironNoVariableConfigured(t *testing.T) {
	b := NewExecBackend("sphinx-build", "", true)
	for _, kv := range b.environ() {
		if strings.HasSuffix(kv, "=true") && strings.Contains(kv, "OFF_SCREEN") {
			t.Errorf("Unexpected off-screen export without a configured variable name: %s", kv)
		}
	}
}

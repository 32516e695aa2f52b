package deploy

import (
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

func TestConfirmed(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"YES", true},
		{"  yes \n", true},
		{"n", false},
		{"no", false},
		{"", false},
		{"\n", false},
		{"yeah", false},
		{"anything else", false},
	}

	for _, test := range tests {
		if got := Confirmed(test.input); got != test.want {
			t.Errorf("Confirmed(%q) = %v, want %v", test.input, got, test.want)
		}
	}
}

func TestStageMissingTree(t *testing.T) {
	_, _, err := Stage(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
}

func TestStageCreatesSingleCommit(t *testing.T) {
	htmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(htmlDir, "index.html"), []byte("<html></html>"), 0o644))

	repo, hash, err := Stage(htmlDir, Options{CNAME: "docs.example.com"})
	require.NoError(t, err)
	require.False(t, hash.IsZero())

	// Hosting markers must be part of the staged tree.
	_, err = os.Stat(filepath.Join(htmlDir, ".nojekyll"))
	require.NoError(t, err)
	cname, err := os.ReadFile(filepath.Join(htmlDir, "CNAME"))
	require.NoError(t, err)
	require.Equal(t, "docs.example.com\n", string(cname))

	commit, err := repo.CommitObject(hash)
	require.NoError(t, err)
	require.Empty(t, commit.ParentHashes, "published history must be a single commit")

	tree, err := commit.Tree()
	require.NoError(t, err)
	for _, name := range []string{"index.html", ".nojekyll", "CNAME"} {
		_, err := tree.File(name)
		require.NoError(t, err, "expected %s in the staged commit", name)
	}
}

func TestStageDiscardsPreviousHistory(t *testing.T) {
	htmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(htmlDir, "index.html"), []byte("v1"), 0o644))

	_, first, err := Stage(htmlDir, Options{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(htmlDir, "index.html"), []byte("v2"), 0o644))
	repo, second, err := Stage(htmlDir, Options{})
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	commit, err := repo.CommitObject(second)
	require.NoError(t, err)
	require.Empty(t, commit.ParentHashes, "restaging must not grow the history")
}

func TestPublishRequiresRemote(t *testing.T) {
	htmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(htmlDir, "index.html"), nil, 0o644))

	err := Publish(t.Context(), htmlDir, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "remote not configured")
}

func TestStageOverwritesStaleRepository(t *testing.T) {
	htmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(htmlDir, "index.html"), []byte("x"), 0o644))

	// Leave a stale repository behind, as a previous aborted publish would.
	_, err := git.PlainInit(htmlDir, false)
	require.NoError(t, err)

	_, hash, err := Stage(htmlDir, Options{})
	require.NoError(t, err)
	require.False(t, hash.IsZero())
}

// Package deploy publishes the built artifact tree to a hosting branch as a
// fresh single-commit history. This is intentionally one-way and destructive:
// the remote branch history is overwritten on every publish.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docmake/internal/logfields"
)

// Options describes the publish destination.
type Options struct {
	Remote string
	Branch string
	CNAME  string // optional custom-domain marker written into the tree
}

// Confirmed reports whether the operator's answer is the affirmative token.
// Anything else, including empty input and EOF, means no.
func Confirmed(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	return false
}

// Stage turns htmlDir into a fresh git repository with a single commit holding
// the current tree. Any previous staging repository is discarded first, so the
// published history never grows.
func Stage(htmlDir string, opts Options) (*git.Repository, plumbing.Hash, error) {
	if _, err := os.Stat(htmlDir); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("artifact tree not built: %w", err)
	}

	// Hosting expects these markers inside the tree.
	if err := os.WriteFile(filepath.Join(htmlDir, ".nojekyll"), nil, 0o644); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("write .nojekyll: %w", err)
	}
	if opts.CNAME != "" {
		if err := os.WriteFile(filepath.Join(htmlDir, "CNAME"), []byte(opts.CNAME+"\n"), 0o644); err != nil {
			return nil, plumbing.ZeroHash, fmt.Errorf("write CNAME: %w", err)
		}
	}

	if err := os.RemoveAll(filepath.Join(htmlDir, ".git")); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("discard previous staging repository: %w", err)
	}

	repo, err := git.PlainInit(htmlDir, false)
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("init staging repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("stage artifact tree: %w", err)
	}

	hash, err := wt.Commit("Publish documentation", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "docmake",
			Email: "docmake@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("commit artifact tree: %w", err)
	}

	return repo, hash, nil
}

// Publish stages htmlDir and force-pushes the fresh history to the hosting
// branch, overwriting whatever was there. The caller is responsible for
// operator confirmation; this function assumes it already happened.
func Publish(ctx context.Context, htmlDir string, opts Options) error {
	if opts.Remote == "" {
		return fmt.Errorf("deploy remote not configured")
	}
	if opts.Branch == "" {
		opts.Branch = "gh-pages"
	}

	repo, hash, err := Stage(htmlDir, opts)
	if err != nil {
		return err
	}

	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{opts.Remote},
	}); err != nil {
		return fmt.Errorf("configure publish remote: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve staged head: %w", err)
	}
	refspec := gitconfig.RefSpec(fmt.Sprintf("+%s:refs/heads/%s", head.Name(), opts.Branch))

	slog.Info("Force-pushing documentation",
		logfields.URL(opts.Remote),
		slog.String("branch", opts.Branch),
		slog.String("commit", hash.String()))

	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refspec},
		Force:      true,
	}); err != nil {
		return fmt.Errorf("push to %s: %w", opts.Remote, err)
	}

	slog.Info("Documentation published", slog.String("branch", opts.Branch))
	return nil
}

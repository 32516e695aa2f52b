// Package workspace owns the artifact tree. The tree is created lazily on the
// first build, wiped wholesale by clean, and never partially deleted except
// through the explicit keep-list path used for example galleries.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docmake/internal/logfields"
)

// Manager handles the artifact tree and the auxiliary generated files that
// belong to a build (warnings log, example galleries, autosummary stubs).
type Manager struct {
	root string   // artifact tree, owned exclusively by docmake
	aux  []string // generated files/dirs outside the tree, removed with it
}

// NewManager creates a manager for the given artifact tree root.
// Auxiliary paths are removed by Clean alongside the tree itself.
func NewManager(root string, aux ...string) *Manager {
	return &Manager{root: root, aux: aux}
}

// Root returns the artifact tree path.
func (m *Manager) Root() string { return m.root }

// Ensure creates the artifact tree if it does not exist yet.
func (m *Manager) Ensure() error {
	if err := os.MkdirAll(m.root, 0o750); err != nil {
		return fmt.Errorf("create artifact tree: %w", err)
	}
	return nil
}

// Clean removes the whole artifact tree and every auxiliary path.
// Calling it when nothing exists is a no-op, not an error.
func (m *Manager) Clean() error {
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("remove artifact tree: %w", err)
	}
	for _, p := range m.aux {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	slog.Info("Cleaned artifact tree", logfields.Path(m.root))
	return nil
}

// CleanExcept removes the artifact tree and auxiliary paths but preserves the
// given subtrees. Keep paths may point inside the tree or at auxiliary paths.
func (m *Manager) CleanExcept(keep []string) error {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[filepath.Clean(k)] = true
	}

	if err := m.removeChildrenExcept(m.root, kept); err != nil {
		return err
	}
	for _, p := range m.aux {
		if kept[filepath.Clean(p)] {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	slog.Info("Cleaned artifact tree, kept subtrees", logfields.Path(m.root), slog.Int("kept", len(keep)))
	return nil
}

// RemovePaths deletes specific generated directories (autosummary stubs).
// Missing paths are skipped.
func RemovePaths(paths []string) error {
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		slog.Debug("Removed generated path", logfields.Path(p))
	}
	return nil
}

// removeChildrenExcept walks dir and removes every entry that is not itself a
// kept path and does not contain one. Missing dir is a no-op.
func (m *Manager) removeChildrenExcept(dir string, kept map[string]bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read artifact tree: %w", err)
	}

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		switch {
		case kept[filepath.Clean(child)]:
			continue
		case entry.IsDir() && containsKept(child, kept):
			if err := m.removeChildrenExcept(child, kept); err != nil {
				return err
			}
		default:
			if err := os.RemoveAll(child); err != nil {
				return fmt.Errorf("remove %s: %w", child, err)
			}
		}
	}
	return nil
}

// containsKept reports whether any kept path lives under dir.
func containsKept(dir string, kept map[string]bool) bool {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	for k := range kept {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

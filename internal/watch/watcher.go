// Package watch implements continuous rebuild mode: a debounced source-tree
// watcher, periodic maintenance schedules, and optional build event publishing.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docmake/internal/logfields"
)

// Watcher monitors the documentation source tree and triggers rebuilds.
// Rebuilds are serialized: an in-flight rebuild is never interrupted, the next
// change simply re-queues.
type Watcher struct {
	root     string
	exclude  []string // path prefixes never watched (artifact tree, VCS)
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	stopChan chan struct{}
	trigger  chan struct{}
	debounce time.Duration
	onChange func(ctx context.Context)
}

// NewWatcher creates a watcher over root. onChange runs after the debounce
// window closes; exclude prefixes (relative to root or absolute) are skipped.
func NewWatcher(root string, debounce time.Duration, onChange func(ctx context.Context), exclude ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	absExclude := make([]string, 0, len(exclude)+1)
	for _, e := range exclude {
		if !filepath.IsAbs(e) {
			e = filepath.Join(absRoot, e)
		}
		absExclude = append(absExclude, filepath.Clean(e))
	}

	return &Watcher{
		root:     absRoot,
		exclude:  absExclude,
		watcher:  fsw,
		stopChan: make(chan struct{}),
		trigger:  make(chan struct{}, 1),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Start registers the source tree and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	slog.Info("Watching documentation sources", logfields.Path(w.root))

	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	close(w.stopChan)
	return w.watcher.Close()
}

// addRecursive registers root and every non-excluded subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.excluded(path) || strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	clean := filepath.Clean(path)
	for _, e := range w.exclude {
		if clean == e || strings.HasPrefix(clean, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchLoop forwards relevant filesystem events to the debouncer.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.excluded(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories must be registered to keep the watch recursive.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			slog.Debug("Source change detected", logfields.Path(event.Name))
			w.notify()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop runs onChange after the debounce window closes. onChange runs
// inline in this goroutine, so rebuilds never overlap: a change arriving
// mid-rebuild sits in the trigger channel and queues exactly one follow-up run.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.trigger:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timerC:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerC:
			w.onChange(ctx)
		}
	}
}

// notify queues a debounced rebuild; a pending one absorbs the signal.
func (w *Watcher) notify() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

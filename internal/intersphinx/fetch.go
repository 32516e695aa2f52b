// Package intersphinx refreshes the pinned cross-project inventory files the
// generator resolves external references against.
package intersphinx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docmake/internal/logfields"
)

const maxInventoryBytes = 50 * 1024 * 1024

// Fetcher downloads inventory files into a destination directory.
type Fetcher struct {
	client *http.Client
	dir    string
	policy Policy
}

// NewFetcher creates a fetcher writing into dir.
func NewFetcher(dir string, timeout time.Duration, policy Policy) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		dir:    dir,
		policy: policy,
	}
}

// transientError marks failures worth retrying (network errors, 5xx).
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// UpdateAll fetches every named inventory. The first permanent failure aborts;
// transient failures are retried per the policy.
func (f *Fetcher) UpdateAll(ctx context.Context, inventories map[string]string) error {
	if len(inventories) == 0 {
		slog.Info("No intersphinx inventories configured")
		return nil
	}
	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return fmt.Errorf("create inventory directory: %w", err)
	}

	for name, url := range inventories {
		if err := f.fetchWithRetry(ctx, name, url); err != nil {
			return fmt.Errorf("update inventory %s: %w", name, err)
		}
	}
	return nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, name, url string) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = f.fetchOne(ctx, name, url)
		if lastErr == nil {
			return nil
		}
		var transient transientError
		if !errors.As(lastErr, &transient) || attempt >= f.policy.MaxRetries {
			return lastErr
		}

		delay := f.policy.Delay(attempt + 1)
		slog.Warn("Transient inventory fetch failure, retrying",
			logfields.URL(url), logfields.Error(lastErr), slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// fetchOne downloads a single inventory and installs it atomically: the old
// file stays intact until the new one is fully written.
func (f *Fetcher) fetchOne(ctx context.Context, name, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return transientError{fmt.Errorf("fetch %s: %w", url, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		return transientError{fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.dir, name+".inv.*")
	if err != nil {
		return fmt.Errorf("create temp inventory: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath) // no-op after successful rename
	}()

	limited := io.LimitReader(resp.Body, maxInventoryBytes+1)
	n, err := io.Copy(tmp, limited)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	if n > maxInventoryBytes {
		return fmt.Errorf("inventory %s too large", url)
	}

	dest := filepath.Join(f.dir, name+".inv")
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("install inventory: %w", err)
	}

	slog.Info("Updated intersphinx inventory", slog.String("name", name), logfields.URL(url), logfields.Path(dest))
	return nil
}

package intersphinx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{Mode: BackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 2}
}

func TestUpdateAllWritesInventory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# Sphinx inventory version 2\n"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "intersphinx")
	f := NewFetcher(dir, 5*time.Second, testPolicy())

	err := f.UpdateAll(t.Context(), map[string]string{"python": srv.URL})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "python.inv"))
	require.NoError(t, err)
	require.Equal(t, "# Sphinx inventory version 2\n", string(data))
}

func TestUpdateAllEmptyConfig(t *testing.T) {
	f := NewFetcher(t.TempDir(), time.Second, testPolicy())
	require.NoError(t, f.UpdateAll(t.Context(), nil))
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 5*time.Second, testPolicy())
	err := f.UpdateAll(t.Context(), map[string]string{"numpy": srv.URL})
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load())
}

func TestFetchPermanentFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 5*time.Second, testPolicy())
	err := f.UpdateAll(t.Context(), map[string]string{"gone": srv.URL})
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 5*time.Second, testPolicy())
	err := f.UpdateAll(t.Context(), map[string]string{"flaky": srv.URL})
	require.Error(t, err)
	// Initial attempt plus MaxRetries.
	require.Equal(t, int32(3), calls.Load())
}

func TestFetchKeepsOldInventoryOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "python.inv")
	require.NoError(t, os.WriteFile(existing, []byte("old inventory"), 0o644))

	f := NewFetcher(dir, 5*time.Second, testPolicy())
	err := f.UpdateAll(t.Context(), map[string]string{"python": srv.URL})
	require.Error(t, err)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "old inventory", string(data), "failed fetch must not clobber the previous inventory")
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	policy := Policy{Mode: BackoffFixed, Initial: time.Hour, Max: time.Hour, MaxRetries: 5}
	f := NewFetcher(t.TempDir(), 5*time.Second, policy)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	err := f.UpdateAll(ctx, map[string]string{"slow": srv.URL})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

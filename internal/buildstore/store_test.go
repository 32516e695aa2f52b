package buildstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	runs := []Record{
		{ID: "a", Target: "build", Mode: "html", StartedAt: base, Duration: 90 * time.Second, Outcome: "success"},
		{ID: "b", Target: "build", Mode: "html", StartedAt: base.Add(time.Minute), Duration: 80 * time.Second, Outcome: "warnings", Warnings: 4},
		{ID: "c", Target: "linkcheck", StartedAt: base.Add(2 * time.Minute), Duration: 10 * time.Second, Outcome: "failed"},
	}
	for _, rec := range runs {
		require.NoError(t, store.Record(ctx, rec))
	}

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	require.Equal(t, "c", records[0].ID)
	require.Equal(t, "b", records[1].ID)
	require.Equal(t, "a", records[2].ID)

	require.Equal(t, "linkcheck", records[0].Target)
	require.Equal(t, 4, records[1].Warnings)
	require.Equal(t, 90*time.Second, records[2].Duration)
	require.True(t, records[2].StartedAt.Equal(base))
}

func TestRecentHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	base := time.Now().Truncate(time.Second)
	for i, id := range []string{"one", "two", "three"} {
		require.NoError(t, store.Record(ctx, Record{
			ID: id, Target: "build", StartedAt: base.Add(time.Duration(i) * time.Minute), Outcome: "success",
		}))
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "three", records[0].ID)
}

func TestRecentEmptyStore(t *testing.T) {
	store := newTestStore(t)
	records, err := store.Recent(t.Context(), 5)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestDuplicateIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	rec := Record{ID: "dup", Target: "build", StartedAt: time.Now(), Outcome: "success"}
	require.NoError(t, store.Record(ctx, rec))
	require.Error(t, store.Record(ctx, rec))
}

func TestStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docmake", "builds.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Record(t.Context(), Record{
		ID: "x", Target: "build", StartedAt: time.Now(), Outcome: "success",
	}))
}

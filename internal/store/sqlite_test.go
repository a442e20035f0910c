package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusint/argus-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteBaseline_RoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	b := model.Baseline{
		Key: "news:geopolitics", Mean: 12.5, Variance: 6.25, Count: 4,
		UpdatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.SaveBaseline(ctx, b))

	got, err := st.GetBaseline(ctx, "news:geopolitics")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.Mean, got.Mean)
	assert.Equal(t, b.Variance, got.Variance)
	assert.Equal(t, b.Count, got.Count)
	assert.True(t, b.UpdatedAt.Equal(got.UpdatedAt))
}

func TestSQLiteBaseline_MissingIsNilNil(t *testing.T) {
	st := newTestSQLite(t)

	got, err := st.GetBaseline(context.Background(), "news:unknown")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteBaseline_UpsertReplaces(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	first := model.Baseline{Key: "k", Mean: 1, Variance: 1, Count: 1, UpdatedAt: time.Now().UTC()}
	require.NoError(t, st.SaveBaseline(ctx, first))

	second := first
	second.Mean = 2
	second.Count = 2
	require.NoError(t, st.SaveBaseline(ctx, second))

	got, err := st.GetBaseline(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Mean)
	assert.Equal(t, 2, got.Count)

	all, err := st.ListBaselines(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteSnapshot_RoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	snap := model.PlaybackSnapshot{
		ID:        "snap-1",
		Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Events: []model.ClusteredEvent{
			{ID: "ev1", PrimaryTitle: "Fed raises rates", SourceCount: 3},
		},
		MarketPrices:  map[string]float64{"SPY": 512.5},
		HotspotLevels: map[string]model.ActivityLevel{"telaviv": model.ActivityHigh},
	}
	require.NoError(t, st.SaveSnapshot(ctx, snap))

	got, err := st.GetSnapshot(ctx, "snap-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Fed raises rates", got.Events[0].PrimaryTitle)
	assert.Equal(t, 512.5, got.MarketPrices["SPY"])
	assert.Equal(t, model.ActivityHigh, got.HotspotLevels["telaviv"])
}

func TestSQLiteSnapshot_MissingIsNilNil(t *testing.T) {
	st := newTestSQLite(t)

	got, err := st.GetSnapshot(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteListSnapshots_NewestFirstWithLimit(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.SaveSnapshot(ctx, model.PlaybackSnapshot{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	snaps, err := st.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "c", snaps[0].ID)
	assert.Equal(t, "b", snaps[1].ID)
}

func TestSQLiteDeleteSnapshotsBefore(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, st.SaveSnapshot(ctx, model.PlaybackSnapshot{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	deleted, err := st.DeleteSnapshotsBefore(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := st.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	assert.Error(t, err)
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	st, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "d.db"))
	require.NoError(t, err)
	defer st.Close()

	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)
}

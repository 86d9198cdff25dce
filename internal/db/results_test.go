package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"guardians/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteResults(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, "", filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	results := []game.GameResult{
		{SessionID: "low", Days: 20, PortfolioValue: 4.1, PeakValue: 4.3, Badges: 7, FinishedAt: finished},
		{SessionID: "high", Days: 31, PortfolioValue: 6.5, PeakValue: 7, Badges: 7, Coins: 420, FinishedAt: finished.Add(time.Hour)},
		{SessionID: "mid", Days: 25, PortfolioValue: 5, PeakValue: 5, Badges: 7, FinishedAt: finished},
	}
	for _, r := range results {
		require.NoError(t, store.RecordResult(ctx, r))
	}
	// Duplicates are ignored.
	require.NoError(t, store.RecordResult(ctx, game.GameResult{SessionID: "high", PortfolioValue: 1, FinishedAt: finished}))

	top, err := store.TopResults(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].SessionID)
	assert.Equal(t, "mid", top[1].SessionID)
	assert.Equal(t, 420, top[0].Coins)
	assert.True(t, finished.Add(time.Hour).Equal(top[0].FinishedAt))

	all, err := store.TopResults(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOpenWithoutStorage(t *testing.T) {
	store, err := Open(context.Background(), "", "")
	require.NoError(t, err)
	assert.IsType(t, Noop{}, store)

	require.NoError(t, store.RecordResult(context.Background(), game.GameResult{SessionID: "x"}))
	rows, err := store.TopResults(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, store.Close())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0))
	assert.Equal(t, 10, clampLimit(-4))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, 100, clampLimit(1000))
}

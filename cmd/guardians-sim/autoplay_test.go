package main

import (
	"context"
	"sync"
	"testing"

	"guardians/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	mu   sync.Mutex
	rows []game.GameResult
}

func (m *memRecorder) RecordResult(_ context.Context, r game.GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, r)
	return nil
}

func TestAutoplayStaysInBounds(t *testing.T) {
	content, err := game.DefaultContent()
	require.NoError(t, err)
	r := game.NewRand(11)
	engine := game.NewEngine(content, game.DefaultRules(), r)

	st := autoplay(engine, 15, r)
	assert.LessOrEqual(t, st.Day, 15)
	assert.Positive(t, st.Day)
	assert.Len(t, st.History, st.Day)
	assert.LessOrEqual(t, st.Weights.Total(), game.MaxTotalWeight)
	assert.True(t, st.Badges.Has(game.Diversifier))
}

func TestRunBatchRecordsFinishedGames(t *testing.T) {
	content, err := game.DefaultContent()
	require.NoError(t, err)
	rules := game.DefaultRules()
	rules.WealthGoal = -100
	rules.EndgameBadges = 1
	rec := &memRecorder{}

	summary, err := runBatch(context.Background(), content, rules, 5, 4, 10, rec)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Games)
	assert.Equal(t, 4, summary.Finished)
	assert.Len(t, rec.rows, 4)
	assert.Positive(t, summary.MeanValue)
	assert.GreaterOrEqual(t, summary.BestValue, summary.MedianValue)
	assert.InDelta(t, 1.0, summary.MeanDays, 1e-9)
}

func TestRunBatchStopsOnCancel(t *testing.T) {
	content, err := game.DefaultContent()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runBatch(ctx, content, game.DefaultRules(), 1, 3, 5, &memRecorder{})
	assert.ErrorIs(t, err, context.Canceled)
}

package advisor

import (
	"context"
	"testing"

	"guardians/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRespond(t *testing.T) {
	content, err := game.DefaultContent()
	require.NoError(t, err)
	adv := NewLocal(content)
	owl := content.Personality("owl")
	fox := content.Personality("fox")

	tests := []struct {
		name    string
		query   game.AdvisorQuery
		contain string
	}{
		{
			name:    "asset by key",
			query:   game.AdvisorQuery{Input: "What about CRYPTO?", Weights: game.Weights{game.Crypto: 30, game.Bond: 70}, Personality: owl},
			contain: "30% in Crypto means big swings",
		},
		{
			name:    "asset by display name",
			query:   game.AdvisorQuery{Input: "is green energy good", Weights: game.Weights{}, Personality: owl},
			contain: "nothing in Green Energy",
		},
		{
			name:    "concentrated",
			query:   game.AdvisorQuery{Input: "am I at risk", Weights: game.Weights{game.Tech: 90, game.Bond: 5, game.Gold: 5}, Personality: owl},
			contain: "a lot of risk in one place",
		},
		{
			name:    "uninvested",
			query:   game.AdvisorQuery{Input: "hello", Weights: game.Weights{game.Tech: 40}, Personality: owl},
			contain: "60% not invested",
		},
		{
			name:    "balanced",
			query:   game.AdvisorQuery{Input: "how am I doing", Weights: game.DefaultWeights(), Personality: owl},
			contain: "calm assets",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := adv.Respond(context.Background(), tc.query)
			require.NoError(t, err)
			assert.Contains(t, got, tc.contain)
			assert.Contains(t, got, "Professor Owl: Hmm.")
		})
	}

	got, err := adv.Respond(context.Background(), game.AdvisorQuery{Input: "hi", Weights: game.Weights{game.Tech: 100}, Personality: fox})
	require.NoError(t, err)
	assert.Contains(t, got, "Captain Fox: ")
	assert.Contains(t, got, "Onward!")
}

func TestLocalRespondHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal(nil).Respond(ctx, game.AdvisorQuery{Input: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
}

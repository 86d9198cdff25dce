package game

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContentParses(t *testing.T) {
	c, err := DefaultContent()
	require.NoError(t, err)

	assert.Len(t, c.Assets, NumAssets)
	assert.Len(t, c.Badges, NumBadges)
	assert.Len(t, c.Personalities, 3)
	assert.NotEmpty(t, c.Tasks)
	assert.NotEmpty(t, c.Events)
	assert.NotEmpty(t, c.Dilemmas)
	assert.NotEmpty(t, c.Quizzes)
	assert.NotEmpty(t, c.Prizes)

	g, ok := c.Goals["go-green"]
	require.True(t, ok)
	assert.Equal(t, GoalMinWeight, g.Kind)
	assert.Equal(t, ESG, g.Asset)
	require.NotNil(t, g.Reward.Badge)
	assert.Equal(t, GreenPioneer, *g.Reward.Badge)

	ev, ok := c.Event("mystery-merger")
	require.True(t, ok)
	assert.True(t, ev.HasChoices())
}

func TestContentLookups(t *testing.T) {
	c := flatContent(t)
	assert.Equal(t, "all-crypto", c.Task(0).ID)
	assert.Equal(t, "free", c.Task(3).ID)
	assert.Equal(t, "free", c.Task(-1).ID)

	assert.Equal(t, "owl", c.Personality("missing").ID)
	assert.True(t, c.HasPersonality("fox"))
	assert.False(t, c.HasPersonality("missing"))

	assert.Equal(t, "Diversifier", c.BadgeName(Diversifier))
	assert.Equal(t, "yield_sage", c.BadgeName(YieldSage))

	_, ok := c.Dilemma("nope")
	assert.False(t, ok)
}

func TestQuizAnswerStaysPrivate(t *testing.T) {
	c := flatContent(t)
	q, ok := c.Quiz("q1")
	require.True(t, ok)
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "answer")
}

func TestParseContentRejectsBadTables(t *testing.T) {
	cases := map[string]struct{ old, new string }{
		"unknown asset":       {old: "key: tech, name: Tech", new: "key: doge, name: Doge"},
		"unknown goal kind":   {old: "kind: min_weight", new: "kind: most_weight"},
		"quiz answer range":   {old: "answer: 1\n  - id: q2", new: "answer: 5\n  - id: q2"},
		"reversed impact":     {old: "{min: -10, max: -10}", new: "{min: -10, max: -20}"},
		"unknown badge":       {old: "key: diversifier", new: "key: hoarder"},
		"unknown rule kind":   {old: "kind: returns_below", new: "kind: returns_above"},
		"zero weight prize":   {old: "weight: 1, coins: 20", new: "weight: 0, coins: 20"},
		"duplicate task":      {old: "id: free\n", new: "id: all-crypto\n"},
		"event impact assets": {old: "description: Everything goes up.\n    impact: {min: 60, max: 60}", new: "description: Everything goes up.\n    impact: {min: 60, max: 60, assets: [moon]}"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			raw := strings.Replace(flatContentYAML, tc.old, tc.new, 1)
			require.NotEqual(t, flatContentYAML, raw, "replacement did not apply")
			_, err := ParseContent([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidContent)
		})
	}
}

func TestParseContentRequiresEvents(t *testing.T) {
	_, err := ParseContent([]byte("tasks: [{id: a}]\npersonalities: [{id: owl}]\n"))
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = ParseContent([]byte("tasks: [oops"))
	assert.Error(t, err)
}

func TestLoadContent(t *testing.T) {
	c, err := LoadContent("")
	require.NoError(t, err)
	assert.Len(t, c.Assets, NumAssets)

	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(flatContentYAML), 0o600))
	c, err = LoadContent(path)
	require.NoError(t, err)
	assert.Len(t, c.Events, 3)

	_, err = LoadContent(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

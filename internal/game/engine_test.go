package game

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every asset has zero expected return and zero noise so event impacts alone
// decide the day.
const flatContentYAML = `
assets:
  - {key: tech, name: Tech, expected_return: 0, volatility: 0}
  - {key: bond, name: Bond, expected_return: 0, volatility: 0}
  - {key: gold, name: Gold, expected_return: 0, volatility: 0}
  - {key: crypto, name: Crypto, expected_return: 0, volatility: 0}
  - {key: esg, name: Green, expected_return: 0, volatility: 0}
  - {key: stablecoin, name: Stable, expected_return: 0, volatility: 0}
  - {key: yield, name: Yield, expected_return: 0, volatility: 0}
tasks:
  - id: all-crypto
    title: All crypto
    description: Nearly everything in crypto.
    goal: {kind: min_weight, asset: crypto, threshold: 90, reward: {coins: 50}}
  - id: free
    title: Free day
    description: Nothing to do.
events:
  - id: boom
    title: Boom
    description: Everything goes up.
    impact: {min: 60, max: 60}
  - id: fork
    title: Fork in the road
    description: Choose.
    choices:
      - label: Safe
        impact: {min: 10, max: 10}
      - label: Wild
        impact: {min: -20, max: -20}
  - id: slump
    title: Slump
    description: Everything goes down.
    impact: {min: -10, max: -10}
dilemmas:
  - id: first
    text: First dilemma?
    options:
      - {label: A, skill: patience, consequence: You waited.}
      - {label: B, skill: risk, consequence: You jumped.}
  - id: second
    text: Second dilemma?
    options:
      - {label: A, skill: research, consequence: You read up.}
quizzes:
  - id: q1
    question: One?
    options: [wrong, right]
    answer: 1
  - id: q2
    question: Two?
    options: [wrong, right]
    answer: 1
badges:
  - {key: diversifier, name: Diversifier, description: Four assets.}
personalities:
  - {id: owl, name: Professor Owl, style: wise, greeting: Hoo.}
  - {id: fox, name: Captain Fox, style: bold, greeting: Onward.}
feedback:
  - kind: returns_below
    threshold: 0
    template: "Down {returns}% today."
  - kind: badge_earned
    template: "You earned {badge}!"
wheel:
  - {label: 20 coins, weight: 1, coins: 20}
  - {label: Calm badge, weight: 1, badge: calm_guardian}
`

// scriptRand replays queued draws and falls back to 0.5 and 0, which skip
// every chance roll under the default rules and pick the first option.
type scriptRand struct {
	floats []float64
	ints   []int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func flatContent(t *testing.T) *Content {
	t.Helper()
	c, err := ParseContent([]byte(flatContentYAML))
	require.NoError(t, err)
	return c
}

func newTestEngine(t *testing.T, r *scriptRand) *Engine {
	t.Helper()
	return NewEngine(flatContent(t), DefaultRules(), r)
}

func TestAdvanceDayResolvesScenario(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	st, out := e.Apply(e.NewState(), AdvanceDay{})

	require.True(t, out.Applied)
	assert.True(t, out.DayResolved)
	assert.Equal(t, PauseNone, out.Paused)
	assert.Equal(t, 1, st.Day)
	assert.InDelta(t, 60.0, st.Returns, 1e-9)
	assert.Equal(t, 106, st.Coins)
	assert.Equal(t, 6, st.Gems)
	assert.Equal(t, 1, st.Stars)
	assert.Equal(t, "boom", st.EventID)
	assert.InDelta(t, 1.6, st.PortfolioValue, 1e-9)
	assert.InDelta(t, 1.6, st.PeakValue, 1e-9)
	assert.Zero(t, st.Drawdown)
	assert.Greater(t, st.Volatility, 0.0)
	assert.Equal(t, 1, st.TaskIndex)

	require.Len(t, st.History, 1)
	rec := st.History[0]
	assert.Equal(t, 1, rec.Day)
	assert.Equal(t, "all-crypto", rec.TaskID)
	assert.False(t, rec.Completed)
	assert.Nil(t, rec.Reward)
	assert.Nil(t, rec.Choice)

	assert.True(t, st.Badges.Has(Diversifier))
	assert.Equal(t, []Badge{Diversifier}, out.EarnedBadges)
	assert.Equal(t, []string{"Professor Owl: You earned Diversifier!"}, st.AIMessages)
	assert.True(t, st.AIChatOpen)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	first, _ := e.Apply(e.NewState(), AdvanceDay{})
	second, _ := e.Apply(first, AdvanceDay{})

	assert.Equal(t, 1, first.Day)
	assert.Len(t, first.History, 1)
	assert.Len(t, second.History, 2)
	assert.Equal(t, 2, second.Day)
}

func TestTaskGoalRewardsCompletion(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	st := e.NewState()
	for _, a := range AllAssets() {
		st, _ = e.Apply(st, SetWeight{Asset: a, Value: 0})
	}
	st, out := e.Apply(st, SetWeight{Asset: Crypto, Value: 95})
	require.True(t, out.Applied)

	st, _ = e.Apply(st, AdvanceDay{})
	require.Len(t, st.History, 1)
	rec := st.History[0]
	assert.True(t, rec.Completed)
	require.NotNil(t, rec.Reward)
	assert.Equal(t, 50, rec.Reward.Coins)
	// 60% on 95 invested is 57%: reward 50, return coins 5.
	assert.InDelta(t, 57.0, st.Returns, 1e-9)
	assert.Equal(t, InitialCoins+50+5, st.Coins)
	// One active asset above 60 on a positive day.
	assert.True(t, st.Badges.Has(RiskManager))
	assert.False(t, st.Badges.Has(Diversifier))
}

func TestEasterEggBonusLandsOnResolvedDay(t *testing.T) {
	e := newTestEngine(t, &scriptRand{floats: []float64{0.0}})
	st, out := e.Apply(e.NewState(), AdvanceDay{})

	require.True(t, out.EasterEgg)
	assert.Equal(t, easterEggNotice, st.Notice)
	assert.InDelta(t, 65.0, st.Returns, 1e-9)
	assert.Zero(t, st.PendingBonus)
	assert.Equal(t, InitialCoins+10+6, st.Coins)
	assert.Equal(t, InitialGems+1+1, st.Gems)
}

func TestEasterEggBonusSurvivesPause(t *testing.T) {
	// egg, then dilemma
	e := newTestEngine(t, &scriptRand{floats: []float64{0.0, 0.1}})
	st, out := e.Apply(e.NewState(), AdvanceDay{})
	require.Equal(t, PauseDilemma, out.Paused)
	assert.InDelta(t, 5.0, st.PendingBonus, 1e-9)

	st, _ = e.Apply(st, AnswerDilemma{Option: 0})
	st, _ = e.Apply(st, AdvanceDay{})
	assert.InDelta(t, 65.0, st.Returns, 1e-9)
	assert.Zero(t, st.PendingBonus)
}

func TestDilemmaPausesAndAnswers(t *testing.T) {
	e := newTestEngine(t, &scriptRand{floats: []float64{0.5, 0.1}, ints: []int{1}})
	st, out := e.Apply(e.NewState(), AdvanceDay{})

	require.Equal(t, PauseDilemma, out.Paused)
	assert.False(t, out.DayResolved)
	assert.Equal(t, 0, st.Day)
	assert.Equal(t, "second", st.ActiveDilemma)
	assert.Equal(t, []string{"second"}, st.AskedDilemmas)

	blocked, out := e.Apply(st, AdvanceDay{})
	assert.False(t, out.Applied)
	assert.Equal(t, st.Day, blocked.Day)

	_, out = e.Apply(st, AnswerDilemma{Option: 3})
	assert.False(t, out.Applied)

	answered, out := e.Apply(st, AnswerDilemma{Option: 0})
	require.True(t, out.Applied)
	assert.Equal(t, "You read up.", out.Consequence)
	assert.Empty(t, answered.ActiveDilemma)
	assert.Equal(t, 1, answered.Skills["research"])
	assert.Empty(t, st.Skills)
}

func TestDilemmasNeverRepeat(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	e.Rules.EasterEggChance = 0
	e.Rules.DilemmaChance = 1
	e.Rules.QuizChance = 0

	st := e.NewState()
	var seen []string
	for i := 0; i < 4; i++ {
		var out Outcome
		st, out = e.Apply(st, AdvanceDay{})
		if out.Paused == PauseDilemma {
			seen = append(seen, st.ActiveDilemma)
			st, _ = e.Apply(st, AnswerDilemma{Option: 0})
		}
	}
	assert.ElementsMatch(t, []string{"first", "second"}, seen)
	assert.Equal(t, 2, st.Day)
}

func TestQuizScoring(t *testing.T) {
	e := newTestEngine(t, &scriptRand{floats: []float64{0.5, 0.5, 0.1, 0.5, 0.5, 0.1}})
	st, out := e.Apply(e.NewState(), AdvanceDay{})
	require.Equal(t, PauseQuiz, out.Paused)
	assert.Equal(t, "q1", st.ActiveQuiz)

	st, out = e.Apply(st, AnswerQuiz{Option: 0})
	require.True(t, out.Applied)
	assert.False(t, out.Correct)
	assert.Equal(t, InitialCoins, st.Coins)
	assert.Contains(t, st.QuizResult, "Not quite")

	st, out = e.Apply(st, AdvanceDay{})
	require.Equal(t, PauseQuiz, out.Paused)
	assert.Equal(t, "q2", st.ActiveQuiz)
	assert.Empty(t, st.QuizResult)

	st, out = e.Apply(st, AnswerQuiz{Option: 1})
	assert.True(t, out.Correct)
	assert.Equal(t, InitialCoins+5, st.Coins)
	assert.Equal(t, []string{"q1", "q2"}, st.AskedQuizzes)
}

func TestChoiceEventWaitsForChoice(t *testing.T) {
	e := newTestEngine(t, &scriptRand{ints: []int{1}})
	st, out := e.Apply(e.NewState(), AdvanceDay{})
	require.Equal(t, PauseChoice, out.Paused)
	assert.Equal(t, "fork", st.PendingEvent)
	assert.Equal(t, 0, st.Day)

	_, out = e.Apply(st, AdvanceDay{})
	assert.False(t, out.Applied)
	bad := 7
	_, out = e.Apply(st, AdvanceDay{Choice: &bad})
	assert.False(t, out.Applied)

	wild := 1
	st, out = e.Apply(st, AdvanceDay{Choice: &wild})
	require.True(t, out.DayResolved)
	assert.Empty(t, st.PendingEvent)
	assert.InDelta(t, -20.0, st.Returns, 1e-9)
	assert.Equal(t, InitialCoins, st.Coins)
	assert.Zero(t, st.Stars)
	assert.InDelta(t, 0.8, st.PortfolioValue, 1e-9)
	assert.InDelta(t, 0.2, st.Drawdown, 1e-9)
	require.Len(t, st.History, 1)
	require.NotNil(t, st.History[0].Choice)
	assert.Equal(t, 1, *st.History[0].Choice)
	assert.Contains(t, st.AIMessages, "Professor Owl: Down -20.00% today.")
}

func TestSetWeightKeepsTotalWithinLimit(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	st := e.NewState()
	require.Equal(t, MaxTotalWeight, st.Weights.Total())

	next, out := e.Apply(st, SetWeight{Asset: Tech, Value: 20})
	assert.False(t, out.Applied)
	assert.Equal(t, st.Weights, next.Weights)

	next, out = e.Apply(st, SetWeight{Asset: Tech, Value: 10})
	assert.True(t, out.Applied)
	assert.Equal(t, 94, next.Weights.Total())

	_, out = e.Apply(st, SetWeight{Asset: Asset(42), Value: 1})
	assert.False(t, out.Applied)
	_, out = e.Apply(st, SetWeight{Asset: Tech, Value: -1})
	assert.False(t, out.Applied)

	next, out = e.Apply(st, SetWeight{Asset: Tech, Value: math.MaxInt})
	assert.False(t, out.Applied)
	assert.Equal(t, st.Weights, next.Weights)
	assert.Equal(t, MaxTotalWeight, next.Weights.Total())
}

func TestToggleAssetBlocksWeights(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	st, out := e.Apply(e.NewState(), ToggleAsset{Asset: Crypto})
	require.True(t, out.Applied)
	assert.False(t, st.Allowed.Has(Crypto))
	assert.Zero(t, st.Weights[Crypto])

	_, out = e.Apply(st, SetWeight{Asset: Crypto, Value: 5})
	assert.False(t, out.Applied)

	st, _ = e.Apply(st, ToggleAsset{Asset: Crypto})
	assert.True(t, st.Allowed.Has(Crypto))
	assert.Zero(t, st.Weights[Crypto])
}

func TestResetKeepsParentControls(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	fox := "fox"
	st := e.NewState()
	st, _ = e.Apply(st, ToggleAsset{Asset: Crypto})
	st, _ = e.Apply(st, ConfigureAdvisor{Personality: &fox})
	st, _ = e.Apply(st, AdvanceDay{})
	require.Equal(t, 1, st.Day)

	st, out := e.Apply(st, Reset{})
	require.True(t, out.Applied)
	assert.Zero(t, st.Day)
	assert.Equal(t, InitialCoins, st.Coins)
	assert.Equal(t, InitialGems, st.Gems)
	assert.Empty(t, st.History)
	assert.Zero(t, st.Badges.Len())
	assert.Equal(t, 1.0, st.PortfolioValue)
	assert.False(t, st.Allowed.Has(Crypto))
	assert.Zero(t, st.Weights[Crypto])
	assert.Equal(t, "fox", st.AIPersonality)
}

func TestCoinRequests(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	st := e.NewState()

	_, out := e.Apply(st, RequestCoins{Amount: 0})
	assert.False(t, out.Applied)
	_, out = e.Apply(st, ApproveCoins{})
	assert.False(t, out.Applied)

	st, _ = e.Apply(st, RequestCoins{Amount: 30})
	assert.Equal(t, 30, st.PendingCoinRequest)
	st, out = e.Apply(st, ApproveCoins{})
	require.True(t, out.Applied)
	assert.Equal(t, InitialCoins+30, st.Coins)
	assert.Zero(t, st.PendingCoinRequest)

	st, _ = e.Apply(st, RequestCoins{Amount: 10})
	st, out = e.Apply(st, RejectCoins{})
	require.True(t, out.Applied)
	assert.Equal(t, InitialCoins+30, st.Coins)
	assert.Zero(t, st.PendingCoinRequest)

	_, out = e.Apply(st, RequestCoins{Amount: e.Rules.MaxCoinRequest + 1})
	assert.False(t, out.Applied)
	next, _ := e.Apply(st, RequestCoins{Amount: math.MaxInt})
	assert.Zero(t, next.PendingCoinRequest)
	next, out = e.Apply(next, ApproveCoins{})
	assert.False(t, out.Applied)
	assert.Equal(t, InitialCoins+30, next.Coins)

	next, _ = e.Apply(st, RequestCoins{Amount: e.Rules.MaxCoinRequest})
	next, out = e.Apply(next, ApproveCoins{})
	require.True(t, out.Applied)
	assert.Equal(t, InitialCoins+30+e.Rules.MaxCoinRequest, next.Coins)
}

func TestWheelOncePerDay(t *testing.T) {
	r := &scriptRand{ints: []int{1}}
	e := newTestEngine(t, r)
	st, out := e.Apply(e.NewState(), SpinWheel{})
	require.True(t, out.Applied)
	require.NotNil(t, out.Prize)
	assert.Equal(t, "Calm badge", st.WheelResult)
	assert.True(t, st.Badges.Has(CalmGuardian))
	assert.Equal(t, []Badge{CalmGuardian}, out.EarnedBadges)

	_, out = e.Apply(st, SpinWheel{})
	assert.False(t, out.Applied)

	st, _ = e.Apply(st, AdvanceDay{})
	assert.False(t, st.WheelUsed)
	coins := st.Coins
	st, out = e.Apply(st, SpinWheel{})
	require.True(t, out.Applied)
	assert.Equal(t, coins+20, st.Coins)
}

func TestBadgesOnlyGrow(t *testing.T) {
	e := newTestEngine(t, &scriptRand{ints: []int{0, 2, 2}})
	st := e.NewState()
	var held BadgeSet
	for i := 0; i < 3; i++ {
		st, _ = e.Apply(st, AdvanceDay{})
		assert.Equal(t, held, st.Badges&held)
		held = st.Badges
	}
	assert.True(t, held.Has(Diversifier))
}

func TestEndgameAndSummary(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	e.Rules.EndgameBadges = 1

	st := e.NewState()
	var out Outcome
	for i := 0; i < 2; i++ {
		st, out = e.Apply(st, AdvanceDay{})
		require.False(t, st.Endgame)
	}
	// 1.6^3 = 4.096, a cumulative return over 300%.
	st, out = e.Apply(st, AdvanceDay{})
	require.True(t, out.Endgame)
	assert.True(t, st.Endgame)
	assert.False(t, st.ShowSummary)

	_, out = e.Apply(st, AdvanceDay{})
	assert.False(t, out.Applied)

	st, out = e.Apply(st, RevealSummary{})
	require.True(t, out.Applied)
	assert.True(t, st.ShowSummary)
	_, out = e.Apply(st, RevealSummary{})
	assert.False(t, out.Applied)
}

func TestEndgameNeedsEveryCatalogBadgeByDefault(t *testing.T) {
	// The default weights never exceed 60, so risk_manager stays out of reach.
	raw := strings.Replace(flatContentYAML,
		"  - {key: diversifier, name: Diversifier, description: Four assets.}\n",
		"  - {key: diversifier, name: Diversifier, description: Four assets.}\n  - {key: risk_manager, name: Risk Manager, description: Bold.}\n", 1)
	require.NotEqual(t, flatContentYAML, raw)
	c, err := ParseContent([]byte(raw))
	require.NoError(t, err)
	e := NewEngine(c, DefaultRules(), &scriptRand{})
	st := e.NewState()
	for i := 0; i < 5; i++ {
		st, _ = e.Apply(st, AdvanceDay{})
	}
	assert.Greater(t, st.CumulativeReturn(), e.Rules.WealthGoal)
	assert.True(t, st.Badges.Has(Diversifier))
	assert.False(t, st.Endgame)
}

func TestEndgameFollowsLoadedCatalog(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	require.Len(t, e.Content.Badges, 1)
	st := e.NewState()
	for i := 0; i < 2; i++ {
		st, _ = e.Apply(st, AdvanceDay{})
		require.False(t, st.Endgame)
	}
	st, out := e.Apply(st, AdvanceDay{})
	assert.True(t, out.Endgame)
	assert.True(t, st.Badges.Has(Diversifier))
	assert.Less(t, st.Badges.Len(), NumBadges)
}

func TestAdvisorSettings(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	off := false
	st, out := e.Apply(e.NewState(), ConfigureAdvisor{Enabled: &off})
	require.True(t, out.Applied)
	assert.False(t, st.AIEnabled)

	_, out = e.Apply(st, AdvisorPending{})
	assert.False(t, out.Applied)

	unknown := "dragon"
	st, out = e.Apply(st, ConfigureAdvisor{Personality: &unknown})
	assert.False(t, out.Applied)
	assert.Equal(t, "owl", st.AIPersonality)

	// Feedback is only queued while the advisor is on.
	st, _ = e.Apply(st, AdvanceDay{})
	assert.Empty(t, st.AIMessages)
}

func TestAddStarsUpdatesProgress(t *testing.T) {
	e := newTestEngine(t, &scriptRand{})
	st, out := e.Apply(e.NewState(), AddStars{Count: 10})
	require.True(t, out.Applied)
	assert.Equal(t, 10, st.Stars)
	assert.Equal(t, 50, st.Progress)

	_, out = e.Apply(st, AddStars{Count: 0})
	assert.False(t, out.Applied)
}

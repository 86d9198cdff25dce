package game

import (
	"math"
	"strings"
)

// Action is a caller request applied to a State by Engine.Apply.
type Action interface {
	isAction()
}

type (
	AdvanceDay struct {
		Choice *int `json:"choice,omitempty"`
	}
	AnswerDilemma struct {
		Option int `json:"option"`
	}
	AnswerQuiz struct {
		Option int `json:"option"`
	}
	SetWeight struct {
		Asset Asset `json:"asset"`
		Value int   `json:"value"`
	}
	ToggleAsset struct {
		Asset Asset `json:"asset"`
	}
	RequestCoins struct {
		Amount int `json:"amount"`
	}
	ApproveCoins struct{}
	RejectCoins  struct{}
	SpinWheel    struct{}
	AddStars     struct {
		Count int `json:"count"`
	}
	ConfigureAdvisor struct {
		Enabled     *bool   `json:"enabled,omitempty"`
		Personality *string `json:"personality,omitempty"`
	}
	AdvisorPending struct{}
	AdvisorReply   struct {
		Text string `json:"text"`
	}
	Reset         struct{}
	RevealSummary struct{}
)

func (AdvanceDay) isAction()       {}
func (AnswerDilemma) isAction()    {}
func (AnswerQuiz) isAction()       {}
func (SetWeight) isAction()        {}
func (ToggleAsset) isAction()      {}
func (RequestCoins) isAction()     {}
func (ApproveCoins) isAction()     {}
func (RejectCoins) isAction()      {}
func (SpinWheel) isAction()        {}
func (AddStars) isAction()         {}
func (ConfigureAdvisor) isAction() {}
func (AdvisorPending) isAction()   {}
func (AdvisorReply) isAction()     {}
func (Reset) isAction()            {}
func (RevealSummary) isAction()    {}

// Wheel resolves a spin of the reward wheel.
type Wheel interface {
	Spin(r Rand) WheelPrize
}

// Engine applies actions to game snapshots. It holds no game state of its own.
type Engine struct {
	Content *Content
	Rules   Rules
	Rand    Rand
	Wheel   Wheel
}

func NewEngine(content *Content, rules Rules, r Rand) *Engine {
	return &Engine{
		Content: content,
		Rules:   rules,
		Rand:    r,
		Wheel:   PrizeWheel{Prizes: content.Prizes},
	}
}

// NewState returns the snapshot of a fresh game.
func (e *Engine) NewState() State {
	personality := ""
	if len(e.Content.Personalities) > 0 {
		personality = e.Content.Personalities[0].ID
	}
	return State{
		Coins:          InitialCoins,
		Gems:           InitialGems,
		Weights:        DefaultWeights(),
		Allowed:        AllAssetSet(),
		PortfolioValue: 1,
		PeakValue:      1,
		History:        []DayRecord{},
		AskedDilemmas:  []string{},
		AskedQuizzes:   []string{},
		Skills:         map[string]int{},
		AIEnabled:      true,
		AIPersonality:  personality,
		AIMessages:     []string{},
	}
}

// Apply is the single transition function: it never mutates st.
func (e *Engine) Apply(st State, act Action) (State, Outcome) {
	switch a := act.(type) {
	case AdvanceDay:
		return e.advanceDay(st, a.Choice)
	case AnswerDilemma:
		return e.answerDilemma(st, a.Option)
	case AnswerQuiz:
		return e.answerQuiz(st, a.Option)
	case SetWeight:
		return setWeight(st, a.Asset, a.Value)
	case ToggleAsset:
		return toggleAsset(st, a.Asset)
	case RequestCoins:
		if a.Amount <= 0 || a.Amount > e.Rules.MaxCoinRequest {
			return st, Outcome{}
		}
		st.PendingCoinRequest = a.Amount
		return st, Outcome{Applied: true}
	case ApproveCoins:
		if st.PendingCoinRequest <= 0 {
			return st, Outcome{}
		}
		st.Coins += st.PendingCoinRequest
		st.PendingCoinRequest = 0
		return st, Outcome{Applied: true}
	case RejectCoins:
		if st.PendingCoinRequest <= 0 {
			return st, Outcome{}
		}
		st.PendingCoinRequest = 0
		return st, Outcome{Applied: true}
	case SpinWheel:
		return e.spinWheel(st)
	case AddStars:
		if a.Count <= 0 {
			return st, Outcome{}
		}
		return addStars(st, a.Count), Outcome{Applied: true}
	case ConfigureAdvisor:
		return e.configureAdvisor(st, a)
	case AdvisorPending:
		if !st.AIEnabled {
			return st, Outcome{}
		}
		st.AIResponse = AdvisorThinking
		return st, Outcome{Applied: true}
	case AdvisorReply:
		st.AIResponse = a.Text
		return st, Outcome{Applied: true}
	case Reset:
		return e.reset(st), Outcome{Applied: true}
	case RevealSummary:
		if !st.Endgame || st.ShowSummary {
			return st, Outcome{}
		}
		st.ShowSummary = true
		return st, Outcome{Applied: true}
	default:
		return st, Outcome{}
	}
}

func (e *Engine) advanceDay(st State, choice *int) (State, Outcome) {
	if st.Endgame || st.ActiveDilemma != "" || st.ActiveQuiz != "" {
		return st, Outcome{}
	}
	st.Notice = ""

	if st.PendingEvent != "" {
		ev, ok := e.Content.Event(st.PendingEvent)
		if !ok {
			st.PendingEvent = ""
			return st, Outcome{Applied: true}
		}
		if choice == nil || *choice < 0 || *choice >= len(ev.Choices) {
			return st, Outcome{}
		}
		st.PendingEvent = ""
		c := *choice
		return e.resolveDay(st, ev, ev.Choices[c].Impact, &c, Outcome{Applied: true})
	}

	out := Outcome{Applied: true}
	if chance(e.Rand, e.Rules.EasterEggChance) {
		st.Notice = easterEggNotice
		st.PendingBonus += e.Rules.EasterEggBonus
		st.Coins += e.Rules.EasterEggCoins
		st.Gems += e.Rules.EasterEggGems
		out.EasterEgg = true
	}

	st.WheelUsed = false
	st.WheelResult = ""

	if chance(e.Rand, e.Rules.DilemmaChance) {
		var available []string
		for _, d := range e.Content.Dilemmas {
			if !st.dilemmaAsked(d.ID) {
				available = append(available, d.ID)
			}
		}
		if len(available) > 0 {
			id := available[e.Rand.Intn(len(available))]
			st.ActiveDilemma = id
			st.AskedDilemmas = appendClone(st.AskedDilemmas, id)
			out.Paused = PauseDilemma
			return st, out
		}
	}

	if chance(e.Rand, e.Rules.QuizChance) {
		var available []string
		for _, q := range e.Content.Quizzes {
			if !st.quizAsked(q.ID) {
				available = append(available, q.ID)
			}
		}
		if len(available) > 0 {
			id := available[e.Rand.Intn(len(available))]
			st.ActiveQuiz = id
			st.AskedQuizzes = appendClone(st.AskedQuizzes, id)
			st.QuizResult = ""
			out.Paused = PauseQuiz
			return st, out
		}
	}

	ev := e.Content.Events[e.Rand.Intn(len(e.Content.Events))]
	st.EventID = ev.ID
	if ev.HasChoices() {
		st.PendingEvent = ev.ID
		out.Paused = PauseChoice
		return st, out
	}
	return e.resolveDay(st, ev, ev.Impact, nil, out)
}

// resolveDay runs the simulation step for an event whose impact is known.
func (e *Engine) resolveDay(st State, ev Event, rng ImpactRange, choice *int, out Outcome) (State, Outcome) {
	impact := resolveImpact(e.Rand, rng, st.Weights, e.Content.Assets, st.PendingBonus)
	res := CalculateDailyReturns(st.Weights, e.Content.Assets, impact, st.PortfolioValue, st.PeakValue)
	dayReturn := res.Returns

	st.EventID = ev.ID
	st.PendingBonus = 0
	st.Returns = dayReturn
	st.Volatility = res.Volatility
	st.Drawdown = res.Drawdown
	st.PortfolioValue = res.PortfolioValue
	st.PeakValue = res.PeakValue

	task := e.Content.Task(st.TaskIndex)
	record := DayRecord{
		Day:     st.Day + 1,
		Weights: st.Weights,
		EventID: ev.ID,
		Choice:  choice,
		Returns: dayReturn,
		TaskID:  task.ID,
	}

	earned := BadgeSet(0)
	if goal, ok := e.Content.Goals[task.ID]; ok && goal.Met(st.Weights) {
		reward := goal.Reward
		record.Completed = true
		record.Reward = &reward
		st.Coins += reward.Coins
		st.Gems += reward.Gems
		if reward.Badge != nil && !st.Badges.Has(*reward.Badge) {
			earned = earned.With(*reward.Badge)
		}
	}

	if coins := int(math.Floor(dayReturn / e.Rules.CoinsPerReturn)); coins > 0 {
		st.Coins += coins
	}
	if dayReturn > e.Rules.GemReturnThreshold {
		st.Gems++
	}
	if dayReturn > 0 {
		st = addStars(st, 1)
	}

	for _, b := range EligibleBadges(st.Badges, st.Weights, st.History, dayReturn) {
		earned = earned.With(b)
	}
	newly := earned.List()
	for _, b := range newly {
		st.Badges = st.Badges.With(b)
	}

	st.History = appendClone(st.History, record)
	st.Day++
	st.TaskIndex = st.Day % max(len(e.Content.Tasks), 1)

	if st.AIEnabled {
		if msgs := e.feedback(st, dayReturn, newly); len(msgs) > 0 {
			st.AIMessages = appendClone(st.AIMessages, msgs...)
			st.AIChatOpen = true
		}
	}

	out.DayResolved = true
	out.EarnedBadges = newly
	if e.endgameReached(st) {
		st.Endgame = true
		out.Endgame = true
	}
	return st, out
}

func (e *Engine) answerDilemma(st State, option int) (State, Outcome) {
	if st.ActiveDilemma == "" {
		return st, Outcome{}
	}
	d, ok := e.Content.Dilemma(st.ActiveDilemma)
	if !ok {
		st.ActiveDilemma = ""
		return st, Outcome{Applied: true}
	}
	if option < 0 || option >= len(d.Options) {
		return st, Outcome{}
	}
	opt := d.Options[option]
	skills := make(map[string]int, len(st.Skills)+1)
	for k, v := range st.Skills {
		skills[k] = v
	}
	skills[opt.Skill]++
	st.Skills = skills
	st.ActiveDilemma = ""
	return st, Outcome{Applied: true, Consequence: opt.Consequence}
}

func (e *Engine) answerQuiz(st State, option int) (State, Outcome) {
	if st.ActiveQuiz == "" {
		return st, Outcome{}
	}
	q, ok := e.Content.Quiz(st.ActiveQuiz)
	if !ok {
		st.ActiveQuiz = ""
		return st, Outcome{Applied: true}
	}
	if option < 0 || option >= len(q.Options) {
		return st, Outcome{}
	}
	st.ActiveQuiz = ""
	if option == q.Answer {
		st.Coins += e.Rules.QuizCoins
		st.QuizResult = "Correct! " + q.Options[q.Answer]
		return st, Outcome{Applied: true, Correct: true}
	}
	st.QuizResult = "Not quite. The answer is: " + q.Options[q.Answer]
	return st, Outcome{Applied: true}
}

func setWeight(st State, a Asset, value int) (State, Outcome) {
	if !a.Valid() || !st.Allowed.Has(a) || value < 0 {
		return st, Outcome{}
	}
	sanitized := st.Weights.Sanitize(st.Allowed)
	next := sanitized
	next[a] = value
	if value > MaxTotalWeight || next.Total() > MaxTotalWeight {
		st.Weights = sanitized
		return st, Outcome{}
	}
	st.Weights = next
	return st, Outcome{Applied: true}
}

func toggleAsset(st State, a Asset) (State, Outcome) {
	if !a.Valid() {
		return st, Outcome{}
	}
	if st.Allowed.Has(a) {
		st.Allowed = st.Allowed.Without(a)
		st.Weights[a] = 0
	} else {
		st.Allowed = st.Allowed.With(a)
	}
	return st, Outcome{Applied: true}
}

func (e *Engine) spinWheel(st State) (State, Outcome) {
	if st.WheelUsed || st.Endgame || e.Wheel == nil {
		return st, Outcome{}
	}
	prize := e.Wheel.Spin(e.Rand)
	st.WheelUsed = true
	st.WheelResult = prize.Label
	st.Coins += prize.Coins
	st.Gems += prize.Gems
	st.PendingBonus += prize.ReturnBonus
	if prize.Stars > 0 {
		st = addStars(st, prize.Stars)
	}
	out := Outcome{Applied: true, Prize: &prize}
	if prize.Badge != nil && !st.Badges.Has(*prize.Badge) {
		st.Badges = st.Badges.With(*prize.Badge)
		out.EarnedBadges = []Badge{*prize.Badge}
	}
	return st, out
}

func (e *Engine) configureAdvisor(st State, a ConfigureAdvisor) (State, Outcome) {
	applied := false
	if a.Enabled != nil {
		st.AIEnabled = *a.Enabled
		applied = true
	}
	if a.Personality != nil {
		id := strings.TrimSpace(*a.Personality)
		if e.Content.HasPersonality(id) {
			st.AIPersonality = id
			applied = true
		}
	}
	return st, Outcome{Applied: applied}
}

// reset starts a new game but keeps parent controls and advisor preferences.
func (e *Engine) reset(st State) State {
	next := e.NewState()
	next.Allowed = st.Allowed
	next.Weights = next.Weights.Sanitize(st.Allowed)
	next.AIEnabled = st.AIEnabled
	next.AIPersonality = st.AIPersonality
	return next
}

func addStars(st State, n int) State {
	st.Stars += n
	st.Progress = Progress(st.Stars)
	return st
}

// appendClone appends to a copy so earlier snapshots never share the new backing array.
func appendClone[T any](s []T, v ...T) []T {
	out := make([]T, 0, len(s)+len(v))
	out = append(out, s...)
	return append(out, v...)
}

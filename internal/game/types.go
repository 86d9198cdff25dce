package game

import "time"

// DayRecord is one resolved day. Records are appended and never modified.
type DayRecord struct {
	Day       int     `json:"day"`
	Weights   Weights `json:"weights"`
	EventID   string  `json:"event_id"`
	Choice    *int    `json:"choice,omitempty"`
	Returns   float64 `json:"returns"`
	TaskID    string  `json:"task_id"`
	Completed bool    `json:"completed"`
	Reward    *Reward `json:"reward,omitempty"`
}

// State is an immutable snapshot of one game. Transitions return a new State.
type State struct {
	Day      int `json:"day"`
	Coins    int `json:"coins"`
	Gems     int `json:"gems"`
	Stars    int `json:"stars"`
	Progress int `json:"progress"`

	Weights Weights  `json:"weights"`
	Allowed AssetSet `json:"allowed_assets"`

	Returns        float64 `json:"returns"`
	Volatility     float64 `json:"volatility"`
	Drawdown       float64 `json:"drawdown"`
	PortfolioValue float64 `json:"portfolio_value"`
	PeakValue      float64 `json:"peak_value"`
	PendingBonus   float64 `json:"pending_bonus"`

	TaskIndex    int      `json:"task_index"`
	EventID      string   `json:"event_id,omitempty"`
	PendingEvent string   `json:"pending_event,omitempty"`
	Badges       BadgeSet `json:"badges"`

	History []DayRecord `json:"history"`

	ActiveDilemma string         `json:"active_dilemma,omitempty"`
	AskedDilemmas []string       `json:"asked_dilemmas"`
	Skills        map[string]int `json:"skills"`
	ActiveQuiz    string         `json:"active_quiz,omitempty"`
	AskedQuizzes  []string       `json:"asked_quizzes"`
	QuizResult    string         `json:"quiz_result,omitempty"`

	Notice             string `json:"notice,omitempty"`
	PendingCoinRequest int    `json:"pending_coin_request,omitempty"`

	WheelUsed   bool   `json:"wheel_used"`
	WheelResult string `json:"wheel_result,omitempty"`

	AIEnabled     bool     `json:"ai_enabled"`
	AIPersonality string   `json:"ai_personality"`
	AIMessages    []string `json:"ai_messages"`
	AIChatOpen    bool     `json:"ai_chat_open"`
	AIResponse    string   `json:"ai_response,omitempty"`

	Endgame     bool `json:"endgame"`
	ShowSummary bool `json:"show_summary"`
}

// CumulativeReturn is total growth since day 0, in percent.
func (s State) CumulativeReturn() float64 {
	return (s.PortfolioValue - 1) * 100
}

func (s State) dilemmaAsked(id string) bool {
	for _, d := range s.AskedDilemmas {
		if d == id {
			return true
		}
	}
	return false
}

func (s State) quizAsked(id string) bool {
	for _, q := range s.AskedQuizzes {
		if q == id {
			return true
		}
	}
	return false
}

type PauseReason string

const (
	PauseNone    PauseReason = ""
	PauseDilemma PauseReason = "dilemma"
	PauseQuiz    PauseReason = "quiz"
	PauseChoice  PauseReason = "choice"
)

// Outcome describes what a transition did. Applied is false for ignored actions.
type Outcome struct {
	Applied      bool        `json:"applied"`
	Paused       PauseReason `json:"paused,omitempty"`
	DayResolved  bool        `json:"day_resolved,omitempty"`
	EasterEgg    bool        `json:"easter_egg,omitempty"`
	Consequence  string      `json:"consequence,omitempty"`
	Correct      bool        `json:"correct,omitempty"`
	EarnedBadges []Badge     `json:"earned_badges,omitempty"`
	Prize        *WheelPrize `json:"prize,omitempty"`
	Endgame      bool        `json:"endgame,omitempty"`
}

// GameResult is what the archive keeps for a finished game.
type GameResult struct {
	SessionID      string    `json:"session_id"`
	Days           int       `json:"days"`
	PortfolioValue float64   `json:"portfolio_value"`
	PeakValue      float64   `json:"peak_value"`
	Badges         int       `json:"badges"`
	Coins          int       `json:"coins"`
	Gems           int       `json:"gems"`
	Stars          int       `json:"stars"`
	FinishedAt     time.Time `json:"finished_at"`
}

func ResultFromState(sessionID string, s State, at time.Time) GameResult {
	return GameResult{
		SessionID:      sessionID,
		Days:           s.Day,
		PortfolioValue: s.PortfolioValue,
		PeakValue:      s.PeakValue,
		Badges:         s.Badges.Len(),
		Coins:          s.Coins,
		Gems:           s.Gems,
		Stars:          s.Stars,
		FinishedAt:     at,
	}
}

type DilemmaView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type QuizView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// View is the session as the presentation layer sees it.
type View struct {
	SessionID        string       `json:"session_id"`
	State            State        `json:"state"`
	CumulativeReturn float64      `json:"cumulative_return"`
	Task             Task         `json:"task"`
	Goal             *Goal        `json:"goal,omitempty"`
	Event            *Event       `json:"event,omitempty"`
	PendingEvent     *Event       `json:"pending_event,omitempty"`
	Dilemma          *DilemmaView `json:"dilemma,omitempty"`
	Quiz             *QuizView    `json:"quiz,omitempty"`
	Personality      Personality  `json:"personality"`
}

func NewView(sessionID string, c *Content, s State) View {
	v := View{
		SessionID:        sessionID,
		State:            s,
		CumulativeReturn: s.CumulativeReturn(),
		Task:             c.Task(s.TaskIndex),
		Personality:      c.Personality(s.AIPersonality),
	}
	if g, ok := c.Goals[v.Task.ID]; ok {
		v.Goal = &g
	}
	if ev, ok := c.Event(s.EventID); ok {
		v.Event = &ev
	}
	if ev, ok := c.Event(s.PendingEvent); ok {
		v.PendingEvent = &ev
	}
	if d, ok := c.Dilemma(s.ActiveDilemma); ok {
		dv := DilemmaView{ID: d.ID, Text: d.Text}
		for _, o := range d.Options {
			dv.Options = append(dv.Options, o.Label)
		}
		v.Dilemma = &dv
	}
	if q, ok := c.Quiz(s.ActiveQuiz); ok {
		v.Quiz = &QuizView{ID: q.ID, Question: q.Question, Options: q.Options}
	}
	return v
}

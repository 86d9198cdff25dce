package game

import (
	"context"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const advisorFallback = "I could not think of an answer right now. Try asking again later!"

// Advisor produces a free-text reply for the AI chat.
type Advisor interface {
	Respond(ctx context.Context, q AdvisorQuery) (string, error)
}

type AdvisorQuery struct {
	Input       string      `json:"input"`
	Weights     Weights     `json:"weights"`
	Personality Personality `json:"personality"`
}

// ResultRecorder archives finished games.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r GameResult) error
}

type ServiceOptions struct {
	Rules          Rules
	Seed           int64
	SummaryDelay   time.Duration
	AdvisorTimeout time.Duration
	Advisor        Advisor
	Results        ResultRecorder
}

type session struct {
	mu      sync.Mutex
	id      string
	engine  *Engine
	state   State
	touched time.Time
	summary *time.Timer
}

// Service holds in-memory game sessions and serializes transitions per session.
type Service struct {
	content        *Content
	rules          Rules
	log            *slog.Logger
	advisor        Advisor
	results        ResultRecorder
	summaryDelay   time.Duration
	advisorTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	seeds    *mathrand.Rand
	now      func() time.Time
}

func NewService(content *Content, logger *slog.Logger, opts ServiceOptions) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if opts.SummaryDelay <= 0 {
		opts.SummaryDelay = 2500 * time.Millisecond
	}
	if opts.AdvisorTimeout <= 0 {
		opts.AdvisorTimeout = 20 * time.Second
	}
	return &Service{
		content:        content,
		rules:          opts.Rules,
		log:            logger,
		advisor:        opts.Advisor,
		results:        opts.Results,
		summaryDelay:   opts.SummaryDelay,
		advisorTimeout: opts.AdvisorTimeout,
		sessions:       make(map[string]*session),
		seeds:          NewRand(opts.Seed),
		now:            time.Now,
	}
}

func (s *Service) Content() *Content { return s.content }

func (s *Service) NewSession(ctx context.Context) (View, error) {
	s.mu.Lock()
	seed := s.seeds.Int63()
	if seed == 0 {
		seed = 1
	}
	engine := NewEngine(s.content, s.rules, NewRand(seed))
	sess := &session{
		id:      uuid.NewString(),
		engine:  engine,
		state:   engine.NewState(),
		touched: s.now(),
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.InfoContext(ctx, "session created", "session_id", sess.id)
	return NewView(sess.id, s.content, sess.state), nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) Session(ctx context.Context, id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return NewView(sess.id, s.content, sess.state), nil
}

// Apply runs one transition against a session.
func (s *Service) Apply(ctx context.Context, id string, act Action) (View, Outcome, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, Outcome{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	prev := sess.state
	next, out := sess.engine.Apply(prev, act)
	sess.state = next
	sess.touched = s.now()

	if out.DayResolved {
		s.log.DebugContext(ctx, "day resolved",
			"session_id", id,
			"day", next.Day,
			"event", next.EventID,
			"returns", next.Returns,
			"portfolio_value", next.PortfolioValue,
		)
	}
	if !prev.Endgame && next.Endgame {
		s.log.InfoContext(ctx, "endgame reached", "session_id", id, "day", next.Day, "badges", next.Badges.Len())
		s.scheduleSummary(sess)
	}
	if prev.Endgame && !next.Endgame && sess.summary != nil {
		sess.summary.Stop()
		sess.summary = nil
	}
	return NewView(sess.id, s.content, sess.state), out, nil
}

// scheduleSummary must be called with sess.mu held.
func (s *Service) scheduleSummary(sess *session) {
	if sess.summary != nil {
		sess.summary.Stop()
	}
	sess.summary = time.AfterFunc(s.summaryDelay, func() {
		sess.mu.Lock()
		next, out := sess.engine.Apply(sess.state, RevealSummary{})
		sess.state = next
		sess.summary = nil
		sess.mu.Unlock()
		if !out.Applied {
			return
		}
		s.record(ResultFromState(sess.id, next, s.now()))
	})
}

func (s *Service) record(result GameResult) {
	if s.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.results.RecordResult(ctx, result); err != nil {
		s.log.Error("record game result failed", "session_id", result.SessionID, "err", err)
		return
	}
	s.log.Info("game result recorded", "session_id", result.SessionID, "portfolio_value", result.PortfolioValue)
}

// AskAdvisor starts an advisor request and returns immediately. The reply lands
// on the session whenever it arrives, regardless of later transitions.
func (s *Service) AskAdvisor(ctx context.Context, id, input string) (View, error) {
	input = strings.TrimSpace(input)
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	if input == "" || !sess.state.AIEnabled {
		view := NewView(sess.id, s.content, sess.state)
		sess.mu.Unlock()
		return view, nil
	}
	sess.state, _ = sess.engine.Apply(sess.state, AdvisorPending{})
	sess.touched = s.now()
	q := AdvisorQuery{
		Input:       input,
		Weights:     sess.state.Weights,
		Personality: s.content.Personality(sess.state.AIPersonality),
	}
	view := NewView(sess.id, s.content, sess.state)
	sess.mu.Unlock()

	go func() {
		reply := advisorFallback
		if s.advisor != nil {
			actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.advisorTimeout)
			text, err := s.advisor.Respond(actx, q)
			cancel()
			if err != nil {
				s.log.Warn("advisor request failed", "session_id", id, "err", err)
			} else if strings.TrimSpace(text) != "" {
				reply = text
			}
		}
		sess.mu.Lock()
		sess.state, _ = sess.engine.Apply(sess.state, AdvisorReply{Text: reply})
		sess.mu.Unlock()
	}()
	return view, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	if sess.summary != nil {
		sess.summary.Stop()
	}
	sess.mu.Unlock()
	s.log.InfoContext(ctx, "session deleted", "session_id", id)
	return nil
}

// Sweep drops sessions untouched for longer than idle and returns how many it removed.
func (s *Service) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	var stale []*session
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.touched.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.mu.Lock()
		if sess.summary != nil {
			sess.summary.Stop()
		}
		sess.mu.Unlock()
	}
	if len(stale) > 0 {
		s.log.Info("idle sessions swept", "count", len(stale))
	}
	return len(stale)
}

func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

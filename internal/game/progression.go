package game

import (
	"fmt"
	"strings"
)

// Met reports whether w satisfies the goal.
func (g Goal) Met(w Weights) bool {
	switch g.Kind {
	case GoalMinWeight:
		return w.Get(g.Asset) >= g.Threshold
	case GoalMaxWeight:
		return w.Get(g.Asset) <= g.Threshold
	case GoalMinActive:
		return w.ActiveCount() >= g.Threshold
	case GoalMaxSingle:
		return w.MaxWeight() <= g.Threshold
	case GoalFullyInvested:
		return w.Total() == MaxTotalWeight
	default:
		return false
	}
}

const (
	badgeWeightThreshold = 20
	concentratedWeight   = 60
	diversifiedAssets    = 4
	streakDays           = 2
)

// EligibleBadges evaluates every badge not yet in held against today's context.
// history holds the days before today.
func EligibleBadges(held BadgeSet, w Weights, history []DayRecord, dayReturn float64) []Badge {
	var out []Badge
	check := func(b Badge, ok bool) {
		if ok && !held.Has(b) {
			out = append(out, b)
		}
	}
	check(Diversifier, w.ActiveCount() >= diversifiedAssets)
	check(LongView, dayReturn > 0 && positiveStreak(history, streakDays))
	check(RiskManager, w.MaxWeight() > concentratedWeight && dayReturn > 0)
	check(GreenPioneer, w[ESG] >= badgeWeightThreshold)
	check(SafeHaven, w[Gold] >= badgeWeightThreshold)
	check(CalmGuardian, w[Stablecoin] >= badgeWeightThreshold)
	check(YieldSage, w[Yield] >= badgeWeightThreshold)
	return out
}

func positiveStreak(history []DayRecord, n int) bool {
	if len(history) < n {
		return false
	}
	for _, h := range history[len(history)-n:] {
		if h.Returns <= 0 {
			return false
		}
	}
	return true
}

func (e *Engine) endgameReached(st State) bool {
	if st.CumulativeReturn() < e.Rules.WealthGoal {
		return false
	}
	if e.Rules.EndgameBadges > 0 {
		return st.Badges.Len() >= e.Rules.EndgameBadges
	}
	for b := range e.Content.Badges {
		if !st.Badges.Has(b) {
			return false
		}
	}
	return true
}

// feedback renders the advisor rules that fire for a resolved day.
func (e *Engine) feedback(st State, dayReturn float64, earned []Badge) []string {
	p := e.Content.Personality(st.AIPersonality)
	var queue []string
	for _, rule := range e.Content.Feedback {
		switch rule.Kind {
		case FeedbackReturnsBelow:
			if dayReturn < rule.Threshold {
				queue = append(queue, strings.ReplaceAll(rule.Template, "{returns}", fmt.Sprintf("%.2f", dayReturn)))
			}
		case FeedbackWeightAbove:
			w := st.Weights.Get(rule.Asset)
			if float64(w) > rule.Threshold {
				msg := strings.ReplaceAll(rule.Template, "{asset}", rule.Asset.String())
				queue = append(queue, strings.ReplaceAll(msg, "{percent}", fmt.Sprint(w)))
			}
		case FeedbackBadgeEarned:
			for _, b := range earned {
				queue = append(queue, strings.ReplaceAll(rule.Template, "{badge}", e.Content.BadgeName(b)))
			}
		}
	}
	for i, msg := range queue {
		queue[i] = p.Name + ": " + msg
	}
	return queue
}

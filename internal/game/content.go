package game

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContentYAML []byte

type AssetParams struct {
	Asset          Asset   `json:"asset"`
	Name           string  `json:"name"`
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
}

// AssetModel holds per-asset return parameters. Assets missing from the model contribute nothing.
type AssetModel map[Asset]AssetParams

type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GoalKind string

const (
	GoalMinWeight     GoalKind = "min_weight"
	GoalMaxWeight     GoalKind = "max_weight"
	GoalMinActive     GoalKind = "min_active"
	GoalMaxSingle     GoalKind = "max_single"
	GoalFullyInvested GoalKind = "fully_invested"
)

type Reward struct {
	Coins int    `json:"coins"`
	Gems  int    `json:"gems"`
	Badge *Badge `json:"badge,omitempty"`
}

type Goal struct {
	Kind      GoalKind `json:"kind"`
	Asset     Asset    `json:"asset"`
	Threshold int      `json:"threshold"`
	Reward    Reward   `json:"reward"`
}

// ImpactRange shifts returns by a value drawn from [Min, Max]. With no Assets it applies to every asset.
type ImpactRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Assets []Asset `json:"assets,omitempty"`
}

type Choice struct {
	Label  string      `json:"label"`
	Impact ImpactRange `json:"impact"`
}

type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      ImpactRange `json:"impact"`
	Choices     []Choice    `json:"choices,omitempty"`
}

func (e Event) HasChoices() bool { return len(e.Choices) > 0 }

type DilemmaOption struct {
	Label       string `json:"label"`
	Skill       string `json:"skill"`
	Consequence string `json:"consequence"`
}

type Dilemma struct {
	ID      string          `json:"id"`
	Text    string          `json:"text"`
	Options []DilemmaOption `json:"options"`
}

type Quiz struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"-"`
}

type BadgeInfo struct {
	Badge       Badge  `json:"badge"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Personality struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Style    string `json:"style"`
	Greeting string `json:"greeting"`
}

type FeedbackKind string

const (
	FeedbackReturnsBelow FeedbackKind = "returns_below"
	FeedbackWeightAbove  FeedbackKind = "weight_above"
	FeedbackBadgeEarned  FeedbackKind = "badge_earned"
)

type FeedbackRule struct {
	Kind      FeedbackKind `json:"kind"`
	Threshold float64      `json:"threshold"`
	Asset     Asset        `json:"asset"`
	Template  string       `json:"template"`
}

type WheelPrize struct {
	Label       string  `json:"label"`
	Weight      int     `json:"-"`
	Coins       int     `json:"coins,omitempty"`
	Gems        int     `json:"gems,omitempty"`
	Stars       int     `json:"stars,omitempty"`
	ReturnBonus float64 `json:"return_bonus,omitempty"`
	Badge       *Badge  `json:"badge,omitempty"`
}

// Content is the read-only lookup data a game runs against.
type Content struct {
	Assets        AssetModel
	Tasks         []Task
	Goals         map[string]Goal
	Events        []Event
	Dilemmas      []Dilemma
	Quizzes       []Quiz
	Badges        map[Badge]BadgeInfo
	Personalities []Personality
	Feedback      []FeedbackRule
	Prizes        []WheelPrize
}

func (c *Content) Task(i int) Task {
	if len(c.Tasks) == 0 {
		return Task{}
	}
	return c.Tasks[((i%len(c.Tasks))+len(c.Tasks))%len(c.Tasks)]
}

func (c *Content) Event(id string) (Event, bool) {
	for _, ev := range c.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

func (c *Content) Dilemma(id string) (Dilemma, bool) {
	for _, d := range c.Dilemmas {
		if d.ID == id {
			return d, true
		}
	}
	return Dilemma{}, false
}

func (c *Content) Quiz(id string) (Quiz, bool) {
	for _, q := range c.Quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return Quiz{}, false
}

// Personality falls back to the first personality for unknown ids.
func (c *Content) Personality(id string) Personality {
	for _, p := range c.Personalities {
		if p.ID == id {
			return p
		}
	}
	if len(c.Personalities) == 0 {
		return Personality{}
	}
	return c.Personalities[0]
}

func (c *Content) HasPersonality(id string) bool {
	for _, p := range c.Personalities {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (c *Content) BadgeName(b Badge) string {
	if info, ok := c.Badges[b]; ok && info.Name != "" {
		return info.Name
	}
	return b.String()
}

// DefaultContent parses the embedded content tables.
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContentYAML)
}

// LoadContent reads content from path, or the embedded tables when path is empty.
func LoadContent(path string) (*Content, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultContent()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return ParseContent(raw)
}

type rawImpact struct {
	Min    float64  `yaml:"min"`
	Max    float64  `yaml:"max"`
	Assets []string `yaml:"assets"`
}

type rawReward struct {
	Coins int    `yaml:"coins"`
	Gems  int    `yaml:"gems"`
	Badge string `yaml:"badge"`
}

type rawContent struct {
	Assets []struct {
		Key            string  `yaml:"key"`
		Name           string  `yaml:"name"`
		ExpectedReturn float64 `yaml:"expected_return"`
		Volatility     float64 `yaml:"volatility"`
	} `yaml:"assets"`
	Tasks []struct {
		ID          string `yaml:"id"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Goal        *struct {
			Kind      string    `yaml:"kind"`
			Asset     string    `yaml:"asset"`
			Threshold int       `yaml:"threshold"`
			Reward    rawReward `yaml:"reward"`
		} `yaml:"goal"`
	} `yaml:"tasks"`
	Events []struct {
		ID          string    `yaml:"id"`
		Title       string    `yaml:"title"`
		Description string    `yaml:"description"`
		Impact      rawImpact `yaml:"impact"`
		Choices     []struct {
			Label  string    `yaml:"label"`
			Impact rawImpact `yaml:"impact"`
		} `yaml:"choices"`
	} `yaml:"events"`
	Dilemmas []struct {
		ID      string `yaml:"id"`
		Text    string `yaml:"text"`
		Options []struct {
			Label       string `yaml:"label"`
			Skill       string `yaml:"skill"`
			Consequence string `yaml:"consequence"`
		} `yaml:"options"`
	} `yaml:"dilemmas"`
	Quizzes []struct {
		ID       string   `yaml:"id"`
		Question string   `yaml:"question"`
		Options  []string `yaml:"options"`
		Answer   int      `yaml:"answer"`
	} `yaml:"quizzes"`
	Badges []struct {
		Key         string `yaml:"key"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"badges"`
	Personalities []Personality `yaml:"personalities"`
	Feedback      []struct {
		Kind      string  `yaml:"kind"`
		Threshold float64 `yaml:"threshold"`
		Asset     string  `yaml:"asset"`
		Template  string  `yaml:"template"`
	} `yaml:"feedback"`
	Wheel []struct {
		Label       string  `yaml:"label"`
		Weight      int     `yaml:"weight"`
		Coins       int     `yaml:"coins"`
		Gems        int     `yaml:"gems"`
		Stars       int     `yaml:"stars"`
		ReturnBonus float64 `yaml:"return_bonus"`
		Badge       string  `yaml:"badge"`
	} `yaml:"wheel"`
}

// ParseContent decodes and validates YAML content tables.
func ParseContent(raw []byte) (*Content, error) {
	var rc rawContent
	if err := yaml.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	c := &Content{
		Assets: make(AssetModel, len(rc.Assets)),
		Goals:  make(map[string]Goal),
		Badges: make(map[Badge]BadgeInfo, len(rc.Badges)),
	}
	for _, a := range rc.Assets {
		key, err := ParseAsset(a.Key)
		if err != nil {
			return nil, contentErr("assets", err)
		}
		c.Assets[key] = AssetParams{Asset: key, Name: a.Name, ExpectedReturn: a.ExpectedReturn, Volatility: a.Volatility}
	}

	seen := map[string]bool{}
	for _, t := range rc.Tasks {
		if t.ID == "" || seen[t.ID] {
			return nil, contentErr("tasks", fmt.Errorf("missing or duplicate id %q", t.ID))
		}
		seen[t.ID] = true
		c.Tasks = append(c.Tasks, Task{ID: t.ID, Title: t.Title, Description: t.Description})
		if t.Goal == nil {
			continue
		}
		g := Goal{Kind: GoalKind(t.Goal.Kind), Threshold: t.Goal.Threshold}
		switch g.Kind {
		case GoalMinWeight, GoalMaxWeight:
			a, err := ParseAsset(t.Goal.Asset)
			if err != nil {
				return nil, contentErr("tasks."+t.ID, err)
			}
			g.Asset = a
		case GoalMinActive, GoalMaxSingle, GoalFullyInvested:
		default:
			return nil, contentErr("tasks."+t.ID, fmt.Errorf("unknown goal kind %q", t.Goal.Kind))
		}
		reward, err := parseReward(t.Goal.Reward)
		if err != nil {
			return nil, contentErr("tasks."+t.ID, err)
		}
		g.Reward = reward
		c.Goals[t.ID] = g
	}

	for _, e := range rc.Events {
		impact, err := parseImpact(e.Impact)
		if err != nil {
			return nil, contentErr("events."+e.ID, err)
		}
		ev := Event{ID: e.ID, Title: e.Title, Description: e.Description, Impact: impact}
		for _, ch := range e.Choices {
			ci, err := parseImpact(ch.Impact)
			if err != nil {
				return nil, contentErr("events."+e.ID, err)
			}
			ev.Choices = append(ev.Choices, Choice{Label: ch.Label, Impact: ci})
		}
		c.Events = append(c.Events, ev)
	}

	for _, d := range rc.Dilemmas {
		if len(d.Options) == 0 {
			return nil, contentErr("dilemmas."+d.ID, fmt.Errorf("no options"))
		}
		dl := Dilemma{ID: d.ID, Text: d.Text}
		for _, o := range d.Options {
			dl.Options = append(dl.Options, DilemmaOption{Label: o.Label, Skill: o.Skill, Consequence: o.Consequence})
		}
		c.Dilemmas = append(c.Dilemmas, dl)
	}

	for _, q := range rc.Quizzes {
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return nil, contentErr("quizzes."+q.ID, fmt.Errorf("answer %d out of range", q.Answer))
		}
		c.Quizzes = append(c.Quizzes, Quiz{ID: q.ID, Question: q.Question, Options: q.Options, Answer: q.Answer})
	}

	for _, b := range rc.Badges {
		key, err := ParseBadge(b.Key)
		if err != nil {
			return nil, contentErr("badges", err)
		}
		c.Badges[key] = BadgeInfo{Badge: key, Name: b.Name, Description: b.Description}
	}

	c.Personalities = rc.Personalities

	for _, f := range rc.Feedback {
		rule := FeedbackRule{Kind: FeedbackKind(f.Kind), Threshold: f.Threshold, Template: f.Template}
		switch rule.Kind {
		case FeedbackWeightAbove:
			a, err := ParseAsset(f.Asset)
			if err != nil {
				return nil, contentErr("feedback", err)
			}
			rule.Asset = a
		case FeedbackReturnsBelow, FeedbackBadgeEarned:
		default:
			return nil, contentErr("feedback", fmt.Errorf("unknown rule kind %q", f.Kind))
		}
		c.Feedback = append(c.Feedback, rule)
	}

	for _, p := range rc.Wheel {
		if p.Weight <= 0 {
			return nil, contentErr("wheel", fmt.Errorf("prize %q needs a positive weight", p.Label))
		}
		prize := WheelPrize{Label: p.Label, Weight: p.Weight, Coins: p.Coins, Gems: p.Gems, Stars: p.Stars, ReturnBonus: p.ReturnBonus}
		if p.Badge != "" {
			b, err := ParseBadge(p.Badge)
			if err != nil {
				return nil, contentErr("wheel", err)
			}
			prize.Badge = &b
		}
		c.Prizes = append(c.Prizes, prize)
	}

	if len(c.Tasks) == 0 {
		return nil, contentErr("tasks", fmt.Errorf("at least one task is required"))
	}
	if len(c.Events) == 0 {
		return nil, contentErr("events", fmt.Errorf("at least one event is required"))
	}
	if len(c.Personalities) == 0 {
		return nil, contentErr("personalities", fmt.Errorf("at least one personality is required"))
	}
	return c, nil
}

func parseImpact(in rawImpact) (ImpactRange, error) {
	if in.Max < in.Min {
		return ImpactRange{}, fmt.Errorf("impact max %.2f below min %.2f", in.Max, in.Min)
	}
	out := ImpactRange{Min: in.Min, Max: in.Max}
	for _, s := range in.Assets {
		a, err := ParseAsset(s)
		if err != nil {
			return ImpactRange{}, err
		}
		out.Assets = append(out.Assets, a)
	}
	return out, nil
}

func parseReward(in rawReward) (Reward, error) {
	out := Reward{Coins: in.Coins, Gems: in.Gems}
	if in.Badge != "" {
		b, err := ParseBadge(in.Badge)
		if err != nil {
			return Reward{}, err
		}
		out.Badge = &b
	}
	return out, nil
}

func contentErr(section string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidContent, section, err)
}

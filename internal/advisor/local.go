// Package advisor provides replies for the in-game AI chat.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"guardians/internal/game"
)

// Local answers from the allocation alone, without calling out.
type Local struct {
	Content *game.Content
}

func NewLocal(content *game.Content) *Local {
	return &Local{Content: content}
}

func (l *Local) Respond(ctx context.Context, q game.AdvisorQuery) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	input := strings.ToLower(q.Input)

	var body string
	if a, ok := mentionedAsset(input, l.Content); ok {
		body = assetComment(a, q.Weights.Get(a), l.assetName(a))
	} else {
		switch {
		case strings.Contains(input, "risk") || strings.Contains(input, "safe"):
			body = riskComment(q.Weights)
		case q.Weights.Total() < game.MaxTotalWeight:
			body = fmt.Sprintf("You still have %d%% not invested. Cash is safe but it does not grow.", game.MaxTotalWeight-q.Weights.Total())
		default:
			body = riskComment(q.Weights)
		}
	}
	return styled(q.Personality, body), nil
}

func (l *Local) assetName(a game.Asset) string {
	if l.Content != nil {
		if p, ok := l.Content.Assets[a]; ok && p.Name != "" {
			return p.Name
		}
	}
	return a.String()
}

func mentionedAsset(input string, c *game.Content) (game.Asset, bool) {
	for _, a := range game.AllAssets() {
		if strings.Contains(input, a.String()) {
			return a, true
		}
		if c != nil {
			if p, ok := c.Assets[a]; ok && p.Name != "" && strings.Contains(input, strings.ToLower(p.Name)) {
				return a, true
			}
		}
	}
	return 0, false
}

func assetComment(a game.Asset, weight int, name string) string {
	switch {
	case weight == 0:
		return fmt.Sprintf("You have nothing in %s right now. Want to try a small slice?", name)
	case weight > 50:
		return fmt.Sprintf("%d%% in %s is a big bet. If it falls, your whole portfolio feels it.", weight, name)
	case a == game.Crypto && weight > 25:
		return fmt.Sprintf("%d%% in %s means big swings. Be ready for a wild ride.", weight, name)
	default:
		return fmt.Sprintf("%d%% in %s looks like a reasonable slice.", weight, name)
	}
}

func riskComment(w game.Weights) string {
	active := w.ActiveCount()
	switch {
	case active <= 2:
		return "Only a couple of baskets hold your eggs. Spreading out lowers risk."
	case w.MaxWeight() > 60:
		return "One asset takes most of your money. That is a lot of risk in one place."
	case w.Get(game.Stablecoin)+w.Get(game.Bond)+w.Get(game.Gold) >= 40:
		return "You have plenty of calm assets. Your portfolio should sleep well at night."
	default:
		return fmt.Sprintf("You spread money over %d assets. Nice balance!", active)
	}
}

func styled(p game.Personality, body string) string {
	switch p.Style {
	case "bold":
		body = body + " Onward!"
	case "calm":
		body = "Take a breath. " + body
	case "wise":
		body = "Hmm. " + body
	}
	if p.Name == "" {
		return body
	}
	return p.Name + ": " + body
}

package game

// Rules holds the tunable constants of a game.
type Rules struct {
	EasterEggChance float64
	EasterEggBonus  float64
	EasterEggCoins  int
	EasterEggGems   int

	DilemmaChance float64
	QuizChance    float64
	QuizCoins     int

	// MaxCoinRequest bounds a single parent coin grant.
	MaxCoinRequest int

	CoinsPerReturn     float64
	GemReturnThreshold float64

	WealthGoal float64
	// EndgameBadges, when positive, replaces "all catalog badges" in the endgame check.
	EndgameBadges int
}

func DefaultRules() Rules {
	return Rules{
		EasterEggChance:    0.15,
		EasterEggBonus:     5,
		EasterEggCoins:     10,
		EasterEggGems:      1,
		DilemmaChance:      0.40,
		QuizChance:         0.20,
		QuizCoins:          5,
		MaxCoinRequest:     1000,
		CoinsPerReturn:     10,
		GemReturnThreshold: 50,
		WealthGoal:         300,
	}
}

const (
	easterEggNotice = "Easter egg! You found a dancing shiba. Bonus: +5% on your next day, +10 coins, +1 gem."
	AdvisorThinking = "Thinking..."
)

package game

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Impact is an event resolved to concrete return shifts, in percentage points.
type Impact struct {
	Global float64           `json:"global"`
	Assets map[Asset]float64 `json:"assets,omitempty"`
	// Bonus is added to the portfolio return after weighting.
	Bonus float64 `json:"bonus,omitempty"`
}

type DailyResult struct {
	Returns        float64 `json:"returns"`
	Volatility     float64 `json:"volatility"`
	Drawdown       float64 `json:"drawdown"`
	PortfolioValue float64 `json:"portfolio_value"`
	PeakValue      float64 `json:"peak_value"`
}

// CalculateDailyReturns combines per-asset returns weighted by allocation into one day's
// portfolio return and rolls the portfolio value, peak and drawdown forward.
// The result depends only on its arguments.
func CalculateDailyReturns(w Weights, model AssetModel, impact Impact, portfolioValue, peakValue float64) DailyResult {
	var weighted float64
	contributions := make([]float64, 0, NumAssets)
	for _, a := range AllAssets() {
		weight := w[a]
		if weight <= 0 {
			continue
		}
		params, ok := model[a]
		if !ok {
			continue
		}
		r := params.ExpectedReturn + impact.Global + impact.Assets[a]
		// Sum in weight-percent units and divide once so integer inputs stay exact.
		weighted += float64(weight) * r
		contributions = append(contributions, float64(weight)*r/100)
	}

	dayReturn := weighted/100 + impact.Bonus
	if dayReturn < MinDayReturn {
		dayReturn = MinDayReturn
	}

	var volatility float64
	if len(contributions) >= 2 {
		if sd, err := stats.StandardDeviationPopulation(contributions); err == nil && !math.IsNaN(sd) {
			volatility = sd
		}
	}

	if portfolioValue <= 0 {
		portfolioValue = 1
	}
	if peakValue < portfolioValue {
		peakValue = portfolioValue
	}
	value := portfolioValue * (1 + dayReturn/100)
	peak := math.Max(peakValue, value)

	return DailyResult{
		Returns:        dayReturn,
		Volatility:     volatility,
		Drawdown:       (peak - value) / peak,
		PortfolioValue: value,
		PeakValue:      peak,
	}
}

// resolveImpact draws the concrete shifts for an impact range plus per-asset market noise.
func resolveImpact(r Rand, rng ImpactRange, w Weights, model AssetModel, bonus float64) Impact {
	out := Impact{Assets: make(map[Asset]float64, NumAssets), Bonus: bonus}
	v := between(r, rng.Min, rng.Max)
	if len(rng.Assets) == 0 {
		out.Global = v
	} else {
		for _, a := range rng.Assets {
			out.Assets[a] += v
		}
	}
	for _, a := range AllAssets() {
		if w[a] <= 0 {
			continue
		}
		params, ok := model[a]
		if !ok || params.Volatility == 0 {
			continue
		}
		out.Assets[a] += params.Volatility * (2*r.Float64() - 1)
	}
	return out
}

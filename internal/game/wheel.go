package game

// PrizeWheel picks a prize with probability proportional to its weight.
type PrizeWheel struct {
	Prizes []WheelPrize
}

func (w PrizeWheel) Spin(r Rand) WheelPrize {
	total := 0
	for _, p := range w.Prizes {
		total += p.Weight
	}
	if total <= 0 {
		return WheelPrize{Label: "Better luck tomorrow"}
	}
	roll := r.Intn(total)
	for _, p := range w.Prizes {
		if roll < p.Weight {
			return p
		}
		roll -= p.Weight
	}
	return w.Prizes[len(w.Prizes)-1]
}

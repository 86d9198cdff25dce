package game

import (
	mathrand "math/rand"
	"time"
)

// Rand is the random source the engine draws from. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand seeds a source; a zero seed uses the clock.
func NewRand(seed int64) *mathrand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return mathrand.New(mathrand.NewSource(seed))
}

func chance(r Rand, p float64) bool {
	return r.Float64() < p
}

func between(r Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + r.Float64()*(max-min)
}

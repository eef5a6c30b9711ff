package route

import "math"

// Seed sums the code points of an identifier. The empty identifier seeds 0.
func Seed(identifier string) int {
	seed := 0
	for _, r := range identifier {
		seed += int(r)
	}
	return seed
}

// Next returns frac(sin(state) * 10000) and the advanced state.
func Next(state int) (float64, int) {
	x := math.Sin(float64(state)) * 10000
	return x - math.Floor(x), state + 1
}

// Sequence walks Next from a starting state.
type Sequence struct {
	state int
}

// NewSequence starts a sequence at seed.
func NewSequence(seed int) *Sequence {
	return &Sequence{state: seed}
}

// Float64 returns the next value in [0, 1).
func (s *Sequence) Float64() float64 {
	var v float64
	v, s.state = Next(s.state)
	return v
}

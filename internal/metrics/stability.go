package metrics

import (
	"math"

	"github.com/san-kum/blocksim/internal/dynamo"
)

// Stability is the fraction of observed ticks in which the body stayed
// finite, within Bound of the origin, and had |orientation| within 1e-6 of 1.
// FirstViolation is the first failing tick, or -1.
type Stability struct {
	Bound          float64
	FirstViolation int
	bad, seen      int
}

func NewStability(bound float64) *Stability {
	return &Stability{Bound: bound, FirstViolation: -1}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, _ dynamo.Loads, tick int) {
	s.seen++
	ok := x.IsValid() &&
		x.Position.Len() <= s.Bound &&
		math.Abs(x.Orientation.Magnitude()-1) <= 1e-6
	if ok {
		return
	}
	s.bad++
	if s.FirstViolation < 0 {
		s.FirstViolation = tick
	}
}

func (s *Stability) Value() float64 {
	if s.seen == 0 {
		return 1
	}
	return float64(s.seen-s.bad) / float64(s.seen)
}

func (s *Stability) Reset() {
	s.bad, s.seen = 0, 0
	s.FirstViolation = -1
}

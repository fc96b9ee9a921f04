package metrics

import "math"

// Smoothness is the mean absolute change between consecutive controls, a
// proxy for how jerky a solved policy is.
type Smoothness struct {
	name    string
	prev    []float64
	sum     float64
	samples int
}

func NewSmoothness() *Smoothness {
	return &Smoothness{name: "smoothness"}
}

func (s *Smoothness) Name() string { return s.name }

func (s *Smoothness) Observe(x, u []float64) {
	if u == nil {
		return
	}
	if s.prev != nil && len(s.prev) == len(u) {
		for i := range u {
			s.sum += math.Abs(u[i] - s.prev[i])
		}
		s.samples++
	}
	s.prev = append(s.prev[:0], u...)
}

func (s *Smoothness) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *Smoothness) Reset() {
	s.prev = nil
	s.sum = 0
	s.samples = 0
}

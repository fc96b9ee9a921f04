package metrics

// Metric observes every point of a trajectory and reduces to one scalar.
type Metric interface {
	Name() string
	Observe(x, u []float64)
	Value() float64
	Reset()
}

// Evaluate runs each metric over a solved trajectory. The control sequence is
// one shorter than the state sequence; the terminal state is observed with a
// nil control.
func Evaluate(ms []Metric, xs, us [][]float64) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for t, x := range xs {
		var u []float64
		if t < len(us) {
			u = us[t]
		}
		for _, m := range ms {
			m.Observe(x, u)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

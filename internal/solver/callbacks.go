package solver

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// IterationStats is the per-iteration snapshot handed to callbacks. Callbacks
// run once per iteration, after the step-acceptance decision and, on accepted
// steps, after the stopping criteria has been refreshed.
type IterationStats struct {
	Iteration  int
	Cost       float64
	Stop       float64
	D1, D2     float64
	StepLength float64
	Xreg       float64
	Ureg       float64
	Accepted   bool
	Feasible   bool
}

type Callback interface {
	OnIteration(st IterationStats)
}

// Recorder keeps the full iteration history, for plotting or assertions.
type Recorder struct {
	History []IterationStats
}

func (r *Recorder) OnIteration(st IterationStats) {
	r.History = append(r.History, st)
}

// Verbose prints one table row per iteration.
type Verbose struct {
	w      *tabwriter.Writer
	header bool
}

func NewVerbose(out io.Writer) *Verbose {
	return &Verbose{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
}

func (v *Verbose) OnIteration(st IterationStats) {
	if !v.header {
		fmt.Fprintln(v.w, "iter\tcost\tstop\tstep\txreg\taccepted")
		v.header = true
	}
	fmt.Fprintf(v.w, "%d\t%.6e\t%.3e\t%.4f\t%.1e\t%v\n",
		st.Iteration, st.Cost, st.Stop, st.StepLength, st.Xreg, st.Accepted)
	v.w.Flush()
}

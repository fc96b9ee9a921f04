package solver

// Solver is the iteration protocol every trajectory-optimization variant
// implements. The working routines are ComputeDirection and TryStep: the
// former evaluates the problem derivatives at the current candidate and
// produces a search direction (returning the dual sequence as a side
// product), the latter rolls the dynamics out at a trial step length and
// returns the realized cost improvement without committing the trial
// trajectory. Solve drives them with a globalization strategy built on the
// regularization and acceptance thresholds held in the solver state.
type Solver interface {
	// SetCandidate installs a warm-start trajectory as the working point.
	// Nil sequences keep (or default-initialize) current values. Sequences
	// of the wrong length fail with ErrDimension.
	SetCandidate(xs, us [][]float64, feasible bool) error

	// ComputeDirection computes the search direction at the current
	// candidate, re-evaluating all derivatives when recalc is true. It
	// returns the dual/multiplier sequence of length T+1.
	ComputeDirection(recalc bool) ([][]float64, error)

	// TryStep rolls out the direction at the given step length and returns
	// the cost improvement relative to the candidate cost. The trial
	// trajectory is stored but not committed.
	TryStep(stepLength float64) (float64, error)

	// StoppingCriteria returns a non-negative convergence measure for the
	// last computed direction.
	StoppingCriteria() float64

	// ExpectedImprovement returns the linear and quadratic coefficients of
	// the predicted cost reduction along the current direction.
	ExpectedImprovement() (d1, d2 float64, err error)

	// Solve iterates ComputeDirection and TryStep from the given warm start
	// until StoppingCriteria drops below threshold or maxiter is exhausted.
	// The returned flag is true on convergence. regInit <= 0 selects the
	// variant's default initial regularization.
	Solve(initXs, initUs [][]float64, maxiter int, feasible bool, regInit float64) (xs, us [][]float64, converged bool, err error)

	SetCallbacks(cbs []Callback)
}

// State is the candidate trajectory and globalization scalars shared by
// solver variants. It is plain data owned by value inside each solver.
type State struct {
	Xs       [][]float64
	Us       [][]float64
	Feasible bool

	Xreg float64
	Ureg float64

	ThAcceptStep float64
	ThStop       float64

	Cost       float64
	Stop       float64
	StepLength float64
	Iteration  int
}

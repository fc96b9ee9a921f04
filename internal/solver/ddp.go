package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/nopaddleboat/crocoddyl/internal/core"
)

// DDP is the classic regularized differential dynamic programming variant:
// a Riccati backward pass with Cholesky-factorized control Hessians produces
// feedforward and feedback gains, a forward rollout tries geometrically
// decreasing step lengths, and Levenberg-Marquardt style regularization on
// the curvature terms globalizes the scheme. Infeasible warm starts are
// handled through defect (gap) relinearization in the backward pass.
type DDP struct {
	problem *core.ShootingProblem
	st      State

	alphas    []float64
	regFactor float64
	regMin    float64
	regMax    float64
	thGrad    float64
	thStepDec float64

	// Riccati workspace, allocated once from the problem dimensions.
	vx  []*mat.VecDense
	vxx []*mat.Dense
	qx  []*mat.VecDense
	qu  []*mat.VecDense
	qxx []*mat.Dense
	qxu []*mat.Dense
	quu []*mat.Dense
	k   []*mat.Dense    // feedback gains, nu x ndx
	kff []*mat.VecDense // feedforward terms

	gaps  [][]float64
	xsTry [][]float64
	usTry [][]float64

	costTry      float64
	hasDirection bool
	wasFeasible  bool
	callbacks    []Callback
}

func NewDDP(problem *core.ShootingProblem) *DDP {
	s := &DDP{
		problem:   problem,
		regFactor: 10,
		regMin:    1e-9,
		regMax:    1e9,
		thGrad:    1e-12,
		thStepDec: 0.5,
	}
	s.st.ThAcceptStep = 0.1
	s.st.ThStop = 1e-9
	for n := 0; n < 10; n++ {
		s.alphas = append(s.alphas, math.Pow(2, -float64(n)))
	}
	s.allocate()
	return s
}

func (s *DDP) allocate() {
	T := s.problem.T()
	models := s.problem.Running()

	s.vx = make([]*mat.VecDense, T+1)
	s.vxx = make([]*mat.Dense, T+1)
	s.qx = make([]*mat.VecDense, T)
	s.qu = make([]*mat.VecDense, T)
	s.qxx = make([]*mat.Dense, T)
	s.qxu = make([]*mat.Dense, T)
	s.quu = make([]*mat.Dense, T)
	s.k = make([]*mat.Dense, T)
	s.kff = make([]*mat.VecDense, T)
	s.gaps = make([][]float64, T+1)
	s.xsTry = make([][]float64, T+1)
	s.usTry = make([][]float64, T)

	for t, m := range models {
		ndx, nu := m.State().NDX(), m.NU()
		s.vx[t] = mat.NewVecDense(ndx, nil)
		s.vxx[t] = mat.NewDense(ndx, ndx, nil)
		s.qx[t] = mat.NewVecDense(ndx, nil)
		s.qu[t] = mat.NewVecDense(nu, nil)
		s.qxx[t] = mat.NewDense(ndx, ndx, nil)
		s.qxu[t] = mat.NewDense(ndx, nu, nil)
		s.quu[t] = mat.NewDense(nu, nu, nil)
		s.k[t] = mat.NewDense(nu, ndx, nil)
		s.kff[t] = mat.NewVecDense(nu, nil)
		s.gaps[t] = make([]float64, ndx)
	}
	tndx := s.problem.Terminal().State().NDX()
	s.vx[T] = mat.NewVecDense(tndx, nil)
	s.vxx[T] = mat.NewDense(tndx, tndx, nil)
	s.gaps[T] = make([]float64, tndx)
}

func (s *DDP) Problem() *core.ShootingProblem { return s.problem }
func (s *DDP) Xs() [][]float64                { return s.st.Xs }
func (s *DDP) Us() [][]float64                { return s.st.Us }
func (s *DDP) Cost() float64                  { return s.st.Cost }
func (s *DDP) IsFeasible() bool               { return s.st.Feasible }
func (s *DDP) Regularization() (xreg, ureg float64) {
	return s.st.Xreg, s.st.Ureg
}

// SetThresholds overrides the step-acceptance ratio and the convergence
// threshold.
func (s *DDP) SetThresholds(acceptStep, stop float64) {
	s.st.ThAcceptStep = acceptStep
	s.st.ThStop = stop
}

// SetRegularizationBounds overrides the regularization floor, ceiling and
// geometric adaptation factor.
func (s *DDP) SetRegularizationBounds(min, max, factor float64) {
	s.regMin = min
	s.regMax = max
	s.regFactor = factor
}

func (s *DDP) SetCallbacks(cbs []Callback) { s.callbacks = cbs }

// SetCandidate installs a warm-start trajectory. Nil sequences keep current
// values, defaulting to a constant initial-state trajectory with zero
// controls when nothing was set before.
func (s *DDP) SetCandidate(xs, us [][]float64, feasible bool) error {
	T := s.problem.T()

	switch {
	case len(xs) == 0:
		if s.st.Xs == nil {
			s.st.Xs = make([][]float64, T+1)
			for t := range s.st.Xs {
				s.st.Xs[t] = append([]float64(nil), s.problem.InitialState()...)
			}
		}
	case len(xs) != T+1:
		return fmt.Errorf("xs has %d points, want %d: %w", len(xs), T+1, core.ErrDimension)
	default:
		for t, m := range s.problem.Running() {
			if nx := m.State().NX(); len(xs[t]) != nx {
				return fmt.Errorf("xs[%d] has %d components, want %d: %w", t, len(xs[t]), nx, core.ErrDimension)
			}
		}
		if nx := s.problem.Terminal().State().NX(); len(xs[T]) != nx {
			return fmt.Errorf("xs[%d] has %d components, want %d: %w", T, len(xs[T]), nx, core.ErrDimension)
		}
		s.st.Xs = cloneTrajectory(xs)
	}

	switch {
	case len(us) == 0:
		if s.st.Us == nil {
			s.st.Us = make([][]float64, T)
			for t, m := range s.problem.Running() {
				s.st.Us[t] = make([]float64, m.NU())
			}
		}
	case len(us) != T:
		return fmt.Errorf("us has %d points, want %d: %w", len(us), T, core.ErrDimension)
	default:
		for t, m := range s.problem.Running() {
			if nu := m.NU(); len(us[t]) != nu {
				return fmt.Errorf("us[%d] has %d components, want %d: %w", t, len(us[t]), nu, core.ErrDimension)
			}
		}
		s.st.Us = cloneTrajectory(us)
	}

	s.st.Feasible = feasible
	s.hasDirection = false
	return nil
}

// ComputeDirection evaluates the problem derivatives (when recalc is true)
// and runs the Riccati backward pass at the current candidate. The value
// gradients vx are returned as the dual sequence.
func (s *DDP) ComputeDirection(recalc bool) ([][]float64, error) {
	if s.st.Xs == nil || s.st.Us == nil {
		return nil, fmt.Errorf("no candidate set: %w", core.ErrBadCallOrder)
	}
	if recalc {
		s.st.Cost = s.problem.CalcDiff(s.st.Xs, s.st.Us)
		s.computeGaps()
	}
	if err := s.backwardPass(); err != nil {
		return nil, err
	}
	s.hasDirection = true

	duals := make([][]float64, len(s.vx))
	for t, v := range s.vx {
		duals[t] = append([]float64(nil), v.RawVector().Data...)
	}
	return duals, nil
}

// computeGaps stores the defect between the candidate states and the states
// the dynamics actually reach, used to relinearize infeasible warm starts.
func (s *DDP) computeGaps() {
	if s.st.Feasible {
		for t := range s.gaps {
			zero(s.gaps[t])
		}
		return
	}
	models := s.problem.Running()
	copy(s.gaps[0], models[0].State().Diff(s.st.Xs[0], s.problem.InitialState()))
	for t, m := range models {
		copy(s.gaps[t+1], m.State().Diff(s.st.Xs[t+1], s.problem.RunningDatas[t].Xnext))
	}
}

func (s *DDP) backwardPass() error {
	T := s.problem.T()
	term := s.problem.TerminalData

	s.vx[T].CopyVec(term.Lx)
	s.vxx[T].Copy(term.Lxx)
	if s.st.Xreg != 0 {
		addDiag(s.vxx[T], s.st.Xreg)
	}

	for t := T - 1; t >= 0; t-- {
		d := s.problem.RunningDatas[t]

		var fxtv, futv mat.Dense
		fxtv.Mul(d.Fx.T(), s.vxx[t+1])
		futv.Mul(d.Fu.T(), s.vxx[t+1])

		s.qxx[t].Mul(&fxtv, d.Fx)
		s.qxx[t].Add(s.qxx[t], d.Lxx)
		s.qxu[t].Mul(&fxtv, d.Fu)
		s.qxu[t].Add(s.qxu[t], d.Lxu)
		s.quu[t].Mul(&futv, d.Fu)
		s.quu[t].Add(s.quu[t], d.Luu)

		s.qx[t].MulVec(d.Fx.T(), s.vx[t+1])
		s.qx[t].AddVec(s.qx[t], d.Lx)
		s.qu[t].MulVec(d.Fu.T(), s.vx[t+1])
		s.qu[t].AddVec(s.qu[t], d.Lu)

		if !s.st.Feasible {
			// Warm start not obtained from a rollout: fold the defect into
			// the gradients through the next value Hessian.
			gap := mat.NewVecDense(len(s.gaps[t+1]), s.gaps[t+1])
			var relin, tmp mat.VecDense
			relin.MulVec(s.vxx[t+1], gap)
			tmp.MulVec(d.Fx.T(), &relin)
			s.qx[t].AddVec(s.qx[t], &tmp)
			tmp.Reset()
			tmp.MulVec(d.Fu.T(), &relin)
			s.qu[t].AddVec(s.qu[t], &tmp)
		}

		if s.st.Ureg != 0 {
			addDiag(s.quu[t], s.st.Ureg)
		}

		if err := s.computeGains(t); err != nil {
			return err
		}

		if s.st.Ureg == 0 {
			var kq mat.VecDense
			kq.MulVec(s.k[t].T(), s.qu[t])
			s.vx[t].SubVec(s.qx[t], &kq)
		} else {
			var kq, quuk, kquuk mat.VecDense
			kq.MulVec(s.k[t].T(), s.qu[t])
			quuk.MulVec(s.quu[t], s.kff[t])
			kquuk.MulVec(s.k[t].T(), &quuk)
			s.vx[t].AddScaledVec(s.qx[t], -2, &kq)
			s.vx[t].AddVec(s.vx[t], &kquuk)
		}

		var qxuk mat.Dense
		qxuk.Mul(s.qxu[t], s.k[t])
		s.vxx[t].Sub(s.qxx[t], &qxuk)
		symmetrize(s.vxx[t])
		if s.st.Xreg != 0 {
			addDiag(s.vxx[t], s.st.Xreg)
		}

		if !denseFinite(s.vxx[t]) || !vecFinite(s.vx[t]) {
			return &core.StageError{Stage: t, Err: core.ErrComputation}
		}
	}
	return nil
}

func (s *DDP) computeGains(t int) error {
	nu, _ := s.quu[t].Dims()
	sym := mat.NewSymDense(nu, nil)
	for i := 0; i < nu; i++ {
		for j := i; j < nu; j++ {
			sym.SetSym(i, j, 0.5*(s.quu[t].At(i, j)+s.quu[t].At(j, i)))
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return &core.StageError{Stage: t, Err: core.ErrComputation}
	}

	var qux mat.Dense
	qux.CloneFrom(s.qxu[t].T())
	if err := chol.SolveTo(s.k[t], &qux); err != nil {
		return &core.StageError{Stage: t, Err: core.ErrComputation}
	}
	if err := chol.SolveVecTo(s.kff[t], s.qu[t]); err != nil {
		return &core.StageError{Stage: t, Err: core.ErrComputation}
	}
	return nil
}

// TryStep rolls the dynamics forward along the current direction at the
// given step length. The trial trajectory is stored in the solver but the
// candidate is left untouched.
func (s *DDP) TryStep(stepLength float64) (float64, error) {
	if !s.hasDirection {
		return 0, fmt.Errorf("no direction computed: %w", core.ErrBadCallOrder)
	}
	if err := s.forwardPass(stepLength); err != nil {
		return 0, err
	}
	return s.st.Cost - s.costTry, nil
}

func (s *DDP) forwardPass(stepLength float64) error {
	T := s.problem.T()
	s.xsTry[0] = append(s.xsTry[0][:0], s.problem.InitialState()...)

	costTry := 0.0
	for t, m := range s.problem.Running() {
		d := s.problem.RunningDatas[t]

		dx := m.State().Diff(s.st.Xs[t], s.xsTry[t])
		var kdx mat.VecDense
		kdx.MulVec(s.k[t], mat.NewVecDense(len(dx), dx))

		nu := m.NU()
		if cap(s.usTry[t]) < nu {
			s.usTry[t] = make([]float64, nu)
		}
		s.usTry[t] = s.usTry[t][:nu]
		for i := 0; i < nu; i++ {
			s.usTry[t][i] = s.st.Us[t][i] - stepLength*s.kff[t].AtVec(i) - kdx.AtVec(i)
		}

		m.Calc(d, s.xsTry[t], s.usTry[t])
		s.xsTry[t+1] = append(s.xsTry[t+1][:0], d.Xnext...)
		costTry += d.Cost

		if !finite(d.Cost) || !sliceFinite(s.xsTry[t+1]) {
			return &core.StageError{Stage: t, Err: core.ErrComputation}
		}
	}

	s.problem.Terminal().Calc(s.problem.TerminalData, s.xsTry[T], nil)
	costTry += s.problem.TerminalData.Cost
	if !finite(costTry) {
		return &core.StageError{Stage: T, Err: core.ErrComputation}
	}
	s.costTry = costTry
	return nil
}

// StoppingCriteria is the squared norm of the control gradients Qu over the
// horizon.
func (s *DDP) StoppingCriteria() float64 {
	if !s.hasDirection {
		return math.Inf(1)
	}
	stop := 0.0
	for _, q := range s.qu {
		stop += mat.Dot(q, q)
	}
	return stop
}

// ExpectedImprovement returns the linear and quadratic coefficients of the
// predicted cost reduction at unit step: d(a) = a*(d1 + a/2*d2).
func (s *DDP) ExpectedImprovement() (float64, float64, error) {
	if !s.hasDirection {
		return 0, 0, fmt.Errorf("no direction computed: %w", core.ErrBadCallOrder)
	}
	d1, d2 := 0.0, 0.0
	for t := range s.kff {
		d1 += mat.Dot(s.qu[t], s.kff[t])
		var quuk mat.VecDense
		quuk.MulVec(s.quu[t], s.kff[t])
		d2 -= mat.Dot(s.kff[t], &quuk)
	}
	return d1, d2, nil
}

// Solve runs the full optimization loop. It only returns a non-nil error for
// caller misuse (wrong trajectory dimensions); numerical failures are
// absorbed by the regularization schedule and reported as non-convergence.
func (s *DDP) Solve(initXs, initUs [][]float64, maxiter int, feasible bool, regInit float64) ([][]float64, [][]float64, bool, error) {
	if err := s.SetCandidate(initXs, initUs, feasible); err != nil {
		return nil, nil, false, err
	}
	if regInit <= 0 {
		regInit = s.regMin
	}
	s.st.Xreg = regInit
	s.st.Ureg = regInit
	s.wasFeasible = false

	recalc := true
	for iter := 0; iter < maxiter; iter++ {
		s.st.Iteration = iter

		for {
			_, err := s.ComputeDirection(recalc)
			if err == nil {
				break
			}
			if !errors.Is(err, core.ErrComputation) {
				return nil, nil, false, err
			}
			recalc = false
			s.increaseRegularization()
			if s.st.Xreg == s.regMax {
				return s.st.Xs, s.st.Us, false, nil
			}
		}

		d1, d2, _ := s.ExpectedImprovement()
		if s.directionNorm() == 0 {
			// Nothing to move along: the candidate is already stationary.
			s.st.Stop = s.StoppingCriteria()
			return s.st.Xs, s.st.Us, true, nil
		}

		accepted := false
		var stepLength float64
		for _, a := range s.alphas {
			improvement, err := s.TryStep(a)
			if err != nil {
				continue
			}
			dVExp := a * (d1 + 0.5*d2*a)
			if improvement >= 0 && (d1 < s.thGrad || !s.st.Feasible || improvement > s.st.ThAcceptStep*dVExp) {
				s.wasFeasible = s.st.Feasible
				s.commitTrial()
				stepLength = a
				accepted = true
				break
			}
		}

		if !accepted {
			s.increaseRegularization()
			s.notify(IterationStats{
				Iteration: iter, Cost: s.st.Cost, Stop: s.st.Stop,
				D1: d1, D2: d2, Xreg: s.st.Xreg, Ureg: s.st.Ureg,
				Feasible: s.st.Feasible,
			})
			if s.st.Xreg == s.regMax {
				return s.st.Xs, s.st.Us, false, nil
			}
			recalc = false
			continue
		}

		if stepLength > s.thStepDec {
			s.decreaseRegularization()
		}
		recalc = true
		s.st.StepLength = stepLength
		s.st.Stop = s.StoppingCriteria()

		s.notify(IterationStats{
			Iteration: iter, Cost: s.st.Cost, Stop: s.st.Stop,
			D1: d1, D2: d2, StepLength: stepLength,
			Xreg: s.st.Xreg, Ureg: s.st.Ureg,
			Accepted: true, Feasible: s.st.Feasible,
		})

		if s.wasFeasible && s.st.Stop < s.st.ThStop {
			return s.st.Xs, s.st.Us, true, nil
		}
	}
	return s.st.Xs, s.st.Us, false, nil
}

func (s *DDP) commitTrial() {
	for t := range s.xsTry {
		s.st.Xs[t] = append(s.st.Xs[t][:0], s.xsTry[t]...)
	}
	for t := range s.usTry {
		s.st.Us[t] = append(s.st.Us[t][:0], s.usTry[t]...)
	}
	s.st.Feasible = true
	s.st.Cost = s.costTry
}

func (s *DDP) directionNorm() float64 {
	norm := 0.0
	for _, k := range s.kff {
		norm += mat.Dot(k, k)
	}
	return norm
}

func (s *DDP) increaseRegularization() {
	s.st.Xreg *= s.regFactor
	if s.st.Xreg > s.regMax {
		s.st.Xreg = s.regMax
	}
	s.st.Ureg = s.st.Xreg
}

func (s *DDP) decreaseRegularization() {
	s.st.Xreg /= s.regFactor
	if s.st.Xreg < s.regMin {
		s.st.Xreg = s.regMin
	}
	s.st.Ureg = s.st.Xreg
}

func (s *DDP) notify(st IterationStats) {
	for _, cb := range s.callbacks {
		cb.OnIteration(st)
	}
}

func cloneTrajectory(src [][]float64) [][]float64 {
	dst := make([][]float64, len(src))
	for i, v := range src {
		dst[i] = append([]float64(nil), v...)
	}
	return dst
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

func addDiag(m *mat.Dense, s float64) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		m.Set(i, i, m.At(i, i)+s)
	}
}

func symmetrize(m *mat.Dense) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := 0.5 * (m.At(i, j) + m.At(j, i))
			m.Set(i, j, v)
			m.Set(j, i, v)
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e30
}

func sliceFinite(v []float64) bool {
	for _, x := range v {
		if !finite(x) {
			return false
		}
	}
	return true
}

func vecFinite(v *mat.VecDense) bool {
	return sliceFinite(v.RawVector().Data)
}

func denseFinite(m *mat.Dense) bool {
	return sliceFinite(m.RawMatrix().Data)
}

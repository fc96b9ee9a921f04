package models

import (
	"gonum.org/v1/gonum/mat"

	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// LQ is a linear-quadratic stage: dynamics x' = A x + B u with cost
// 0.5 x'Qx + 0.5 u'Ru. A DDP backward pass is exact for it, which makes it
// the reference problem for solver tests (one full-step iteration reaches
// the optimum).
type LQ struct {
	A *mat.Dense
	B *mat.Dense
	Q *mat.Dense
	R *mat.Dense

	st *state.Vector
	nu int
}

func NewLQ(a, b, q, r *mat.Dense) *LQ {
	nx, _ := a.Dims()
	_, nu := b.Dims()
	return &LQ{A: a, B: b, Q: q, R: r, st: state.NewVector(nx), nu: nu}
}

// NewLQTerminal is a control-free quadratic terminal cost 0.5 x'Qx.
func NewLQTerminal(q *mat.Dense) *LQ {
	nx, _ := q.Dims()
	return &LQ{Q: q, st: state.NewVector(nx)}
}

// SingleIntegrator builds the LQ stage x' = x + dt*u with isotropic weights.
func SingleIntegrator(nx int, dt, stateWeight, ctrlWeight float64) *LQ {
	a := Diagonal(nx, 1)
	b := Diagonal(nx, dt)
	q := Diagonal(nx, stateWeight)
	r := Diagonal(nx, ctrlWeight)
	return NewLQ(a, b, q, r)
}

func (m *LQ) State() state.Manifold { return m.st }
func (m *LQ) NU() int               { return m.nu }

func (m *LQ) CreateData() *core.ActionData {
	return core.NewActionData(m.st.NDX(), m.nu)
}

func (m *LQ) Calc(d *core.ActionData, x, u []float64) {
	nx := m.st.NX()
	xv := mat.NewVecDense(nx, x)

	var qx mat.VecDense
	qx.MulVec(m.Q, xv)
	cost := 0.5 * mat.Dot(xv, &qx)

	if m.nu == 0 || u == nil {
		d.Xnext = append(d.Xnext[:0], x...)
		d.Cost = cost
		return
	}

	uv := mat.NewVecDense(m.nu, u)
	var ru, next, bu mat.VecDense
	ru.MulVec(m.R, uv)
	cost += 0.5 * mat.Dot(uv, &ru)

	next.MulVec(m.A, xv)
	bu.MulVec(m.B, uv)
	next.AddVec(&next, &bu)
	d.Xnext = append(d.Xnext[:0], next.RawVector().Data...)
	d.Cost = cost
}

func (m *LQ) CalcDiff(d *core.ActionData, x, u []float64) {
	m.Calc(d, x, u)

	nx := m.st.NX()
	xv := mat.NewVecDense(nx, x)
	d.Lx.MulVec(m.Q, xv)
	d.Lxx.Copy(m.Q)

	if m.nu == 0 || u == nil {
		d.Fx.Zero()
		for i := 0; i < nx; i++ {
			d.Fx.Set(i, i, 1)
		}
		return
	}

	uv := mat.NewVecDense(m.nu, u)
	d.Lu.MulVec(m.R, uv)
	d.Luu.Copy(m.R)
	d.Lxu.Zero()
	d.Fx.Copy(m.A)
	d.Fu.Copy(m.B)
}

// Diagonal returns s times the n x n identity.
func Diagonal(n int, s float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, s)
	}
	return m
}

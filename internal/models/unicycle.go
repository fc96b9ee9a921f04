package models

import (
	"math"

	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// Unicycle is the classic planar unicycle stage: state (px, py, theta),
// controls (forward speed, turn rate), Euler-discretized dynamics and a
// quadratic cost pulling the pose to the origin.
type Unicycle struct {
	Dt          float64
	StateWeight float64
	CtrlWeight  float64

	st       *state.Vector
	terminal bool
}

func NewUnicycle() *Unicycle {
	return &Unicycle{
		Dt:          0.1,
		StateWeight: 10,
		CtrlWeight:  1,
		st:          state.NewVector(3),
	}
}

// NewUnicycleTerminal is the control-free terminal stage of the same cost.
func NewUnicycleTerminal() *Unicycle {
	m := NewUnicycle()
	m.terminal = true
	return m
}

func (m *Unicycle) State() state.Manifold { return m.st }

func (m *Unicycle) NU() int {
	if m.terminal {
		return 0
	}
	return 2
}

func (m *Unicycle) CreateData() *core.ActionData {
	return core.NewActionData(m.st.NDX(), m.NU())
}

func (m *Unicycle) Calc(d *core.ActionData, x, u []float64) {
	wx2 := m.StateWeight * m.StateWeight
	cost := 0.0
	for _, v := range x {
		cost += wx2 * v * v
	}

	if m.terminal || u == nil {
		d.Xnext = append(d.Xnext[:0], x...)
		d.Cost = 0.5 * cost
		return
	}

	v, w := u[0], u[1]
	c, s := math.Cos(x[2]), math.Sin(x[2])
	d.Xnext = append(d.Xnext[:0],
		x[0]+c*v*m.Dt,
		x[1]+s*v*m.Dt,
		x[2]+w*m.Dt,
	)

	wu2 := m.CtrlWeight * m.CtrlWeight
	cost += wu2 * (v*v + w*w)
	d.Cost = 0.5 * cost
}

func (m *Unicycle) CalcDiff(d *core.ActionData, x, u []float64) {
	m.Calc(d, x, u)

	wx2 := m.StateWeight * m.StateWeight
	d.Lxx.Zero()
	for i := 0; i < 3; i++ {
		d.Lx.SetVec(i, wx2*x[i])
		d.Lxx.Set(i, i, wx2)
	}

	if m.terminal || u == nil {
		d.Fx.Zero()
		for i := 0; i < 3; i++ {
			d.Fx.Set(i, i, 1)
		}
		return
	}

	wu2 := m.CtrlWeight * m.CtrlWeight
	d.Lu.SetVec(0, wu2*u[0])
	d.Lu.SetVec(1, wu2*u[1])
	d.Luu.Zero()
	d.Luu.Set(0, 0, wu2)
	d.Luu.Set(1, 1, wu2)
	d.Lxu.Zero()

	v := u[0]
	c, s := math.Cos(x[2]), math.Sin(x[2])
	d.Fx.Zero()
	d.Fx.Set(0, 0, 1)
	d.Fx.Set(1, 1, 1)
	d.Fx.Set(2, 2, 1)
	d.Fx.Set(0, 2, -s*v*m.Dt)
	d.Fx.Set(1, 2, c*v*m.Dt)

	d.Fu.Zero()
	d.Fu.Set(0, 0, c*m.Dt)
	d.Fu.Set(1, 0, s*m.Dt)
	d.Fu.Set(2, 1, m.Dt)
}

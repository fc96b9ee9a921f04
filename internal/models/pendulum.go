package models

import (
	"math"

	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/integrators"
	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// Pendulum is a torque-actuated pendulum stage with continuous dynamics
// integrated per step. The angle is measured from upright, so the origin is
// the unstable equilibrium and the quadratic cost encodes a swing-up task.
// It only provides Calc; wrap it in core.NumDiff to use it with a solver.
type Pendulum struct {
	Mass    float64
	Length  float64
	Gravity float64
	Damping float64
	Dt      float64

	AngleWeight float64
	RateWeight  float64
	CtrlWeight  float64

	integ    integrators.Integrator
	st       *state.Vector
	terminal bool
}

func NewPendulum(ig integrators.Integrator) *Pendulum {
	return &Pendulum{
		Mass:        1,
		Length:      1,
		Gravity:     9.81,
		Damping:     0.1,
		Dt:          0.05,
		AngleWeight: 1,
		RateWeight:  0.1,
		CtrlWeight:  1e-3,
		integ:       ig,
		st:          state.NewVector(2),
	}
}

// NewPendulumTerminal is the control-free terminal stage, with the weights
// scaled up to pin the upright pose.
func NewPendulumTerminal() *Pendulum {
	m := NewPendulum(nil)
	m.AngleWeight = 100
	m.RateWeight = 10
	m.terminal = true
	return m
}

func (m *Pendulum) State() state.Manifold { return m.st }

func (m *Pendulum) NU() int {
	if m.terminal {
		return 0
	}
	return 1
}

func (m *Pendulum) CreateData() *core.ActionData {
	return core.NewActionData(m.st.NDX(), m.NU())
}

// Derivative is the continuous dynamics (theta, thetadot) -> their rates.
func (m *Pendulum) Derivative(x, u []float64) []float64 {
	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}
	ml2 := m.Mass * m.Length * m.Length
	return []float64{
		x[1],
		m.Gravity/m.Length*math.Sin(x[0]) + (torque-m.Damping*x[1])/ml2,
	}
}

func (m *Pendulum) Calc(d *core.ActionData, x, u []float64) {
	cost := 0.5 * (m.AngleWeight*x[0]*x[0] + m.RateWeight*x[1]*x[1])

	if m.terminal || u == nil {
		d.Xnext = append(d.Xnext[:0], x...)
		d.Cost = cost
		return
	}

	d.Xnext = append(d.Xnext[:0], m.integ.Step(m, x, u, m.Dt)...)
	d.Cost = cost + 0.5*m.CtrlWeight*u[0]*u[0]
}

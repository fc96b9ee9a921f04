package models

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nopaddleboat/crocoddyl/internal/contact"
	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/kinematics"
	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// ContactPoint is a force-actuated point mass settling onto a 3d contact.
// The running cost penalizes the Baumgarte-stabilized contact drift together
// with the control effort, so the optimizer drives the point onto the contact
// reference and holds it there. The state is position then velocity; controls
// are the applied force. It only provides Calc; wrap it in core.NumDiff to
// use it with a solver.
type ContactPoint struct {
	Mass        float64
	Dt          float64
	DriftWeight float64
	CtrlWeight  float64

	model    *contact.Model3D
	provider *kinematics.Particle
	data     *contact.Data3D
	st       *state.Vector
	terminal bool
}

func NewContactPoint(ref mgl64.Vec3, conv contact.Reference, gains [2]float64) *ContactPoint {
	st := state.NewVector(6)
	provider := kinematics.NewParticle()
	model := contact.NewModel3D(st, kinematics.ParticleFrame, ref, conv, 3, gains)
	// the particle always carries the contact frame at matching dimensions
	data, _ := model.CreateData(provider)
	return &ContactPoint{
		Mass:        1,
		Dt:          0.1,
		DriftWeight: 1,
		CtrlWeight:  1e-2,
		model:       model,
		provider:    provider,
		data:        data,
		st:          st,
	}
}

// NewContactPointTerminal is the control-free terminal stage: a quadratic
// penalty on the position error to the contact reference and on the residual
// velocity.
func NewContactPointTerminal(ref mgl64.Vec3) *ContactPoint {
	m := NewContactPoint(ref, contact.Local, [2]float64{})
	m.DriftWeight = 100
	m.terminal = true
	return m
}

func (m *ContactPoint) State() state.Manifold { return m.st }

func (m *ContactPoint) NU() int {
	if m.terminal {
		return 0
	}
	return 3
}

func (m *ContactPoint) CreateData() *core.ActionData {
	return core.NewActionData(m.st.NDX(), m.NU())
}

func (m *ContactPoint) Calc(d *core.ActionData, x, u []float64) {
	pos := mgl64.Vec3{x[0], x[1], x[2]}
	vel := mgl64.Vec3{x[3], x[4], x[5]}

	if m.terminal || u == nil {
		dp := pos.Sub(m.model.Reference())
		d.Xnext = append(d.Xnext[:0], x...)
		d.Cost = 0.5 * m.DriftWeight * (dp.Dot(dp) + vel.Dot(vel))
		return
	}

	acc := mgl64.Vec3{u[0], u[1], u[2]}.Mul(1 / m.Mass)
	m.provider.SetState(pos, vel)
	m.provider.Accel = acc
	m.model.Calc(m.data, x)
	a0 := m.data.A0

	d.Xnext = append(d.Xnext[:0],
		x[0]+m.Dt*x[3], x[1]+m.Dt*x[4], x[2]+m.Dt*x[5],
		x[3]+m.Dt*acc[0], x[4]+m.Dt*acc[1], x[5]+m.Dt*acc[2])
	d.Cost = 0.5 * m.Dt * (m.DriftWeight*a0.Dot(a0) +
		m.CtrlWeight*(u[0]*u[0]+u[1]*u[1]+u[2]*u[2]))
}

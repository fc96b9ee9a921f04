package contact

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/kinematics"
	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// Reference selects the frame the constraint quantities are expressed in.
type Reference int

const (
	// Local expresses drift and Jacobian in the contact frame itself.
	Local Reference = iota
	// LocalWorldAligned expresses them in a world-aligned frame co-located
	// with the contact frame.
	LocalWorldAligned
)

// ParseReference maps a configuration string onto a convention. The empty
// string selects Local.
func ParseReference(s string) (Reference, error) {
	switch s {
	case "", "local":
		return Local, nil
	case "world", "local_world_aligned":
		return LocalWorldAligned, nil
	}
	return Local, fmt.Errorf("unknown contact convention %q", s)
}

func (r Reference) String() string {
	if r == LocalWorldAligned {
		return "world"
	}
	return "local"
}

// NC is the constraint dimension of a 3d contact.
const NC = 3

// Model3D is a 3-dimensional holonomic contact: a frame point constrained to
// stay at a reference position. Calc produces the constraint Jacobian and the
// acceleration-level drift with optional Baumgarte stabilization; CalcDiff
// produces the drift partials with respect to the state tangent.
type Model3D struct {
	state state.Manifold
	frame kinematics.FrameID
	ref   mgl64.Vec3
	conv  Reference
	nu    int
	gains [2]float64
}

// NewModel3D builds a 3d contact model. The manifold is shared with the
// owning dynamics, not copied. gains are the Baumgarte position and velocity
// gains; zero gains disable stabilization.
func NewModel3D(st state.Manifold, frame kinematics.FrameID, ref mgl64.Vec3, conv Reference, nu int, gains [2]float64) *Model3D {
	return &Model3D{
		state: st,
		frame: frame,
		ref:   ref,
		conv:  conv,
		nu:    nu,
		gains: gains,
	}
}

func (m *Model3D) State() state.Manifold     { return m.state }
func (m *Model3D) Frame() kinematics.FrameID { return m.frame }
func (m *Model3D) NU() int                   { return m.nu }
func (m *Model3D) NC() int                   { return NC }
func (m *Model3D) Convention() Reference     { return m.conv }
func (m *Model3D) Gains() [2]float64         { return m.gains }
func (m *Model3D) Reference() mgl64.Vec3     { return m.ref }

// SetReference changes the Baumgarte reference position. It takes effect on
// the next Calc; quantities already in a Data3D are not touched.
func (m *Model3D) SetReference(ref mgl64.Vec3) { m.ref = ref }

// CreateData allocates the evaluation buffer for this model against the
// given kinematics provider, caching the frame's fixed local placement and
// its action matrix.
func (m *Model3D) CreateData(p kinematics.Provider) (*Data3D, error) {
	if !p.HasFrame(m.frame) {
		return nil, fmt.Errorf("contact frame %d: %w", m.frame, core.ErrFrameNotFound)
	}
	if m.state.NDX() != 2*p.NV() {
		return nil, fmt.Errorf("manifold ndx %d does not match 2*nv %d: %w",
			m.state.NDX(), 2*p.NV(), core.ErrDimension)
	}
	return newData3D(m, p), nil
}

// Calc queries the provider at the state the caller has installed and fills
// the constraint Jacobian Jc and drift A0. The drift is the translational
// frame acceleration under zero generalized acceleration plus the gyroscopic
// term, corrected by Baumgarte feedback on the position and velocity errors.
func (m *Model3D) Calc(d *Data3D, x []float64) error {
	p := d.provider
	if !p.HasFrame(m.frame) {
		return fmt.Errorf("contact frame %d: %w", m.frame, core.ErrFrameNotFound)
	}

	d.FJf.Copy(p.FrameJacobian(m.frame))
	d.V = p.SpatialVelocity(m.frame)
	a := p.SpatialAcceleration(m.frame)
	vv, vw := d.V.Lin, d.V.Ang

	d.A0Local = a.Lin.Add(vw.Cross(vv))

	d.OMf = p.Placement(m.frame)
	d.Dp = d.OMf.T.Sub(m.ref)
	d.DpLocal = d.OMf.R.Transpose().Mul3x1(d.Dp)
	if m.gains[0] != 0 {
		d.A0Local = d.A0Local.Add(d.DpLocal.Mul(m.gains[0]))
	}
	if m.gains[1] != 0 {
		d.A0Local = d.A0Local.Add(vv.Mul(m.gains[1]))
	}

	switch m.conv {
	case Local:
		d.Jc.Copy(kinematics.TopRows3(d.FJf))
		d.A0 = d.A0Local
	case LocalWorldAligned:
		d.Jc.Copy(kinematics.MulMat3(d.OMf.R, kinematics.TopRows3(d.FJf)))
		d.A0 = d.OMf.R.Mul3x1(d.A0Local)
	}

	d.calcDone = true
	return nil
}

// CalcDiff fills the drift partials Da0Dx with respect to the state tangent,
// position block then velocity block. It reuses the kinematic quantities
// cached by Calc, which must have been called on the same data at the same
// state.
func (m *Model3D) CalcDiff(d *Data3D, x []float64) error {
	if !d.calcDone {
		return fmt.Errorf("contact CalcDiff before Calc: %w", core.ErrBadCallOrder)
	}
	p := d.provider
	nv := p.NV()
	vv, vw := d.V.Lin, d.V.Ang

	vDq, _ := p.VelocityPartials(m.frame)
	aDq, aDv, _ := p.AccelerationPartials(m.frame)

	// Transform the joint-level partials into the contact frame.
	var fXjdvDq, fXjdaDq, fXjdaDv mat.Dense
	fXjdvDq.Mul(d.FXj, vDq)
	fXjdaDq.Mul(d.FXj, aDq)
	fXjdaDv.Mul(d.FXj, aDv)

	vvSkew := kinematics.Skew(vv)
	vwSkew := kinematics.Skew(vw)

	// da0/dq = lin(a_dq) + vw x lin(v_dq) - vv x ang(v_dq)
	daDq := mat.NewDense(NC, nv, nil)
	daDq.Copy(kinematics.TopRows3(&fXjdaDq))
	daDq.Add(daDq, kinematics.MulMat3(vwSkew, kinematics.TopRows3(&fXjdvDq)))
	daDq.Sub(daDq, kinematics.MulMat3(vvSkew, kinematics.BottomRows3(&fXjdvDq)))

	// da0/dv = lin(a_dv) + vw x lin(J) - vv x ang(J)
	daDv := mat.NewDense(NC, nv, nil)
	daDv.Copy(kinematics.TopRows3(&fXjdaDv))
	daDv.Add(daDv, kinematics.MulMat3(vwSkew, kinematics.TopRows3(d.FJf)))
	daDv.Sub(daDv, kinematics.MulMat3(vvSkew, kinematics.BottomRows3(d.FJf)))

	if m.gains[0] != 0 {
		addScaled(daDq, m.gains[0], kinematics.TopRows3(d.FJf))
		addScaled(daDq, m.gains[0],
			kinematics.MulMat3(kinematics.Skew(d.DpLocal), kinematics.BottomRows3(d.FJf)))
	}
	if m.gains[1] != 0 {
		addScaled(daDq, m.gains[1], kinematics.TopRows3(&fXjdvDq))
		addScaled(daDv, m.gains[1], kinematics.TopRows3(d.FJf))
	}

	d.Da0LocalDx.Slice(0, NC, 0, nv).(*mat.Dense).Copy(daDq)
	d.Da0LocalDx.Slice(0, NC, nv, 2*nv).(*mat.Dense).Copy(daDv)

	switch m.conv {
	case Local:
		d.Da0Dx.Copy(d.Da0LocalDx)
	case LocalWorldAligned:
		// a0_world = R a0_local, so rotating the local partials leaves a
		// skew correction from the q-dependence of R.
		left := kinematics.MulMat3(d.OMf.R, daDq)
		rJw := kinematics.MulMat3(d.OMf.R, kinematics.BottomRows3(d.FJf))
		left.Sub(left, kinematics.MulMat3(kinematics.Skew(d.A0), rJw))
		d.Da0Dx.Slice(0, NC, 0, nv).(*mat.Dense).Copy(left)
		d.Da0Dx.Slice(0, NC, nv, 2*nv).(*mat.Dense).Copy(kinematics.MulMat3(d.OMf.R, daDv))
	}
	return nil
}

// UpdateForce stores a 3-vector contact force estimate as a spatial force in
// the local contact frame with zero moment, consistent with the Jacobian
// convention used by Calc. The force derivative blocks DfDx/DfDu stay under
// the caller's control.
func (m *Model3D) UpdateForce(d *Data3D, force []float64) error {
	if len(force) != NC {
		return fmt.Errorf("force has %d components, want %d: %w", len(force), NC, core.ErrDimension)
	}
	if !d.calcDone {
		return fmt.Errorf("contact UpdateForce before Calc: %w", core.ErrBadCallOrder)
	}
	lin := mgl64.Vec3{force[0], force[1], force[2]}
	if m.conv == LocalWorldAligned {
		lin = d.OMf.R.Transpose().Mul3x1(lin)
	}
	d.F = kinematics.Force{Lin: lin}
	return nil
}

func addScaled(dst *mat.Dense, s float64, m mat.Matrix) {
	var tmp mat.Dense
	tmp.Scale(s, m)
	dst.Add(dst, &tmp)
}

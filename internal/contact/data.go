package contact

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/nopaddleboat/crocoddyl/internal/kinematics"
)

// Data3D is the evaluation buffer of a Model3D. It is created once per
// (model, provider) pair and overwritten in place by every Calc/CalcDiff
// cycle; it is never shared across concurrent evaluations.
//
// The fixed local placement of the contact frame (JMf) and its inverse
// action matrix (FXj) do not depend on the configuration and are cached at
// construction.
type Data3D struct {
	provider kinematics.Provider

	JMf kinematics.SE3
	FXj *mat.Dense // 6x6, joint-to-frame motion transform

	// Filled by Calc.
	OMf     kinematics.SE3
	V       kinematics.Motion
	A0Local mgl64.Vec3
	A0      mgl64.Vec3
	Dp      mgl64.Vec3
	DpLocal mgl64.Vec3
	Jc      *mat.Dense // 3 x nv constraint Jacobian
	FJf     *mat.Dense // 6 x nv local frame Jacobian

	// Filled by CalcDiff.
	Da0Dx      *mat.Dense // 3 x ndx
	Da0LocalDx *mat.Dense // 3 x ndx

	// Filled by UpdateForce; derivative blocks are left to the caller.
	F    kinematics.Force
	DfDx *mat.Dense // 3 x ndx
	DfDu *mat.Dense // 3 x nu

	calcDone bool
}

func newData3D(m *Model3D, p kinematics.Provider) *Data3D {
	nv := p.NV()
	ndx := m.state.NDX()
	jMf := p.LocalPlacement(m.frame)
	d := &Data3D{
		provider:   p,
		JMf:        jMf,
		FXj:        jMf.Inverse().ActionMatrix(),
		Jc:         mat.NewDense(3, nv, nil),
		FJf:        mat.NewDense(6, nv, nil),
		Da0Dx:      mat.NewDense(3, ndx, nil),
		Da0LocalDx: mat.NewDense(3, ndx, nil),
		DfDx:       mat.NewDense(3, ndx, nil),
	}
	if m.nu > 0 {
		d.DfDu = mat.NewDense(3, m.nu, nil)
	}
	return d
}

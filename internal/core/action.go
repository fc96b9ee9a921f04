package core

import (
	"gonum.org/v1/gonum/mat"

	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// ActionModel is one stage of a shooting problem: discrete dynamics plus the
// running cost at that stage. Terminal models are ActionModels with NU() == 0
// called with a nil control.
//
// Calc rolls the dynamics one step and evaluates the cost; CalcDiff fills the
// first and second order derivatives. Both write into an ActionData created
// by CreateData and owned by the caller.
type ActionModel interface {
	State() state.Manifold
	NU() int
	CreateData() *ActionData
	Calc(d *ActionData, x, u []float64)
	CalcDiff(d *ActionData, x, u []float64)
}

// ActionData is the per-stage evaluation buffer. Matrices are allocated once
// and overwritten in place on every Calc/CalcDiff call. Control blocks are
// nil when the owning model has no control (terminal stage).
type ActionData struct {
	Cost  float64
	Xnext []float64

	Lx  *mat.VecDense // ndx
	Lu  *mat.VecDense // nu
	Lxx *mat.Dense    // ndx x ndx
	Lxu *mat.Dense    // ndx x nu
	Luu *mat.Dense    // nu x nu
	Fx  *mat.Dense    // ndx x ndx
	Fu  *mat.Dense    // ndx x nu
}

// NewActionData allocates an ActionData for the given tangent and control
// dimensions.
func NewActionData(ndx, nu int) *ActionData {
	d := &ActionData{
		Xnext: make([]float64, 0),
		Lx:    mat.NewVecDense(ndx, nil),
		Lxx:   mat.NewDense(ndx, ndx, nil),
		Fx:    mat.NewDense(ndx, ndx, nil),
	}
	if nu > 0 {
		d.Lu = mat.NewVecDense(nu, nil)
		d.Lxu = mat.NewDense(ndx, nu, nil)
		d.Luu = mat.NewDense(nu, nu, nil)
		d.Fu = mat.NewDense(ndx, nu, nil)
	}
	return d
}

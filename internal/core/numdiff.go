package core

import (
	"math"

	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// CalcOnlyModel is an action model that only knows how to evaluate its
// dynamics and cost. NumDiff turns one into a full ActionModel.
type CalcOnlyModel interface {
	State() state.Manifold
	NU() int
	CreateData() *ActionData
	Calc(d *ActionData, x, u []float64)
}

// NumDiff fills the derivatives of a Calc-only model by finite differences:
// forward differences on the dynamics and cost gradients, central second
// differences (on a coarser step) for the cost Hessian blocks. State
// perturbations go through the manifold, so it works on non-Euclidean states
// too.
type NumDiff struct {
	inner CalcOnlyModel
	h     float64
	hh    float64

	scratch *ActionData
}

// NewNumDiff wraps a model with numerical differentiation at perturbation
// size h; h <= 0 selects a default.
func NewNumDiff(m CalcOnlyModel, h float64) *NumDiff {
	if h <= 0 {
		h = 1e-6
	}
	return &NumDiff{
		inner:   m,
		h:       h,
		hh:      math.Sqrt(h),
		scratch: m.CreateData(),
	}
}

func (n *NumDiff) State() state.Manifold { return n.inner.State() }
func (n *NumDiff) NU() int               { return n.inner.NU() }

func (n *NumDiff) CreateData() *ActionData { return n.inner.CreateData() }

func (n *NumDiff) Calc(d *ActionData, x, u []float64) {
	n.inner.Calc(d, x, u)
}

func (n *NumDiff) CalcDiff(d *ActionData, x, u []float64) {
	st := n.inner.State()
	ndx := st.NDX()
	nu := n.inner.NU()

	n.inner.Calc(d, x, u)
	cost0 := d.Cost
	xnext0 := append([]float64(nil), d.Xnext...)

	dx := make([]float64, ndx)
	for i := 0; i < ndx; i++ {
		dx[i] = n.h
		xp := st.Integrate(x, dx)
		dx[i] = 0

		n.inner.Calc(n.scratch, xp, u)
		diff := st.Diff(xnext0, n.scratch.Xnext)
		for r := 0; r < ndx; r++ {
			d.Fx.Set(r, i, diff[r]/n.h)
		}
		d.Lx.SetVec(i, (n.scratch.Cost-cost0)/n.h)
	}

	if nu > 0 && u != nil {
		up := make([]float64, nu)
		for j := 0; j < nu; j++ {
			copy(up, u)
			up[j] += n.h

			n.inner.Calc(n.scratch, x, up)
			diff := st.Diff(xnext0, n.scratch.Xnext)
			for r := 0; r < ndx; r++ {
				d.Fu.Set(r, j, diff[r]/n.h)
			}
			d.Lu.SetVec(j, (n.scratch.Cost-cost0)/n.h)
		}
	}

	n.costHessians(d, x, u, cost0)

	d.Cost = cost0
	d.Xnext = append(d.Xnext[:0], xnext0...)
}

// costHessians fills Lxx, Lxu and Luu with central second differences of the
// cost around (x, u).
func (n *NumDiff) costHessians(d *ActionData, x, u []float64, cost0 float64) {
	st := n.inner.State()
	ndx := st.NDX()
	nu := n.inner.NU()
	h := n.hh

	costAt := func(dxi, dxj []float64, du []float64) float64 {
		xp := x
		if dxi != nil || dxj != nil {
			step := make([]float64, ndx)
			if dxi != nil {
				for k := range step {
					step[k] += dxi[k]
				}
			}
			if dxj != nil {
				for k := range step {
					step[k] += dxj[k]
				}
			}
			xp = st.Integrate(x, step)
		}
		up := u
		if du != nil {
			uc := make([]float64, nu)
			copy(uc, u)
			for k := range uc {
				uc[k] += du[k]
			}
			up = uc
		}
		n.inner.Calc(n.scratch, xp, up)
		return n.scratch.Cost
	}

	unitX := func(i int, s float64) []float64 {
		v := make([]float64, ndx)
		v[i] = s
		return v
	}
	unitU := func(j int, s float64) []float64 {
		v := make([]float64, nu)
		v[j] = s
		return v
	}

	for i := 0; i < ndx; i++ {
		for j := i; j < ndx; j++ {
			var v float64
			if i == j {
				v = (costAt(unitX(i, h), nil, nil) - 2*cost0 + costAt(unitX(i, -h), nil, nil)) / (h * h)
			} else {
				v = (costAt(unitX(i, h), unitX(j, h), nil) -
					costAt(unitX(i, h), unitX(j, -h), nil) -
					costAt(unitX(i, -h), unitX(j, h), nil) +
					costAt(unitX(i, -h), unitX(j, -h), nil)) / (4 * h * h)
			}
			d.Lxx.Set(i, j, v)
			d.Lxx.Set(j, i, v)
		}
	}

	if nu == 0 || u == nil {
		return
	}

	for i := 0; i < ndx; i++ {
		for j := 0; j < nu; j++ {
			v := (costAt(unitX(i, h), nil, unitU(j, h)) -
				costAt(unitX(i, h), nil, unitU(j, -h)) -
				costAt(unitX(i, -h), nil, unitU(j, h)) +
				costAt(unitX(i, -h), nil, unitU(j, -h))) / (4 * h * h)
			d.Lxu.Set(i, j, v)
		}
	}

	for i := 0; i < nu; i++ {
		for j := i; j < nu; j++ {
			var v float64
			if i == j {
				v = (costAt(nil, nil, unitU(i, h)) - 2*cost0 + costAt(nil, nil, unitU(i, -h))) / (h * h)
			} else {
				var dij, dimj []float64
				dij = unitU(i, h)
				dij[j] += h
				dimj = unitU(i, h)
				dimj[j] -= h
				dji := unitU(i, -h)
				dji[j] += h
				djj := unitU(i, -h)
				djj[j] -= h
				v = (costAt(nil, nil, dij) - costAt(nil, nil, dimj) -
					costAt(nil, nil, dji) + costAt(nil, nil, djj)) / (4 * h * h)
			}
			d.Luu.Set(i, j, v)
			d.Luu.Set(j, i, v)
		}
	}
}

package state

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Vector is the Euclidean manifold R^n: diff and integrate are plain vector
// subtraction and addition, and all Jacobians are constant.
type Vector struct {
	nx int
}

func NewVector(nx int) *Vector {
	return &Vector{nx: nx}
}

func (v *Vector) NX() int  { return v.nx }
func (v *Vector) NDX() int { return v.nx }

func (v *Vector) Zero() []float64 {
	return make([]float64, v.nx)
}

func (v *Vector) Rand() []float64 {
	x := make([]float64, v.nx)
	for i := range x {
		x[i] = rand.Float64()*2 - 1
	}
	return x
}

func (v *Vector) Diff(x0, x1 []float64) []float64 {
	dx := make([]float64, v.nx)
	for i := range dx {
		dx[i] = x1[i] - x0[i]
	}
	return dx
}

func (v *Vector) Integrate(x, dx []float64) []float64 {
	out := make([]float64, v.nx)
	for i := range out {
		out[i] = x[i] + dx[i]
	}
	return out
}

func (v *Vector) JDiff(x0, x1 []float64) (*mat.Dense, *mat.Dense) {
	first := identity(v.nx)
	first.Scale(-1, first)
	return first, identity(v.nx)
}

func (v *Vector) JIntegrate(x, dx []float64) (*mat.Dense, *mat.Dense) {
	return identity(v.nx), identity(v.nx)
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

package state

import "gonum.org/v1/gonum/mat"

// Manifold describes the state space a trajectory lives on. Points are
// represented as plain float64 slices of length NX; tangent-space increments
// have length NDX. For Euclidean spaces the two coincide, but solvers and
// contact models only ever talk to this interface so Lie-group states (e.g.
// a floating base) can be plugged in without touching them.
type Manifold interface {
	NX() int
	NDX() int

	Zero() []float64
	Rand() []float64

	// Diff returns x1 (-) x0, the tangent increment that carries x0 onto x1.
	Diff(x0, x1 []float64) []float64

	// Integrate returns x (+) dx.
	Integrate(x, dx []float64) []float64

	// JDiff returns the Jacobians of Diff with respect to its first and
	// second argument, each NDX x NDX.
	JDiff(x0, x1 []float64) (first, second *mat.Dense)

	// JIntegrate returns the Jacobians of Integrate with respect to the
	// point and the increment, each NDX x NDX.
	JIntegrate(x, dx []float64) (first, second *mat.Dense)
}

package integrators

// Dynamics is a time-invariant continuous system xdot = f(x, u).
type Dynamics interface {
	Derivative(x, u []float64) []float64
}

// Integrator advances a continuous system by one fixed step.
type Integrator interface {
	Step(dyn Dynamics, x, u []float64, dt float64) []float64
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn Dynamics, x, u []float64, dt float64) []float64 {
	dx := dyn.Derivative(x, u)
	result := make([]float64, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

package integrators

import (
	"math"
	"testing"
)

// decay is xdot = -x, with the exact solution x(t) = x0 * exp(-t).
type decay struct{}

func (decay) Derivative(x, u []float64) []float64 {
	return []float64{-x[0]}
}

// forced is xdot = u, to check the control is passed through.
type forced struct{}

func (forced) Derivative(x, u []float64) []float64 {
	return []float64{u[0]}
}

func simulate(ig Integrator, dyn Dynamics, x0 []float64, steps int, dt float64) []float64 {
	x := x0
	for i := 0; i < steps; i++ {
		x = ig.Step(dyn, x, nil, dt)
	}
	return x
}

func TestEulerDecay(t *testing.T) {
	x := simulate(NewEuler(), decay{}, []float64{1}, 1000, 0.001)
	want := math.Exp(-1)
	if math.Abs(x[0]-want) > 1e-3 {
		t.Fatalf("x(1) = %v, want %v", x[0], want)
	}
}

func TestRK4Decay(t *testing.T) {
	x := simulate(NewRK4(), decay{}, []float64{1}, 100, 0.01)
	want := math.Exp(-1)
	if math.Abs(x[0]-want) > 1e-10 {
		t.Fatalf("x(1) = %v, want %v", x[0], want)
	}
}

func TestRK4BeatsEuler(t *testing.T) {
	want := math.Exp(-1)
	euler := simulate(NewEuler(), decay{}, []float64{1}, 100, 0.01)
	rk4 := simulate(NewRK4(), decay{}, []float64{1}, 100, 0.01)
	if math.Abs(rk4[0]-want) >= math.Abs(euler[0]-want) {
		t.Fatalf("rk4 error %v not smaller than euler error %v",
			math.Abs(rk4[0]-want), math.Abs(euler[0]-want))
	}
}

func TestControlPassthrough(t *testing.T) {
	for _, ig := range []Integrator{NewEuler(), NewRK4()} {
		x := ig.Step(forced{}, []float64{0}, []float64{2}, 0.5)
		if math.Abs(x[0]-1) > 1e-12 {
			t.Fatalf("%T: x = %v, want 1", ig, x[0])
		}
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	x0 := []float64{1}
	NewRK4().Step(decay{}, x0, nil, 0.1)
	if x0[0] != 1 {
		t.Fatal("input state mutated")
	}
}

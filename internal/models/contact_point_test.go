package models

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nopaddleboat/crocoddyl/internal/contact"
)

func TestContactPointDims(t *testing.T) {
	m := NewContactPoint(mgl64.Vec3{}, contact.Local, [2]float64{})
	if m.State().NX() != 6 || m.State().NDX() != 6 {
		t.Fatalf("state dims (%d, %d), want (6, 6)", m.State().NX(), m.State().NDX())
	}
	if m.NU() != 3 {
		t.Fatalf("NU() = %d, want 3", m.NU())
	}
	if NewContactPointTerminal(mgl64.Vec3{}).NU() != 0 {
		t.Fatal("terminal stage must be control free")
	}
}

func TestContactPointDynamics(t *testing.T) {
	m := NewContactPoint(mgl64.Vec3{}, contact.Local, [2]float64{})
	m.Mass = 2
	m.Dt = 0.1
	d := m.CreateData()

	m.Calc(d, []float64{1, 2, 3, 0.5, -1, 0}, []float64{2, 0, -4})

	want := []float64{1.05, 1.9, 3, 0.6, -1, -0.2}
	for i := range want {
		if math.Abs(d.Xnext[i]-want[i]) > 1e-12 {
			t.Fatalf("Xnext = %v, want %v", d.Xnext, want)
		}
	}
}

func TestContactPointCostVanishesAtRestOnReference(t *testing.T) {
	ref := mgl64.Vec3{0.3, -0.2, 0.1}
	m := NewContactPoint(ref, contact.Local, [2]float64{10, 4})
	d := m.CreateData()

	m.Calc(d, []float64{0.3, -0.2, 0.1, 0, 0, 0}, []float64{0, 0, 0})
	if d.Cost != 0 {
		t.Fatalf("cost at rest on the reference = %v, want 0", d.Cost)
	}
}

func TestContactPointDriftCost(t *testing.T) {
	m := NewContactPoint(mgl64.Vec3{}, contact.Local, [2]float64{2, 0})
	m.Dt = 0.1
	m.DriftWeight = 1
	m.CtrlWeight = 0
	d := m.CreateData()

	// One unit off the reference along x, so the drift is the Baumgarte
	// position correction 2*dp.
	m.Calc(d, []float64{1, 0, 0, 0, 0, 0}, []float64{0, 0, 0})
	if math.Abs(d.Cost-0.2) > 1e-12 {
		t.Fatalf("drift cost = %v, want 0.2", d.Cost)
	}

	// A force that cancels the correction zeroes the drift.
	m.Calc(d, []float64{1, 0, 0, 0, 0, 0}, []float64{-2, 0, 0})
	if math.Abs(d.Cost) > 1e-12 {
		t.Fatalf("canceled drift cost = %v, want 0", d.Cost)
	}
}

func TestContactPointTerminal(t *testing.T) {
	m := NewContactPointTerminal(mgl64.Vec3{0, 0, 0.2})
	d := m.CreateData()

	x := []float64{0.5, 0, 0.2, 0, 0, 1}
	m.Calc(d, x, nil)

	// 0.5 * 100 * (|dp|^2 + |v|^2) with dp = (0.5, 0, 0) and v = (0, 0, 1).
	if math.Abs(d.Cost-62.5) > 1e-12 {
		t.Fatalf("terminal cost = %v, want 62.5", d.Cost)
	}
	for i := range x {
		if d.Xnext[i] != x[i] {
			t.Fatal("terminal stage must hold the state")
		}
	}
}

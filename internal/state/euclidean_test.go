package state

import (
	"math"
	"testing"
)

func TestVectorDims(t *testing.T) {
	v := NewVector(4)
	if v.NX() != 4 || v.NDX() != 4 {
		t.Errorf("expected nx=ndx=4, got %d/%d", v.NX(), v.NDX())
	}
	if len(v.Zero()) != 4 {
		t.Errorf("zero should have 4 entries")
	}
	if len(v.Rand()) != 4 {
		t.Errorf("rand should have 4 entries")
	}
}

func TestDiffIntegrateRoundTrip(t *testing.T) {
	v := NewVector(3)
	x0 := []float64{1, -2, 0.5}
	x1 := []float64{0, 3, -1}

	dx := v.Diff(x0, x1)
	back := v.Integrate(x0, dx)
	for i := range back {
		if math.Abs(back[i]-x1[i]) > 1e-12 {
			t.Errorf("roundtrip mismatch at %d: %f vs %f", i, back[i], x1[i])
		}
	}
}

func TestJacobians(t *testing.T) {
	v := NewVector(2)
	x := []float64{1, 2}
	dx := []float64{0.1, -0.2}

	jFirst, jSecond := v.JDiff(x, x)
	for i := 0; i < 2; i++ {
		if jFirst.At(i, i) != -1 {
			t.Errorf("Jdiff first should be -I")
		}
		if jSecond.At(i, i) != 1 {
			t.Errorf("Jdiff second should be I")
		}
	}

	jx, jdx := v.JIntegrate(x, dx)
	for i := 0; i < 2; i++ {
		if jx.At(i, i) != 1 || jdx.At(i, i) != 1 {
			t.Errorf("Jintegrate blocks should be I")
		}
	}
}

package core

import (
	"math"
	"testing"

	"github.com/nopaddleboat/crocoddyl/internal/state"
)

// doubler is a scalar stage x' = 2x + u with cost |x| + |u|, simple enough
// to check rollouts and cost accumulation by hand.
type doubler struct {
	st       *state.Vector
	terminal bool
}

func newDoubler(terminal bool) *doubler {
	return &doubler{st: state.NewVector(1), terminal: terminal}
}

func (m *doubler) State() state.Manifold { return m.st }

func (m *doubler) NU() int {
	if m.terminal {
		return 0
	}
	return 1
}

func (m *doubler) CreateData() *ActionData {
	return NewActionData(1, m.NU())
}

func (m *doubler) Calc(d *ActionData, x, u []float64) {
	if m.terminal || u == nil {
		d.Xnext = append(d.Xnext[:0], x...)
		d.Cost = math.Abs(x[0])
		return
	}
	d.Xnext = append(d.Xnext[:0], 2*x[0]+u[0])
	d.Cost = math.Abs(x[0]) + math.Abs(u[0])
}

func (m *doubler) CalcDiff(d *ActionData, x, u []float64) {
	m.Calc(d, x, u)
	d.Lx.SetVec(0, math.Copysign(1, x[0]))
	d.Lxx.Set(0, 0, 0)
	d.Fx.Set(0, 0, 2)
	if m.terminal || u == nil {
		d.Fx.Set(0, 0, 1)
		return
	}
	d.Lu.SetVec(0, math.Copysign(1, u[0]))
	d.Luu.Set(0, 0, 0)
	d.Fu.Set(0, 0, 1)
}

func newTestProblem(horizon int) *ShootingProblem {
	running := make([]ActionModel, horizon)
	for t := range running {
		running[t] = newDoubler(false)
	}
	return NewShootingProblem([]float64{1}, running, newDoubler(true))
}

func TestProblemHorizon(t *testing.T) {
	p := newTestProblem(5)
	if p.T() != 5 {
		t.Fatalf("T() = %d, want 5", p.T())
	}
	if len(p.RunningDatas) != 5 {
		t.Fatalf("len(RunningDatas) = %d, want 5", len(p.RunningDatas))
	}
	if p.TerminalData == nil {
		t.Fatal("terminal data not allocated")
	}
}

func TestProblemRollout(t *testing.T) {
	p := newTestProblem(3)
	us := [][]float64{{1}, {1}, {1}}

	xs := p.Rollout(us)
	if len(xs) != 4 {
		t.Fatalf("rollout length %d, want 4", len(xs))
	}

	// x0=1, then 2x+1 each step: 3, 7, 15.
	want := []float64{1, 3, 7, 15}
	for i, w := range want {
		if xs[i][0] != w {
			t.Errorf("xs[%d] = %v, want %v", i, xs[i][0], w)
		}
	}
}

func TestProblemCalcAccumulatesCost(t *testing.T) {
	p := newTestProblem(2)
	us := [][]float64{{1}, {-1}}
	xs := p.Rollout(us)

	// Stage costs |x|+|u|: (1+1) + (3+1), terminal |x| = 5.
	cost := p.Calc(xs, us)
	if cost != 11 {
		t.Fatalf("cost = %v, want 11", cost)
	}
}

func TestProblemCalcDiffMatchesCalc(t *testing.T) {
	p := newTestProblem(4)
	us := [][]float64{{0.3}, {-0.5}, {0.1}, {0.2}}
	xs := p.Rollout(us)

	c1 := p.Calc(xs, us)
	c2 := p.CalcDiff(xs, us)
	if math.Abs(c1-c2) > 1e-15 {
		t.Fatalf("CalcDiff cost %v differs from Calc cost %v", c2, c1)
	}
}

func TestProblemCalcDiffParallel(t *testing.T) {
	serial := newTestProblem(8)
	parallel := newTestProblem(8)
	parallel.SetNumThreads(4)

	us := make([][]float64, 8)
	for t := range us {
		us[t] = []float64{0.1 * float64(t+1)}
	}
	xs := serial.Rollout(us)

	cs := serial.CalcDiff(xs, us)
	cp := parallel.CalcDiff(xs, us)
	if cs != cp {
		t.Fatalf("parallel cost %v differs from serial %v", cp, cs)
	}
	for i := range serial.RunningDatas {
		if serial.RunningDatas[i].Fx.At(0, 0) != parallel.RunningDatas[i].Fx.At(0, 0) {
			t.Errorf("stage %d derivatives diverge", i)
		}
	}
}

func TestProblemSetNumThreadsClamps(t *testing.T) {
	p := newTestProblem(1)
	p.SetNumThreads(0)
	us := [][]float64{{1}}
	xs := p.Rollout(us)
	// Must still evaluate serially without panicking.
	_ = p.CalcDiff(xs, us)
}

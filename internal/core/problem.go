package core

import "sync"

// ShootingProblem is an ordered sequence of running action models over a
// fixed horizon plus a terminal model. It owns one ActionData per stage;
// every evaluation overwrites those buffers in place.
type ShootingProblem struct {
	x0       []float64
	running  []ActionModel
	terminal ActionModel

	RunningDatas []*ActionData
	TerminalData *ActionData

	threads int
}

func NewShootingProblem(x0 []float64, running []ActionModel, terminal ActionModel) *ShootingProblem {
	p := &ShootingProblem{
		x0:       x0,
		running:  running,
		terminal: terminal,
		threads:  1,
	}
	p.RunningDatas = make([]*ActionData, len(running))
	for t, m := range running {
		p.RunningDatas[t] = m.CreateData()
	}
	p.TerminalData = terminal.CreateData()
	return p
}

// T is the horizon length (number of running stages).
func (p *ShootingProblem) T() int { return len(p.running) }

func (p *ShootingProblem) InitialState() []float64 { return p.x0 }
func (p *ShootingProblem) Running() []ActionModel  { return p.running }
func (p *ShootingProblem) Terminal() ActionModel   { return p.terminal }

// SetNumThreads enables fan-out of per-stage derivative evaluations. Stages
// read only their own state/control and write only their own ActionData, so
// they can run concurrently; aggregation happens after the barrier.
func (p *ShootingProblem) SetNumThreads(n int) {
	if n < 1 {
		n = 1
	}
	p.threads = n
}

// Calc evaluates dynamics and cost at every stage of the candidate
// trajectory and returns the total cost.
func (p *ShootingProblem) Calc(xs, us [][]float64) float64 {
	cost := 0.0
	for t, m := range p.running {
		m.Calc(p.RunningDatas[t], xs[t], us[t])
		cost += p.RunningDatas[t].Cost
	}
	p.terminal.Calc(p.TerminalData, xs[p.T()], nil)
	return cost + p.TerminalData.Cost
}

// CalcDiff evaluates dynamics, cost and all first/second order derivatives
// along the candidate trajectory and returns the total cost.
func (p *ShootingProblem) CalcDiff(xs, us [][]float64) float64 {
	if p.threads > 1 {
		p.calcDiffParallel(xs, us)
	} else {
		for t, m := range p.running {
			m.CalcDiff(p.RunningDatas[t], xs[t], us[t])
		}
		p.terminal.CalcDiff(p.TerminalData, xs[p.T()], nil)
	}

	cost := 0.0
	for _, d := range p.RunningDatas {
		cost += d.Cost
	}
	return cost + p.TerminalData.Cost
}

func (p *ShootingProblem) calcDiffParallel(xs, us [][]float64) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.threads)
	for t := range p.running {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			sem <- struct{}{}
			p.running[t].CalcDiff(p.RunningDatas[t], xs[t], us[t])
			<-sem
		}(t)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		sem <- struct{}{}
		p.terminal.CalcDiff(p.TerminalData, xs[p.T()], nil)
		<-sem
	}()
	wg.Wait()
}

// Rollout integrates the controls from the initial state and returns the
// resulting (feasible) state sequence of length T+1.
func (p *ShootingProblem) Rollout(us [][]float64) [][]float64 {
	xs := make([][]float64, p.T()+1)
	xs[0] = append([]float64(nil), p.x0...)
	for t, m := range p.running {
		m.Calc(p.RunningDatas[t], xs[t], us[t])
		xs[t+1] = append([]float64(nil), p.RunningDatas[t].Xnext...)
	}
	return xs
}

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/nopaddleboat/crocoddyl/internal/solver"
)

type statsMsg solver.IterationStats

type doneMsg struct {
	converged bool
}

// Monitor is a live view of a running solve: it implements solver.Callback
// and feeds each iteration into a bubbletea program showing the cost curve
// and the current regularization/step state.
type Monitor struct {
	prog *tea.Program
}

func NewMonitor(problem string, theme Theme) *Monitor {
	return &Monitor{prog: tea.NewProgram(newModel(problem, theme))}
}

func (m *Monitor) OnIteration(st solver.IterationStats) {
	m.prog.Send(statsMsg(st))
}

// Finish tells the view the solve ended; the program keeps running until the
// user quits so the final plot stays on screen.
func (m *Monitor) Finish(converged bool) {
	m.prog.Send(doneMsg{converged: converged})
}

// Run blocks until the user quits the view.
func (m *Monitor) Run() error {
	_, err := m.prog.Run()
	return err
}

type model struct {
	problem   string
	sty       styles
	history   []solver.IterationStats
	costs     []float64
	done      bool
	converged bool
	width     int
}

func newModel(problem string, theme Theme) model {
	return model{problem: problem, sty: newStyles(theme), width: 80}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case statsMsg:
		m.history = append(m.history, solver.IterationStats(msg))
		m.costs = append(m.costs, msg.Cost)
		return m, nil
	case doneMsg:
		m.done = true
		m.converged = msg.converged
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.sty.accent.Render("trajopt") + m.sty.muted.Render(" · "+m.problem) + "\n\n")

	if len(m.history) == 0 {
		b.WriteString(m.sty.muted.Render("waiting for first iteration...") + "\n")
		return b.String()
	}

	last := m.history[len(m.history)-1]
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		m.sty.muted.Render("iter"), m.sty.text.Render(fmt.Sprintf("%d", last.Iteration)),
		m.sty.muted.Render("cost"), m.sty.text.Render(fmt.Sprintf("%.6e", last.Cost)),
		m.sty.muted.Render("stop"), m.sty.text.Render(fmt.Sprintf("%.3e", last.Stop)),
		m.sty.muted.Render("step"), m.sty.text.Render(fmt.Sprintf("%.4f", last.StepLength))))
	b.WriteString(fmt.Sprintf("%s %s\n\n",
		m.sty.muted.Render("xreg"), m.sty.text.Render(fmt.Sprintf("%.1e", last.Xreg))))

	if len(m.costs) > 1 {
		w := m.width - 12
		if w > 70 {
			w = 70
		}
		if w > 10 {
			b.WriteString(asciigraph.Plot(m.costs,
				asciigraph.Height(10),
				asciigraph.Width(w),
				asciigraph.Caption("cost")) + "\n\n")
		}
	}

	if m.done {
		if m.converged {
			b.WriteString(m.sty.success.Render("converged") + "\n")
		} else {
			b.WriteString(m.sty.warning.Render("stopped without convergence") + "\n")
		}
	}
	b.WriteString(m.sty.muted.Render("q to quit") + "\n")
	return b.String()
}

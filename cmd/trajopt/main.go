package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/nopaddleboat/crocoddyl/internal/config"
	"github.com/nopaddleboat/crocoddyl/internal/contact"
	"github.com/nopaddleboat/crocoddyl/internal/core"
	"github.com/nopaddleboat/crocoddyl/internal/integrators"
	"github.com/nopaddleboat/crocoddyl/internal/metrics"
	"github.com/nopaddleboat/crocoddyl/internal/models"
	"github.com/nopaddleboat/crocoddyl/internal/solver"
	"github.com/nopaddleboat/crocoddyl/internal/store"
	"github.com/nopaddleboat/crocoddyl/internal/tui"
)

var (
	configFile string
	preset     string
	horizon    int
	dt         float64
	maxiter    int
	threads    int
	verbose    bool
	live       bool
	theme      string
	exportPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajopt",
		Short: "shooting-method trajectory optimization",
	}

	solveCmd := &cobra.Command{
		Use:   "solve [problem]",
		Short: "solve a demo optimal-control problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "named preset")
	solveCmd.Flags().IntVar(&horizon, "horizon", 0, "horizon length")
	solveCmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	solveCmd.Flags().IntVar(&maxiter, "maxiter", 0, "iteration budget")
	solveCmd.Flags().IntVar(&threads, "threads", 0, "per-stage evaluation threads")
	solveCmd.Flags().BoolVar(&verbose, "verbose", false, "print every iteration")
	solveCmd.Flags().BoolVar(&live, "live", false, "live convergence view")
	solveCmd.Flags().StringVar(&theme, "theme", "default", "live view color theme")
	solveCmd.Flags().StringVar(&exportPath, "export", "", "write the solution to a json file")
	rootCmd.AddCommand(solveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list named presets",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets(args[0]) {
				fmt.Println(name)
			}
		},
	}
	rootCmd.AddCommand(presetsCmd)

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}
	rootCmd.AddCommand(initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(problem string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(problem, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (have: %s)",
				preset, problem, strings.Join(config.ListPresets(problem), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}
	cfg.Problem.Name = problem

	if horizon > 0 {
		cfg.Problem.Horizon = horizon
	}
	if dt > 0 {
		cfg.Problem.Dt = dt
	}
	if maxiter > 0 {
		cfg.Solver.MaxIter = maxiter
	}
	if threads > 0 {
		cfg.Solver.Threads = threads
	}
	return cfg, nil
}

func buildProblem(cfg *config.Config) (*core.ShootingProblem, error) {
	p := cfg.Problem
	switch p.Name {
	case "unicycle":
		running := make([]core.ActionModel, p.Horizon)
		for t := range running {
			m := models.NewUnicycle()
			m.Dt = p.Dt
			m.StateWeight = p.StateWeight
			m.CtrlWeight = p.CtrlWeight
			running[t] = m
		}
		terminal := models.NewUnicycleTerminal()
		terminal.StateWeight = p.TerminalWeight
		return core.NewShootingProblem(p.InitState, running, terminal), nil
	case "lq":
		nx := len(p.InitState)
		running := make([]core.ActionModel, p.Horizon)
		for t := range running {
			running[t] = models.SingleIntegrator(nx, p.Dt, p.StateWeight, p.CtrlWeight)
		}
		terminal := models.NewLQTerminal(models.Diagonal(nx, p.TerminalWeight))
		return core.NewShootingProblem(p.InitState, running, terminal), nil
	case "pendulum":
		running := make([]core.ActionModel, p.Horizon)
		for t := range running {
			m := models.NewPendulum(integrators.NewRK4())
			m.Dt = p.Dt
			m.AngleWeight = p.StateWeight
			m.CtrlWeight = p.CtrlWeight
			running[t] = core.NewNumDiff(m, 0)
		}
		terminal := models.NewPendulumTerminal()
		terminal.AngleWeight = p.TerminalWeight
		return core.NewShootingProblem(p.InitState, running, core.NewNumDiff(terminal, 0)), nil
	case "particle":
		conv, err := contact.ParseReference(cfg.Contact.Convention)
		if err != nil {
			return nil, err
		}
		if len(p.InitState) != 6 {
			return nil, fmt.Errorf("particle needs a 6d initial state, got %d: %w",
				len(p.InitState), core.ErrDimension)
		}
		if len(cfg.Contact.Reference) != 3 {
			return nil, fmt.Errorf("contact reference needs 3 components, got %d: %w",
				len(cfg.Contact.Reference), core.ErrDimension)
		}
		ref := mgl64.Vec3{cfg.Contact.Reference[0], cfg.Contact.Reference[1], cfg.Contact.Reference[2]}
		var gains [2]float64
		copy(gains[:], cfg.Contact.Gains)
		running := make([]core.ActionModel, p.Horizon)
		for t := range running {
			m := models.NewContactPoint(ref, conv, gains)
			m.Dt = p.Dt
			m.DriftWeight = p.StateWeight
			m.CtrlWeight = p.CtrlWeight
			running[t] = core.NewNumDiff(m, 0)
		}
		terminal := models.NewContactPointTerminal(ref)
		terminal.DriftWeight = p.TerminalWeight
		return core.NewShootingProblem(p.InitState, running, core.NewNumDiff(terminal, 0)), nil
	default:
		return nil, fmt.Errorf("unknown problem %q", p.Name)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args[0])
	if err != nil {
		return err
	}
	problem, err := buildProblem(cfg)
	if err != nil {
		return err
	}
	problem.SetNumThreads(cfg.Solver.Threads)

	ddp := solver.NewDDP(problem)
	ddp.SetThresholds(cfg.Solver.ThAcceptStep, cfg.Solver.ThStop)
	ddp.SetRegularizationBounds(cfg.Solver.RegMin, cfg.Solver.RegMax, cfg.Solver.RegFactor)

	recorder := &solver.Recorder{}
	callbacks := []solver.Callback{recorder}
	if verbose || cfg.Solver.Verbose {
		callbacks = append(callbacks, solver.NewVerbose(os.Stdout))
	}

	if live {
		return solveLive(ddp, callbacks, cfg)
	}

	ddp.SetCallbacks(callbacks)
	xs, us, converged, err := ddp.Solve(nil, nil, cfg.Solver.MaxIter, false, cfg.Solver.RegInit)
	if err != nil {
		return err
	}
	printSummary(cfg, recorder, xs, us, converged)
	if exportPath != "" {
		return exportSolution(exportPath, cfg, recorder, ddp, xs, us, converged)
	}
	return nil
}

func trajectoryMetrics(bound float64, xs, us [][]float64) map[string]float64 {
	if bound <= 0 {
		bound = config.DefaultStateBound
	}
	return metrics.Evaluate([]metrics.Metric{
		metrics.NewControlEffort(),
		metrics.NewSmoothness(),
		metrics.NewStability(bound),
	}, xs, us)
}

func exportSolution(path string, cfg *config.Config, recorder *solver.Recorder, ddp *solver.DDP, xs, us [][]float64, converged bool) error {
	return store.ExportJSON(path, &store.Solution{
		Problem:    cfg.Problem.Name,
		Horizon:    cfg.Problem.Horizon,
		Dt:         cfg.Problem.Dt,
		Iterations: len(recorder.History),
		Converged:  converged,
		Cost:       ddp.Cost(),
		States:     xs,
		Controls:   us,
		Metrics:    trajectoryMetrics(cfg.Problem.StateBound, xs, us),
	})
}

func solveLive(ddp *solver.DDP, callbacks []solver.Callback, cfg *config.Config) error {
	monitor := tui.NewMonitor(cfg.Problem.Name, tui.GetTheme(theme))
	ddp.SetCallbacks(append(callbacks, monitor))

	errc := make(chan error, 1)
	go func() {
		_, _, converged, err := ddp.Solve(nil, nil, cfg.Solver.MaxIter, false, cfg.Solver.RegInit)
		monitor.Finish(converged)
		errc <- err
	}()

	if err := monitor.Run(); err != nil {
		return err
	}
	return <-errc
}

func printSummary(cfg *config.Config, recorder *solver.Recorder, xs, us [][]float64, converged bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "iter\tcost\tstop\tstep\txreg")
	for _, st := range recorder.History {
		fmt.Fprintf(w, "%d\t%.6e\t%.3e\t%.4f\t%.1e\n",
			st.Iteration, st.Cost, st.Stop, st.StepLength, st.Xreg)
	}
	w.Flush()

	if len(recorder.History) > 1 {
		costs := make([]float64, len(recorder.History))
		for i, st := range recorder.History {
			costs[i] = st.Cost
		}
		fmt.Println(asciigraph.Plot(costs,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("cost per iteration")))
	}

	for name, value := range trajectoryMetrics(cfg.Problem.StateBound, xs, us) {
		fmt.Printf("%s: %.4f\n", name, value)
	}

	status := "no convergence"
	if converged {
		status = "converged"
	}
	fmt.Printf("%s, final state %v\n", status, xs[len(xs)-1])
}

package config

func preset(problem ProblemConfig, maxiter int) *Config {
	cfg := DefaultConfig()
	cfg.Problem = problem
	cfg.Solver.MaxIter = maxiter
	return cfg
}

func contactPreset(problem ProblemConfig, ct ContactConfig, maxiter int) *Config {
	cfg := preset(problem, maxiter)
	cfg.Contact = ct
	return cfg
}

var Presets = map[string]map[string]*Config{
	"unicycle": {
		"near": preset(ProblemConfig{
			Name: "unicycle", Horizon: 20, Dt: 0.1,
			InitState:   []float64{1, 0, 0},
			StateWeight: 10, CtrlWeight: 1, TerminalWeight: 10,
		}, 100),
		"far": preset(ProblemConfig{
			Name: "unicycle", Horizon: 30, Dt: 0.1,
			InitState:   []float64{-2, 1, 1.5},
			StateWeight: 10, CtrlWeight: 1, TerminalWeight: 10,
		}, 200),
	},
	"pendulum": {
		"swingup": preset(ProblemConfig{
			Name: "pendulum", Horizon: 60, Dt: 0.05,
			InitState:   []float64{3.14159265358979, 0},
			StateWeight: 1, CtrlWeight: 1e-3, TerminalWeight: 100,
		}, 300),
	},
	"particle": {
		"touchdown": contactPreset(ProblemConfig{
			Name: "particle", Horizon: 40, Dt: 0.05,
			InitState:   []float64{0.5, -0.3, 1.0, 0, 0, 0},
			StateWeight: 5, CtrlWeight: 0.01, TerminalWeight: 50,
		}, ContactConfig{
			Reference:  []float64{0, 0, 0.2},
			Gains:      []float64{10, 4},
			Convention: "local",
		}, 100),
	},
	"lq": {
		"integrator": preset(ProblemConfig{
			Name: "lq", Horizon: 10, Dt: 0.1,
			InitState:   []float64{1, -1, 0.5},
			StateWeight: 1, CtrlWeight: 0.1, TerminalWeight: 1,
		}, 50),
	},
}

// GetPreset returns a copy of the named preset, so callers can overlay flag
// overrides without corrupting the shared table.
func GetPreset(problem, name string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[name]
	if !ok {
		return nil
	}
	out := *cfg
	out.Problem.InitState = append([]float64(nil), cfg.Problem.InitState...)
	out.Contact.Reference = append([]float64(nil), cfg.Contact.Reference...)
	out.Contact.Gains = append([]float64(nil), cfg.Contact.Gains...)
	return &out
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	return names
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxIter      = 100
	DefaultThStop       = 1e-9
	DefaultThAcceptStep = 0.1
	DefaultRegInit      = 1e-9
	DefaultRegMin       = 1e-9
	DefaultRegMax       = 1e9
	DefaultRegFactor    = 10.0
	DefaultHorizon      = 20
	DefaultDt           = 0.1
	DefaultStateBound   = 10.0
)

type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Problem ProblemConfig `yaml:"problem"`
	Contact ContactConfig `yaml:"contact"`
}

type SolverConfig struct {
	MaxIter      int     `yaml:"maxiter"`
	ThStop       float64 `yaml:"th_stop"`
	ThAcceptStep float64 `yaml:"th_acceptstep"`
	RegInit      float64 `yaml:"reg_init"`
	RegMin       float64 `yaml:"reg_min"`
	RegMax       float64 `yaml:"reg_max"`
	RegFactor    float64 `yaml:"reg_factor"`
	Threads      int     `yaml:"threads"`
	Verbose      bool    `yaml:"verbose"`
}

type ProblemConfig struct {
	Name           string    `yaml:"name"`
	Horizon        int       `yaml:"horizon"`
	Dt             float64   `yaml:"dt"`
	InitState      []float64 `yaml:"init_state"`
	StateWeight    float64   `yaml:"state_weight"`
	CtrlWeight     float64   `yaml:"ctrl_weight"`
	TerminalWeight float64   `yaml:"terminal_weight"`

	// StateBound is the componentwise bound the stability metric checks the
	// solved states against; non-positive values select a default.
	StateBound float64 `yaml:"state_bound"`
}

type ContactConfig struct {
	Frame      int       `yaml:"frame"`
	Reference  []float64 `yaml:"reference"`
	Gains      []float64 `yaml:"gains"`
	Convention string    `yaml:"convention"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			MaxIter:      DefaultMaxIter,
			ThStop:       DefaultThStop,
			ThAcceptStep: DefaultThAcceptStep,
			RegInit:      DefaultRegInit,
			RegMin:       DefaultRegMin,
			RegMax:       DefaultRegMax,
			RegFactor:    DefaultRegFactor,
			Threads:      1,
		},
		Problem: ProblemConfig{
			Name:           "unicycle",
			Horizon:        DefaultHorizon,
			Dt:             DefaultDt,
			InitState:      []float64{1, 0, 0},
			StateWeight:    10,
			CtrlWeight:     1,
			TerminalWeight: 10,
			StateBound:     DefaultStateBound,
		},
		Contact: ContactConfig{
			Reference:  []float64{0, 0, 0},
			Gains:      []float64{0, 0},
			Convention: "local",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

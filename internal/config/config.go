package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/linstab/internal/integrators"
	"github.com/san-kum/linstab/internal/lqr"
	"github.com/san-kum/linstab/internal/model"
	"github.com/san-kum/linstab/internal/pipeline"
	"github.com/san-kum/linstab/internal/sim"
)

const (
	DefaultWorkers = 1
	DefaultRadius  = 0.01
)

// ErrInvalidConfig indicates a configuration that cannot be used.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Dynamics   ModelConfig      `yaml:"model"`
	LQR        LQRConfig        `yaml:"lqr"`
	Simulation SimulationConfig `yaml:"simulation"`
	Workers    int              `yaml:"workers"`
}

type ModelConfig struct {
	X1Dot  string              `yaml:"x1_dot"`
	X2Dot  string              `yaml:"x2_dot"`
	Params map[string]Rational `yaml:"params,omitempty"`
}

type LQRConfig struct {
	StateWeight [][]float64 `yaml:"state_weight"`
	InputWeight [][]float64 `yaml:"input_weight"`
}

// SimulationConfig drives the closed-loop check around the selected
// equilibrium. Zero fields take their defaults.
type SimulationConfig struct {
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Radius     float64 `yaml:"radius"`
	Integrator string  `yaml:"integrator"`
}

// Rational is an exact coefficient. YAML accepts integers, decimals and
// fractions such as "1/3".
type Rational struct {
	r *big.Rat
}

func NewRational(num, den int64) Rational {
	return Rational{r: big.NewRat(num, den)}
}

func (q Rational) Rat() *big.Rat {
	if q.r == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(q.r)
}

func (q Rational) String() string { return q.Rat().RatString() }

func (q *Rational) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: coefficient must be a scalar", ErrInvalidConfig, node.Line)
	}
	r, ok := new(big.Rat).SetString(node.Value)
	if !ok {
		return fmt.Errorf("%w: line %d: bad coefficient %q", ErrInvalidConfig, node.Line, node.Value)
	}
	q.r = r
	return nil
}

func (q Rational) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: q.String()}, nil
}

func DefaultConfig() *Config {
	params := make(map[string]Rational)
	for name, v := range model.ReferenceParams() {
		params[name] = Rational{r: v}
	}
	return &Config{
		Dynamics: ModelConfig{
			X1Dot:  model.ReferenceX1Dot,
			X2Dot:  model.ReferenceX2Dot,
			Params: params,
		},
		LQR: LQRConfig{
			StateWeight: [][]float64{{1, 0}, {0, 1}},
			InputWeight: [][]float64{{1}},
		},
		Simulation: SimulationConfig{
			Dt:         sim.DefaultConfig().Dt,
			Duration:   sim.DefaultConfig().Duration,
			Radius:     DefaultRadius,
			Integrator: "rk4",
		},
		Workers: DefaultWorkers,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// Decoding merges into existing maps; reference coefficients are only
	// restored when the reference dynamics are kept.
	defParams := cfg.Dynamics.Params
	cfg.Dynamics.Params = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Dynamics.Params == nil && cfg.Dynamics.X1Dot == model.ReferenceX1Dot && cfg.Dynamics.X2Dot == model.ReferenceX2Dot {
		cfg.Dynamics.Params = defParams
	}
	if err := cfg.Validate(); err != nil {
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

// Validate checks everything that does not need parsing the dynamics.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Dynamics.X1Dot == "" || c.Dynamics.X2Dot == "" {
		return fmt.Errorf("%w: both x1_dot and x2_dot are required", ErrInvalidConfig)
	}
	if _, err := dense("state_weight", c.LQR.StateWeight, 2); err != nil {
		return err
	}
	if _, err := dense("input_weight", c.LQR.InputWeight, 1); err != nil {
		return err
	}
	s := c.Simulation
	if s.Dt < 0 || s.Duration < 0 || s.Radius < 0 {
		return fmt.Errorf("%w: simulation dt, duration and radius must be non-negative", ErrInvalidConfig)
	}
	if integrators.ByName(s.Integrator) == nil {
		return fmt.Errorf("%w: unknown integrator %q", ErrInvalidConfig, s.Integrator)
	}
	return nil
}

// Model builds the dynamics described by the configuration.
func (c *Config) Model() (*model.Model, error) {
	params := make(map[string]*big.Rat, len(c.Dynamics.Params))
	for name, v := range c.Dynamics.Params {
		params[name] = v.Rat()
	}
	return model.New(c.Dynamics.X1Dot, c.Dynamics.X2Dot, params)
}

// Weights converts the LQR section. Empty matrices fall back to identity.
func (c *Config) Weights() (lqr.Weights, error) {
	w := lqr.DefaultWeights(2, 1)
	q, err := dense("state_weight", c.LQR.StateWeight, 2)
	if err != nil {
		return lqr.Weights{}, err
	}
	r, err := dense("input_weight", c.LQR.InputWeight, 1)
	if err != nil {
		return lqr.Weights{}, err
	}
	if q != nil {
		w.Q = q
	}
	if r != nil {
		w.R = r
	}
	return w, nil
}

// Pipeline returns the run configuration for the analysis.
func (c *Config) Pipeline(logger *slog.Logger) (pipeline.Config, error) {
	w, err := c.Weights()
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{Weights: w, Workers: c.Workers, Logger: logger}, nil
}

// Simulator returns the run settings, the perturbation radius and a factory
// for fresh integrators.
func (c *Config) Simulator() (sim.Config, float64, func() integrators.Integrator) {
	cfg := sim.DefaultConfig()
	if c.Simulation.Dt > 0 {
		cfg.Dt = c.Simulation.Dt
	}
	if c.Simulation.Duration > 0 {
		cfg.Duration = c.Simulation.Duration
	}
	radius := DefaultRadius
	if c.Simulation.Radius > 0 {
		radius = c.Simulation.Radius
	}
	name := c.Simulation.Integrator
	return cfg, radius, func() integrators.Integrator { return integrators.ByName(name) }
}

func dense(name string, rows [][]float64, n int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) != n {
		return nil, fmt.Errorf("%w: %s must be %dx%d", ErrInvalidConfig, name, n, n)
	}
	data := make([]float64, 0, n*n)
	for _, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: %s must be %dx%d", ErrInvalidConfig, name, n, n)
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Dynamics.Params = make(map[string]Rational, len(c.Dynamics.Params))
	for k, v := range c.Dynamics.Params {
		out.Dynamics.Params[k] = Rational{r: v.Rat()}
	}
	out.LQR.StateWeight = cloneRows(c.LQR.StateWeight)
	out.LQR.InputWeight = cloneRows(c.LQR.InputWeight)
	return &out
}

func cloneRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

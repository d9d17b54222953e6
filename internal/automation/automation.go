package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/blocksim/internal/config"
	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/experiment"
	"github.com/san-kum/blocksim/internal/sim"
)

// Scenario is a scripted batch of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a run file and overrides the fields
// that are set. Scale entries multiply a block property across the body.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Dt         float64            `yaml:"dt"`
	Ticks      int                `yaml:"ticks"`
	Scale      map[string]float64 `yaml:"scale"`
	SaveAs     string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Resolve builds the run configuration for the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.Dt = s.Dt
	}
	if s.Ticks != 0 {
		cfg.Ticks = s.Ticks
	}
	for param, factor := range s.Scale {
		if err := Apply(cfg, param, factor); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// ScenarioRun pairs a finished step with its experiment.
type ScenarioRun struct {
	Experiment *experiment.Experiment
	Result     *dynamo.Result
}

// RunScenario runs every step in parallel, at most limit at a time.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, limit int) ([]ScenarioRun, error) {
	cfgs := make([]*config.Config, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfgs[i] = cfg
	}
	return runAll(ctx, cfgs, registry, limit)
}

func runAll(ctx context.Context, cfgs []*config.Config, registry *experiment.Registry, limit int) ([]ScenarioRun, error) {
	exps := make([]*experiment.Experiment, len(cfgs))
	jobs := make([]sim.Job, len(cfgs))
	for i, cfg := range cfgs {
		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		exps[i] = exp
		jobs[i] = exp.Job(registry)
	}

	ens := sim.NewEnsemble(jobs...)
	ens.SetLimit(limit)
	results, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]ScenarioRun, len(results))
	for i, res := range results {
		runs[i] = ScenarioRun{Experiment: exps[i], Result: res}
	}
	return runs, nil
}

// Apply sets or scales one named parameter of cfg. "dt" and "ticks" are set
// to value; "thrust", "density" and "drag" multiply every block's property.
func Apply(cfg *config.Config, param string, value float64) error {
	scale := func(fn func(b *config.BlockConfig)) {
		fn(&cfg.Body.Template)
		for i := range cfg.Body.Overrides {
			fn(&cfg.Body.Overrides[i])
		}
		for i := range cfg.Body.Blocks {
			fn(&cfg.Body.Blocks[i])
		}
	}

	switch param {
	case "dt":
		cfg.Dt = value
	case "ticks":
		cfg.Ticks = int(math.Round(value))
	case "thrust":
		scale(func(b *config.BlockConfig) { b.ThrustForce *= value })
	case "density":
		scale(func(b *config.BlockConfig) { b.Density *= value })
	case "drag":
		scale(func(b *config.BlockConfig) { b.AirResistance *= value })
	default:
		return fmt.Errorf("unknown sweep parameter: %s", param)
	}
	return nil
}

// ParameterSweep varies one parameter of a preset over [Min, Max].
type ParameterSweep struct {
	Preset   string
	Param    string
	Min, Max float64
	Steps    int
}

type SweepResult struct {
	Value   float64
	Final   dynamo.State
	Metrics map[string]float64
}

// Values returns the evenly spaced parameter values of the sweep.
func (s *ParameterSweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vals := make([]float64, s.Steps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, limit int) ([]SweepResult, error) {
	if config.GetPreset(sweep.Preset) == nil {
		return nil, fmt.Errorf("unknown preset: %s", sweep.Preset)
	}

	values := sweep.Values()
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		cfg := config.GetPreset(sweep.Preset)
		if err := Apply(cfg, sweep.Param, v); err != nil {
			return nil, err
		}
		cfg.Name = fmt.Sprintf("%s_%s_%g", sweep.Preset, sweep.Param, v)
		cfgs[i] = cfg
	}

	runs, err := runAll(ctx, cfgs, registry, limit)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, run := range runs {
		results[i] = SweepResult{Value: values[i], Final: run.Result.Final(), Metrics: run.Result.Metrics}
	}
	return results, nil
}

// MonteCarloConfig perturbs a preset's initial pose at random.
type MonteCarloConfig struct {
	Preset string
	// Base, when set, is used instead of the named preset.
	Base *config.Config
	// Position offsets and rotation angles are drawn uniformly from
	// [-Perturbation, Perturbation].
	Perturbation float64
	NumTrials    int
	Seed         int64
	// Bound is the distance past which a trial counts as unstable.
	Bound float64
}

// MonteCarloResult is one trial. A trial whose run failed keeps the last
// state it reached in Final, its error in Err, and is never Stable.
type MonteCarloResult struct {
	TrialID int
	Initial dynamo.State
	Final   dynamo.State
	Stable  bool
	Err     error
}

// RunMonteCarlo runs every trial to completion. Failing trials are counted
// as unstable rather than aborting the batch; only ctx cancellation and
// setup errors are returned.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, limit int) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 0 {
		return nil, fmt.Errorf("trials must not be negative, got %d", cfg.NumTrials)
	}
	if !(cfg.Perturbation >= 0) || math.IsInf(cfg.Perturbation, 0) {
		return nil, fmt.Errorf("perturbation must be finite and non-negative, got %g", cfg.Perturbation)
	}

	base := cfg.Base
	if base == nil {
		if base = config.GetPreset(cfg.Preset); base == nil {
			return nil, fmt.Errorf("unknown preset: %s", cfg.Preset)
		}
	}
	exp, err := experiment.New(base, registry)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	jitter := func() float64 { return (rng.Float64()*2 - 1) * cfg.Perturbation }

	jobs := make([]sim.Job, cfg.NumTrials)
	for i := range jobs {
		x0 := exp.Initial()
		x0.Position = x0.Position.Add(dynamo.Vec3{jitter(), jitter(), jitter()})

		axis := dynamo.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if axis.Len() > 0 {
			half := jitter() / 2
			r := dynamo.PureQuaternion(axis.Normalize().Mul(math.Sin(half)))
			r.W = math.Cos(half)
			x0.Orientation = r.Mul(x0.Orientation)
		}

		job := exp.Job(registry)
		job.Name = fmt.Sprintf("%s_trial%d", base.Name, i)
		job.Initial = x0
		jobs[i] = job
	}

	ens := sim.NewEnsemble(jobs...)
	ens.SetLimit(limit)
	results, errs := ens.RunAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
	}

	out := make([]MonteCarloResult, len(results))
	for i, res := range results {
		final := jobs[i].Initial
		if res != nil {
			final = res.Final()
		}
		out[i] = MonteCarloResult{
			TrialID: i,
			Initial: jobs[i].Initial,
			Final:   final,
			Err:     errs[i],
			Stable:  errs[i] == nil && final.IsValid() && (cfg.Bound <= 0 || final.Position.Len() <= cfg.Bound),
		}
	}
	return out, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

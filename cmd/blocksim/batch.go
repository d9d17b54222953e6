package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/blocksim/internal/automation"
	"github.com/san-kum/blocksim/internal/config"
	"github.com/san-kum/blocksim/internal/experiment"
	"github.com/san-kum/blocksim/internal/optim"
	"github.com/san-kum/blocksim/internal/storage"
)

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger.Info("scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	prog := newProgress(logger)
	runs, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), limit)
	if err != nil {
		return err
	}
	prog.done("scenario completed")

	var st *storage.Store
	if save {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tSTEPS\tFINAL POSITION\tRUN")
	for i, run := range runs {
		runID := "-"
		if st != nil {
			if runID, err = st.Save(runInfo(run.Experiment), run.Result); err != nil {
				return err
			}
		}
		p := run.Result.Final().Position
		fmt.Fprintf(w, "%d\t%s\t%d\t(%.3f, %.3f, %.3f)\t%s\n",
			i+1, run.Experiment.Config().Name, run.Result.StepsTaken, p[0], p[1], p[2], runID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	sweep := &automation.ParameterSweep{
		Preset: args[0],
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Steps:  sweepSteps,
	}

	logger.Info("sweep", "preset", sweep.Preset, "param", sweep.Param, "min", sweep.Min, "max", sweep.Max, "steps", sweep.Steps)
	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry(), limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL POSITION\tDISPLACEMENT\tROTATION\tPEAK TORQUE\n", sweep.Param)
	for _, r := range results {
		p := r.Final.Position
		fmt.Fprintf(w, "%.4g\t(%.3f, %.3f, %.3f)\t%.4g\t%.4g\t%.4g\n",
			r.Value, p[0], p[1], p[2], r.Metrics["displacement"], r.Metrics["rotation"], r.Metrics["peak_torque"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg := &automation.MonteCarloConfig{
		Preset:       args[0],
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
		Bound:        bound,
	}

	prog := newProgress(logger)
	results, err := automation.RunMonteCarlo(ctx, cfg, experiment.NewRegistry(), limit)
	if err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	prog.done("monte carlo completed", "trials", len(results), "stable", stable, "unstable", unstable)

	for _, r := range results {
		if !r.Stable {
			logger.Debug("unstable trial", "trial", r.TrialID, "initial", r.Initial.String(), "err", r.Err)
		}
	}
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	return nil
}

// parseGrid reads "name=v1,v2" flags into parallel name and value slices.
func parseGrid(flags []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(flags))
	ranges := make([][]float64, 0, len(flags))
	for _, flag := range flags {
		name, list, ok := strings.Cut(flag, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", flag)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	preset := args[0]
	if config.GetPreset(preset) == nil {
		return fmt.Errorf("unknown preset: %s", preset)
	}

	names, ranges, err := parseGrid(gridParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.GetPreset(preset)
		for name, v := range params {
			if err := automation.Apply(cfg, name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, registry)
	}

	logger.Info("tune", "preset", preset, "points", grid.Size(), "metric", metricName)
	prog := newProgress(logger)
	best, all, err := grid.Search(ctx, build, metricName)
	for _, c := range all {
		if c.Err != nil {
			logger.Debug("grid point failed", "params", c.Params, "err", c.Err)
		}
	}
	if err != nil {
		return err
	}
	prog.done("tune completed")

	fmt.Printf("best %s: %.6g\n", metricName, best.Score)
	for _, name := range best.Names() {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	return nil
}

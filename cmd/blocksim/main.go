package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	dt         float64
	ticks      int
	integrator string
	position   []float64
	noValidate bool
	watch      bool
	frameRate  int
	plane      string
	output     string
	pngFile    string
	thrustFile string
	svgFile    string
	limit      int
	save       bool
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int
	perturb    float64
	seed       int64
	bound      float64
	gridParams []string
	metricName string
)

// main registers the blocksim commands and exits with status 1 on error.
func main() {
	logger := newLogger(os.Stderr, log.InfoLevel)

	rootCmd := &cobra.Command{
		Use:           "blocksim",
		Short:         "block-lattice rigid body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".blocksim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the body while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --watch")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngFile, "png", "", "also write a PNG trajectory plot")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a recorded run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a recorded trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane: xy, xz or yz")

	latticeCmd := &cobra.Command{
		Use:   "lattice [preset]",
		Short: "draw a body's lattice",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showLattice,
	}
	latticeCmd.Flags().StringVar(&configFile, "config", "", "run file (yaml or toml)")
	latticeCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane for PNG output")
	latticeCmd.Flags().StringVar(&pngFile, "png", "", "write a density scatter PNG")
	latticeCmd.Flags().StringVar(&thrustFile, "thrust-png", "", "write a thrust field PNG")
	latticeCmd.Flags().StringVar(&svgFile, "svg", "", "write the terminal drawing as SVG")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "interactive live view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "measure tick throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchPreset,
	}
	benchCmd.Flags().StringVar(&configFile, "config", "", "run file (yaml or toml)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset...]",
		Short: "run several presets in parallel",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 = unbounded)")
	ensembleCmd.Flags().BoolVar(&save, "save", false, "record every run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 = unbounded)")
	scenarioCmd.Flags().BoolVar(&save, "save", false, "record every run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "vary one parameter of a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "thrust", "dt, ticks, thrust, density or drag")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of values")
	sweepCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 = unbounded)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "run randomly perturbed copies of a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "max position offset and rotation angle")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().Float64Var(&bound, "bound", 1e3, "distance past which a trial is unstable")
	monteCarloCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 = unbounded)")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search preset parameters minimising a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&gridParams, "param", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "peak_torque", "metric to minimise")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, latticeCmd, liveCmd, presetsCmd, benchCmd, ensembleCmd, scenarioCmd, sweepCmd, monteCarloCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(withLogger(ctx, logger)); err != nil {
		logger.Error(err)
		stop()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "run file (yaml or toml)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "tick length (default from preset)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks (default from preset)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator: euler or euler-half")
	cmd.Flags().Float64SliceVar(&position, "pos", nil, "initial position x,y,z")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "keep running through non-finite states")
}

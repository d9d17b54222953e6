package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/blocksim/internal/config"
	"github.com/san-kum/blocksim/internal/dynamo"
	"github.com/san-kum/blocksim/internal/experiment"
	"github.com/san-kum/blocksim/internal/export"
	"github.com/san-kum/blocksim/internal/sim"
	"github.com/san-kum/blocksim/internal/storage"
	"github.com/san-kum/blocksim/internal/tui"
	"github.com/san-kum/blocksim/internal/viz"
)

// resolveConfig applies preset, then config file, then changed flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	logger := loggerFromContext(cmd.Context())

	name := "line5"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
	}
	logger.Debug("preset", "name", name)

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debug("config file", "path", configFile, "name", cfg.Name)
	}

	flags := cmd.Flags()
	if flags.Lookup("dt") == nil {
		return cfg, nil
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}
	if flags.Changed("pos") {
		if len(position) != 3 {
			return nil, fmt.Errorf("--pos wants 3 components, got %d", len(position))
		}
		cfg.Initial.Position = [3]float64{position[0], position[1], position[2]}
	}
	return cfg, nil
}

func runInfo(exp *experiment.Experiment) storage.RunInfo {
	cfg := exp.Config()
	return storage.RunInfo{
		Name:       cfg.Name,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Ticks:      cfg.Ticks,
		Blocks:     exp.Body().Len(),
		Mass:       exp.Body().Mass(),
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	if watch {
		r := tui.NewLiveRenderer(os.Stdout, cfg.Name, exp.Body(), cfg.Dt, frameRate)
		exp.Simulator().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	logger.Info("running", "name", cfg.Name, "blocks", exp.Body().Len(), "ticks", cfg.Ticks, "dt", cfg.Dt)
	prog := newProgress(logger)

	result, err := exp.Run(ctx)
	if err != nil {
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			logger.Warn("run stopped", "tick", simErr.Step, "state", simErr.State.String())
		}
		return err
	}
	prog.done("completed", "steps", result.StepsTaken)

	runID, err := st.Save(runInfo(exp), result)
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final:  %s\n", final)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, metrics[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTICKS\tDT\tINTEG\tBLOCKS\tMASS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%s\t%d\t%.4g\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Blocks,
			run.Mass,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(states))

	series := map[string][]float64{}
	captions := []string{"x position", "y position", "z position", "rotation (rad)"}
	for _, c := range captions {
		series[c] = make([]float64, len(states))
	}
	for i, s := range states {
		series[captions[0]][i] = s.Position[0]
		series[captions[1]][i] = s.Position[1]
		series[captions[2]][i] = s.Position[2]
		series[captions[3]][i] = states[0].Orientation.AngleTo(s.Orientation)
	}

	for _, caption := range captions {
		graph := asciigraph.Plot(series[caption],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if pngFile != "" {
		f, err := os.Create(pngFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.TrajectoryPNG(f, states, times, meta.ID); err != nil {
			return err
		}
		loggerFromContext(cmd.Context()).Info("wrote", "file", pngFile)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return storage.ExportJSON(w, meta.RunInfo, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	p, err := export.ParsePlane(plane)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(states, p, 800, 600, "#00ccff")
	if svg == "" {
		return fmt.Errorf("run %s has fewer than two states", runID)
	}

	path := output
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Info("wrote", "file", path)
	return nil
}

func showLattice(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	body, x0 := exp.Body(), exp.Initial()

	canvas := viz.NewCanvas(60, 18)
	cam := viz.NewCamera()
	viz.FitCamera(cam, body, x0)
	viz.Render3D(canvas, viz.LatticeWireframe(body, x0), cam)

	lo, hi := body.Bounds()
	fmt.Println(viz.Title.Render(cfg.Name))
	fmt.Println(viz.Panel.Render(strings.TrimSuffix(canvas.String(), "\n")))
	fmt.Printf("%s  %s  bounds %s..%s\n",
		viz.Metric("blocks", float64(body.Len())), viz.Metric("mass", body.Mass()), lo, hi)

	p, err := export.ParsePlane(plane)
	if err != nil {
		return err
	}

	writers := []struct {
		path  string
		write func(f *os.File) error
	}{
		{pngFile, func(f *os.File) error { return export.LatticePNG(f, body, p, cfg.Name) }},
		{thrustFile, func(f *os.File) error { return export.ThrustPNG(f, body, p, cfg.Name+" thrust") }},
		{svgFile, func(f *os.File) error {
			_, err := f.WriteString(export.CanvasToSVG(canvas, 4))
			return err
		}},
	}
	for _, out := range writers {
		if out.path == "" {
			continue
		}
		if err := writeFile(out.path, out.write); err != nil {
			return err
		}
		logger.Info("wrote", "file", out.path)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	return tui.Run(cfg.Name, exp.Simulator(), exp.Initial(), cfg.SimConfig())
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBLOCKS\tMASS\tTICKS\tDT\tINTEG")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		body, err := cfg.BuildBody()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%d\t%.4g\t%d\t%.4g\t%s\n",
			name, body.Len(), body.Mass(), cfg.Ticks, cfg.Dt, cfg.Integrator)
	}
	return w.Flush()
}

func benchPreset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKS\tBLOCKS\tTIME\tTICKS/SEC")

	for _, n := range []int{100, 1000, 10000} {
		run := *cfg
		run.Ticks = n
		// diverging presets must not cut the benchmark short
		run.ValidateState = false

		exp, err := experiment.New(&run, experiment.NewRegistry())
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n",
			result.StepsTaken, exp.Body().Len(), elapsed, float64(result.StepsTaken)/math.Max(elapsed.Seconds(), 1e-9))
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	registry := experiment.NewRegistry()
	exps := make([]*experiment.Experiment, 0, len(names))
	jobs := make([]sim.Job, 0, len(names))
	for _, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s", name)
		}
		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return err
		}
		exps = append(exps, exp)
		jobs = append(jobs, exp.Job(registry))
	}

	ens := sim.NewEnsemble(jobs...)
	ens.SetLimit(limit)

	logger.Info("ensemble", "runs", ens.Len(), "limit", limit)
	prog := newProgress(logger)
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	prog.done("ensemble completed")

	var st *storage.Store
	if save {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tFINAL POSITION\tROTATION\tRUN")
	for i, res := range results {
		runID := "-"
		if st != nil {
			if runID, err = st.Save(runInfo(exps[i]), res); err != nil {
				return err
			}
		}
		p := res.Final().Position
		fmt.Fprintf(w, "%s\t%d\t(%.3f, %.3f, %.3f)\t%.4f\t%s\n",
			jobs[i].Name, res.StepsTaken, p[0], p[1], p[2], res.Metrics["rotation"], runID)
	}
	return w.Flush()
}

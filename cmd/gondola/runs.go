package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/golang/geo/r2"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/config"
	"github.com/torozsom/gondola/internal/export"
	"github.com/torozsom/gondola/internal/gondola"
	"github.com/torozsom/gondola/internal/metrics"
	"github.com/torozsom/gondola/internal/observability"
	"github.com/torozsom/gondola/internal/sim"
	"github.com/torozsom/gondola/internal/spline"
	"github.com/torozsom/gondola/internal/storage"
	"github.com/torozsom/gondola/internal/viz"
)

func runRide(cmd *cobra.Command, args []string) error {
	simCfg := cfg.Sim
	if cmd.Flags().Changed("time") {
		simCfg.Duration = duration
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if runAll {
		return runEnsemble(ctx, simCfg)
	}

	track := cfg.Track
	if len(args) > 0 {
		track = args[0]
	}
	rideCfg := *cfg
	rideCfg.Sim = simCfg

	logger := observability.GetLogger().With(zap.String("track", track))
	s, err := viz.NewRide(&rideCfg, track, logger)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard(cfg.Physics.Gravity) {
		s.AddMetric(m)
	}

	if !asJSON {
		fmt.Printf("riding %s...\n", track)
	}
	start := time.Now()
	result, err := s.Run(ctx, simCfg.Duration)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.NewRunMetadata(track, s.Track().ControlPoints(), cfg.Physics, simCfg, result)
	if !noSave {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if _, err := st.Save(meta, result); err != nil {
			return err
		}
	}

	if asJSON {
		return storage.ExportJSON(os.Stdout, meta, result.Times, result.Samples)
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		fmt.Printf("run id: %s\n", meta.ID)
	}
	fmt.Printf("phase: %s", result.Phase)
	if result.Phase == gondola.Departed {
		fmt.Printf(" (%s)", result.Reason)
	}
	fmt.Printf("\nsteps: %d\nsimulated: %.2fs\n", result.StepsTaken, s.Clock())
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

// runEnsemble rides every built-in track concurrently and prints one row
// per track.
func runEnsemble(ctx context.Context, simCfg sim.Config) error {
	tracks := make(map[string][]r2.Point, len(config.Tracks))
	for name, t := range config.Tracks {
		tracks[name] = t.Points
	}

	gravity := cfg.Physics.Gravity
	ens := sim.NewEnsemble(cfg.Physics, simCfg, observability.GetLogger(), func() []sim.Metric {
		return metrics.Standard(gravity)
	})

	start := time.Now()
	results, err := ens.Run(ctx, tracks)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var st *storage.Store
	if !noSave {
		st = storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tPHASE\tREASON\tSTEPS\tMAX_SPEED\tDISTANCE\tENERGY_DRIFT\tRUN")
	for _, name := range config.ListTracks() {
		result := results[name]
		runID := "-"
		if st != nil {
			meta := storage.NewRunMetadata(name, tracks[name], cfg.Physics, simCfg, result)
			if runID, err = st.Save(meta, result); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%.3f\t%.4f\t%s\n",
			name,
			result.Phase,
			result.Reason,
			result.StepsTaken,
			result.Metrics["max_speed"],
			result.Metrics["distance"],
			result.Metrics["energy_drift"],
			runID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted %d tracks in %v\n", len(results), elapsed)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRACK\tTIME\tDURATION\tDT\tPHASE\tREASON\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Track,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Phase,
			run.Reason,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, _, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("track: %s\n", meta.Track)
	fmt.Printf("samples: %d\n\n", len(samples))

	speed := make([]float64, len(samples))
	height := make([]float64, len(samples))
	for i, s := range samples {
		speed[i] = s.Speed
		height[i] = s.Height
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"speed", speed},
		{"height", height},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, _, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	sp := spline.New()
	for _, p := range meta.Points {
		sp.AddControlPoint(p)
	}
	trail := make([]r2.Point, len(samples))
	for i, s := range samples {
		trail[i] = s.Position
	}

	svg := export.RideSVG(sp.Sample(100), meta.Points, trail, meta.Params.Radius, cfg.View.Width, cfg.View.Height)
	if svg == "" {
		return fmt.Errorf("run %s has no track to draw", runID)
	}

	switch outFile {
	case "-":
		_, err = fmt.Fprintln(os.Stdout, svg)
		return err
	case "":
		outFile = runID + ".svg"
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(cfg.DataDir).ExportRun(os.Stdout, args[0])
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/golang/geo/r2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/torozsom/gondola/internal/config"
	"github.com/torozsom/gondola/internal/gui"
	"github.com/torozsom/gondola/internal/observability"
	"github.com/torozsom/gondola/internal/viz"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logFile    string

	duration float64
	noSave   bool
	runAll   bool
	asJSON   bool
	outFile  string

	cfg *config.Config
)

// ownsTerminal marks commands whose output must not be interleaved with
// console logs.
const ownsTerminal = "owns-terminal"

func main() {
	rootCmd := &cobra.Command{
		Use:               "gondola",
		Short:             "draw a spline track and ride a gondola along it",
		Args:              cobra.NoArgs,
		Annotations:       map[string]string{ownsTerminal: "true"},
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd, nil)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./gondola.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")

	playCmd := &cobra.Command{
		Use:         "play [track]",
		Short:       "edit and ride tracks in the terminal",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{ownsTerminal: "true"},
		RunE:        play,
	}

	guiCmd := &cobra.Command{
		Use:         "gui [track]",
		Short:       "edit and ride tracks in a window",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{ownsTerminal: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			track := viz.BlankTrack
			if len(args) > 0 {
				track = args[0]
			}
			s, err := viz.NewRide(cfg, track, observability.GetLogger())
			if err != nil {
				return err
			}
			gui.Run(s, cfg.View, observability.GetLogger())
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [track]",
		Short: "ride a built-in track headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRide,
	}
	runCmd.Flags().Float64Var(&duration, "time", 0, "simulated seconds (default from config)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&runAll, "all", false, "ride every built-in track concurrently")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON instead of a summary")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot speed and height of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg, - for stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	tracksCmd := &cobra.Command{
		Use:   "tracks",
		Short: "list built-in tracks",
		Args:  cobra.NoArgs,
		RunE:  listTracks,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gondola.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(playCmd, guiCmd, runCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, tracksCmd, initCmd)

	err := rootCmd.Execute()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies the global flags that were set
// explicitly and starts the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logger.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Logger.LogFile = logFile
	}

	if cmd.Annotations[ownsTerminal] == "true" || asJSON {
		observability.InitializeQuiet(cfg.Logger)
	} else {
		observability.InitializeLogger(cfg.Logger)
	}
	observability.GetLogger().Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("track", cfg.Track),
		zap.String("data_dir", cfg.DataDir))
	return nil
}

func play(cmd *cobra.Command, args []string) error {
	logger := observability.GetLogger()
	if len(args) == 0 {
		return viz.Run(*viz.NewApp(cfg, logger))
	}

	s, err := viz.NewRide(cfg, args[0], logger)
	if err != nil {
		return err
	}
	center := r2.Point{X: cfg.View.CenterX, Y: cfg.View.CenterY}
	return viz.Run(viz.NewModel(s, center, cfg.View.Size, cfg.View.FPS,
		viz.WithLogger(logger),
		viz.WithTitle(args[0])))
}

func listTracks(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOINTS\tDESCRIPTION")
	for _, name := range config.ListTracks() {
		t, _ := config.GetTrack(name)
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(t.Points), t.Description)
	}
	return w.Flush()
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/blochsim/internal/config"
)

const dataEnv = "BLOCHSIM_DATA"

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	dt         float64
	duration   float64
	m0         float64
	t1         float64
	t2         float64
	frequency  float64
	phi0       float64
	tHold      float64
	handedness string
	capacity   int
	maxTicks   int
	theme      string

	frameRate int
	outFile   string
	width     int
	height    int
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	defaultData := ".blochsim"
	if d := os.Getenv(dataEnv); d != "" {
		defaultData = d
	}

	rootCmd := &cobra.Command{
		Use:           "blochsim",
		Short:         "NMR free induction decay lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "data directory (env "+dataEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addPhysicsFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the magnetization precess in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addPhysicsFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot detector signals of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&width, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 12, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 300, "image height")
	exportSVGCmd.Flags().String("mode", "signals", "signals, traces or scene")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate f0, T1 and T2 from a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare numerical integrators against the closed form",
		RunE:  compareIntegrators,
	}
	addPhysicsFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter in parallel and fit T1/T2",
		Args:  cobra.NoArgs,
		RunE:  sweepParam,
	}
	addPhysicsFlags(sweepCmd)
	sweepCmd.Flags().String("param", "t2", fmt.Sprintf("parameter to sweep %v", config.ParamNames))
	sweepCmd.Flags().Float64Slice("values", nil, "explicit values (overrides --min/--max/--steps)")
	sweepCmd.Flags().Float64("min", 0.1, "range start")
	sweepCmd.Flags().Float64("max", 1.4, "range end")
	sweepCmd.Flags().Int("steps", 5, "number of points")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and save every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "jitter T1, T2 and f0 and check the runs stay bounded",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addPhysicsFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64("perturb", 0.2, "relative perturbation")
	monteCarloCmd.Flags().Int("trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64("seed", 0, "random seed (0 uses the clock)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, analyzeCmd, compareCmd, sweepCmd, scenarioCmd, monteCarloCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPhysicsFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "fid", "preset configuration")
	f.Float64Var(&dt, "dt", d.Dt, "fixed timestep")
	f.Float64Var(&duration, "time", d.Duration, "duration")
	f.Float64Var(&m0, "m0", d.Physics.M0, "equilibrium magnetization")
	f.Float64Var(&t1, "t1", d.Physics.T1, "longitudinal relaxation time")
	f.Float64Var(&t2, "t2", d.Physics.T2, "transverse relaxation time")
	f.Float64Var(&frequency, "freq", d.Physics.FrequencyHz, "precession frequency in Hz")
	f.Float64Var(&phi0, "phi0", d.Physics.Phi0, "initial phase")
	f.Float64Var(&tHold, "hold", d.Physics.THold, "delay before Mz starts to recover")
	f.StringVar(&handedness, "handedness", d.Physics.Handedness, "precession sense: ccw or cw")
	f.IntVar(&capacity, "capacity", d.Trace.Capacity, "trace ring-buffer capacity")
	f.IntVar(&maxTicks, "max-ticks", d.MaxTicksPerFrame, "cap on ticks run per frame, surplus time is dropped (0 = no cap)")
}

// resolveConfig layers preset, config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("dt", func() { cfg.Dt = dt })
	set("time", func() { cfg.Duration = duration })
	set("m0", func() { cfg.Physics.M0 = m0 })
	set("t1", func() { cfg.Physics.T1 = t1 })
	set("t2", func() { cfg.Physics.T2 = t2 })
	set("freq", func() { cfg.Physics.FrequencyHz = frequency })
	set("phi0", func() { cfg.Physics.Phi0 = phi0 })
	set("hold", func() { cfg.Physics.THold = tHold })
	set("handedness", func() { cfg.Physics.Handedness = handedness })
	set("capacity", func() { cfg.Trace.Capacity = capacity })
	set("max-ticks", func() { cfg.MaxTicksPerFrame = maxTicks })
	set("theme", func() { cfg.Theme = theme })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Printf("  %-16s T1=%.2fs T2=%.2fs f0=%.0fHz %s hold=%.2fs\n",
			name, p.Physics.T1, p.Physics.T2, p.Physics.FrequencyHz, p.Physics.Handedness, p.Physics.THold)
	}
	return nil
}

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/blochsim/internal/analysis"
	"github.com/san-kum/blochsim/internal/export"
	"github.com/san-kum/blochsim/internal/sim"
	"github.com/san-kum/blochsim/internal/storage"
	"github.com/san-kum/blochsim/internal/viz"
)

func openRun(runID string) (*storage.RunMetadata, *storage.Samples, error) {
	st := storage.New(dataDir).WithLogger(newLogger())
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

// output returns stdout when path is empty.
func output(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir).WithLogger(newLogger())
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tT1\tT2\tF0")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.5fs\t%.2fs\t%.2fs\t%.1fHz\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Params.T1,
			run.Params.T2,
			run.Params.FrequencyHz,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := openRun(args[0])
	if err != nil {
		return err
	}
	if samples.Len() < 2 {
		return fmt.Errorf("run %s has too few samples to plot", meta.ID)
	}

	fmt.Printf("run %s (%s)\n\n", meta.ID, meta.Preset)
	signals := asciigraph.PlotMany([][]float64{samples.Sx, samples.Sy},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Cyan),
		asciigraph.Caption("detector signals Sx (red) / Sy (cyan)"))
	fmt.Println(signals)
	fmt.Println()

	mz := asciigraph.Plot(samples.Mz,
		asciigraph.Height(height/2),
		asciigraph.Width(width),
		asciigraph.Caption("longitudinal recovery Mz"))
	fmt.Println(mz)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := openRun(args[0])
	if err != nil {
		return err
	}
	out, closeOut, err := output(outFile)
	if err != nil {
		return err
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "mx", "my", "mz", "sx", "sy"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := 0; i < samples.Len(); i++ {
		row := []string{f(samples.Times[i]), f(samples.Mx[i]), f(samples.My[i]), f(samples.Mz[i]), f(samples.Sx[i]), f(samples.Sy[i])}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return closeOut()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := openRun(args[0])
	if err != nil {
		return err
	}
	out, closeOut, err := output(outFile)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, meta, samples); err != nil {
		return err
	}
	return closeOut()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := openRun(args[0])
	if err != nil {
		return err
	}
	mode, _ := cmd.Flags().GetString("mode")

	var svg string
	switch mode {
	case "signals":
		svg = export.SeriesToSVG([]export.Series{
			{Name: "Sx", Color: "#ff4d6d", X: samples.Times, Y: samples.Sx},
			{Name: "Sy", Color: "#4dd2ff", X: samples.Times, Y: samples.Sy},
		}, width, height)
	case "traces", "scene":
		session, err := replay(meta)
		if err != nil {
			return err
		}
		if mode == "traces" {
			svg = export.TracesToSVG(session.Recorder(), width, height)
		} else {
			m := viz.NewModel(session, viz.Options{Width: width / 8, Height: height / 16})
			svg = export.CanvasToSVG(m.Canvas(), 4, viz.GetTheme(""))
		}
	default:
		return fmt.Errorf("unknown svg mode %q (signals, traces, scene)", mode)
	}
	if svg == "" {
		return fmt.Errorf("run %s has nothing to draw", meta.ID)
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// replay rebuilds a live session from stored metadata and runs it to the
// end of the recorded duration, so the ring buffers hold what the live view
// would have shown.
func replay(meta *storage.RunMetadata) (*sim.Session, error) {
	p, err := meta.BlochParams()
	if err != nil {
		return nil, err
	}
	sc := sim.DefaultConfig()
	sc.Dt = meta.Dt
	sc.Duration = meta.Duration
	session, err := sim.NewSession(p, sc, sim.WithLogger(newLogger()))
	if err != nil {
		return nil, err
	}
	for i := 0; i < meta.Steps; i++ {
		session.Tick()
	}
	return session, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := openRun(args[0])
	if err != nil {
		return err
	}
	if samples.Len() < 4 {
		return fmt.Errorf("run %s: %w", meta.ID, analysis.ErrInsufficientData)
	}

	freq, res := analysis.DominantFrequency(samples.Sx, meta.Dt)

	fmt.Printf("run %s (%s)\n\n", meta.ID, meta.Preset)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tCONFIGURED\tESTIMATED")
	fmt.Fprintf(w, "f0\t%.2f Hz\t%.2f Hz (±%.2f)\n", meta.Params.FrequencyHz, freq, res/2)

	if t2, err := analysis.EstimateT2(samples.Times, samples.Mx, samples.My, meta.Params.M0, 0.01); err == nil {
		fmt.Fprintf(w, "T2\t%.4f s\t%.4f s\n", meta.Params.T2, t2)
	} else {
		fmt.Fprintf(w, "T2\t%.4f s\t- (%v)\n", meta.Params.T2, err)
	}
	if t1, err := analysis.EstimateT1(samples.Times, samples.Mz, meta.Params.M0, meta.Params.THold); err == nil {
		fmt.Fprintf(w, "T1\t%.4f s\t%.4f s\n", meta.Params.T1, t1)
	} else {
		fmt.Fprintf(w, "T1\t%.4f s\t- (%v)\n", meta.Params.T1, err)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		printMetrics(meta.Metrics)
	}
	return nil
}

package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/blochsim/internal/automation"
	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/integrators"
	"github.com/san-kum/blochsim/internal/metrics"
	"github.com/san-kum/blochsim/internal/sim"
	"github.com/san-kum/blochsim/internal/storage"
	"github.com/san-kum/blochsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, _ := cfg.BlochParams()
	sc := cfg.SimConfig()
	logger := newLogger()

	st := storage.New(dataDir).WithLogger(logger)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s for %.2fs at dt=%.5fs...\n", cfg.Name, sc.Duration, sc.Dt)
	start := time.Now()

	result, err := sim.Run(cmd.Context(), p, sc, metrics.Default(p.M0), sim.WithLogger(logger))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Name, sc, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(ms map[string]float64) {
	names := make([]string, 0, len(ms))
	for k := range ms {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s: %.6f\n", k, ms[k])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, _ := cfg.BlochParams()

	session, err := sim.NewSession(p, cfg.SimConfig(), sim.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	return viz.Run(session, viz.Options{Title: cfg.Name, FPS: frameRate, Theme: cfg.Theme})
}

// compareIntegrators steps the lab-frame Bloch equations numerically and
// reports the deviation from the closed form.
func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, _ := cfg.BlochParams()

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	exact, err := bloch.NewIntegrator(p)
	if err != nil {
		return err
	}
	sys := bloch.NewEquations(p)
	steps := int(math.Round(cfg.Duration / cfg.Dt))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tMAX ERR\tFINAL ERR\tMAX |M|/M0\tTIME")
	for _, name := range names {
		integ, err := integrators.Get(name)
		if err != nil {
			return err
		}

		start := time.Now()
		x := exact.At(0).State()
		maxErr, maxNorm, finalErr := 0.0, 0.0, 0.0
		for i := 0; i < steps; i++ {
			t := float64(i) * cfg.Dt
			x = integ.Step(sys, x, t, cfg.Dt)
			if !x.IsValid() {
				return fmt.Errorf("%s diverged at t=%.4f: %w", name, t, dynamo.ErrInvalidState)
			}
			diff := x.Sub(exact.At(t + cfg.Dt).State()).Norm()
			finalErr = diff
			maxErr = math.Max(maxErr, diff)
			maxNorm = math.Max(maxNorm, x.Norm()/p.M0)
		}
		fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%.4f\t%v\n", name, maxErr, finalErr, maxNorm, time.Since(start).Round(time.Microsecond))
	}
	return w.Flush()
}

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	sweep := &automation.ParameterSweep{}
	sweep.ParamName, _ = f.GetString("param")
	sweep.Values, _ = f.GetFloat64Slice("values")
	sweep.ParamMin, _ = f.GetFloat64("min")
	sweep.ParamMax, _ = f.GetFloat64("max")
	sweep.NumSteps, _ = f.GetInt("steps")

	results, err := automation.RunSweep(cmd.Context(), cfg, sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFIT T2\tFIT T1\t|Mxy| END\tMz END\tMAX |M|\n", strings.ToUpper(sweep.ParamName))
	for _, r := range results {
		t2s, t1s := "-", "-"
		if r.FitT2 > 0 {
			t2s = fmt.Sprintf("%.4f", r.FitT2)
		}
		if r.FitErr == nil {
			t1s = fmt.Sprintf("%.4f", r.FitT1)
		}
		fmt.Fprintf(w, "%.4g\t%s\t%s\t%.4f\t%.4f\t%.4f\n", r.ParamValue, t2s, t1s,
			r.Result.Metrics["transverse"], r.Result.Metrics["longitudinal"], r.Result.Metrics["max_magnitude"])
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	logger := newLogger()
	st := storage.New(dataDir).WithLogger(logger)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(cmd.Context(), scenario, logger)
	for i, r := range results {
		id, saveErr := st.Save(r.Name, r.Config.SimConfig(), r.Result)
		if saveErr != nil {
			return saveErr
		}
		fmt.Printf("  step %d/%d %-16s run id: %s\n", i+1, len(scenario.Steps), r.Name, id)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	mc := &automation.MonteCarloConfig{}
	mc.Perturbation, _ = f.GetFloat64("perturb")
	mc.NumTrials, _ = f.GetInt("trials")
	mc.Seed, _ = f.GetInt64("seed")

	results, err := automation.RunMonteCarlo(cmd.Context(), cfg, mc)
	if err != nil {
		return err
	}

	fits := make([]float64, 0, len(results))
	for _, r := range results {
		if r.FitT2 > 0 {
			fits = append(fits, r.FitT2)
		}
	}
	bounded, unbounded := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  bounded: %d  unbounded: %d\n", len(results), bounded, unbounded)
	if len(fits) > 1 {
		lo, hi := fits[0], fits[0]
		for _, v := range fits {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		fmt.Printf("fitted T2 range: %.4fs .. %.4fs\n", lo, hi)
		fmt.Println(asciigraph.Plot(fits, asciigraph.Height(6), asciigraph.Caption("fitted T2 per trial")))
	}
	return nil
}

package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/blochsim/internal/analysis"
	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/metrics"
	"github.com/san-kum/blochsim/internal/sim"
)

var ErrEmptySweep = errors.New("automation: sweep has no values")

// ParameterSweep varies one config value. Explicit Values win over the
// Min/Max/NumSteps range.
type ParameterSweep struct {
	ParamName string
	Values    []float64
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

func (s *ParameterSweep) points() []float64 {
	if len(s.Values) > 0 {
		return s.Values
	}
	switch {
	case s.NumSteps <= 0:
		return nil
	case s.NumSteps == 1:
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.ParamMin + float64(i)*step
	}
	return out
}

type SweepResult struct {
	ParamValue float64
	Result     *sim.Result
	FitT2      float64
	FitT1      float64
	FitErr     error
}

func newMetrics(m0 float64) func() []dynamo.Metric {
	return func() []dynamo.Metric { return metrics.Default(m0) }
}

// RunSweep runs every point of the sweep concurrently and fits T1/T2 to each
// result.
func RunSweep(ctx context.Context, base *config.Config, sweep *ParameterSweep) ([]SweepResult, error) {
	values := sweep.points()
	if len(values) == 0 {
		return nil, ErrEmptySweep
	}

	sets := make([]bloch.Params, len(values))
	for i, v := range values {
		cfg := base.Clone()
		if err := cfg.SetParam(sweep.ParamName, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		sets[i], _ = cfg.BlochParams()
	}

	p0, _ := base.BlochParams()
	results, err := sim.RunEnsemble(ctx, sets, base.SimConfig(), newMetrics(p0.M0))
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, res := range results {
		out[i] = SweepResult{ParamValue: values[i], Result: res}
		out[i].FitT2, out[i].FitT1, out[i].FitErr = fit(res)
	}
	return out, nil
}

func fit(res *sim.Result) (t2, t1 float64, err error) {
	n := len(res.States)
	mx, my, mz := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, s := range res.States {
		m := bloch.FromState(s)
		mx[i], my[i], mz[i] = m.X, m.Y, m.Z
	}
	p := res.Params
	if t2, err = analysis.EstimateT2(res.Times, mx, my, p.M0, 0.01); err != nil {
		return 0, 0, err
	}
	if t1, err = analysis.EstimateT1(res.Times, mz, p.M0, p.THold); err != nil {
		return t2, 0, err
	}
	return t2, t1, nil
}

// MonteCarloConfig jitters T1, T2 and the precession frequency by up to
// ±Perturbation (relative) around the base config.
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Params  bloch.Params
	Bounded bool
	FitT2   float64
}

// RunMonteCarlo draws the parameter sets up front so the outcome depends
// only on the seed. Draws that fail validation (T2 > 2·T1) are redrawn.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 {
		return nil, ErrEmptySweep
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	p0, err := base.BlochParams()
	if err != nil {
		return nil, err
	}

	jitter := func(v float64) float64 { return v * (1 + (rng.Float64()-0.5)*2*mc.Perturbation) }
	sets := make([]bloch.Params, mc.NumTrials)
	for i := range sets {
		for attempt := 0; ; attempt++ {
			p := p0
			p.T1, p.T2, p.Omega0 = jitter(p0.T1), jitter(p0.T2), jitter(p0.Omega0)
			if p.Validate() == nil {
				sets[i] = p
				break
			}
			if attempt > 100 {
				return nil, fmt.Errorf("perturbation %.2f keeps producing invalid parameters: %w", mc.Perturbation, dynamo.ErrParameterBounds)
			}
		}
	}

	results, err := sim.RunEnsemble(ctx, sets, base.SimConfig(), newMetrics(p0.M0))
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(results))
	for i, res := range results {
		t2, _, _ := fit(res)
		out[i] = MonteCarloResult{
			TrialID: i,
			Params:  sets[i],
			Bounded: res.Metrics["bounded"] == 1,
			FitT2:   t2,
		}
	}
	return out, nil
}

func MonteCarloStats(results []MonteCarloResult) (bounded, unbounded int) {
	for _, r := range results {
		if r.Bounded {
			bounded++
		} else {
			unbounded++
		}
	}
	return
}

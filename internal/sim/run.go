package sim

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
)

type Result struct {
	Params     bloch.Params
	Times      []float64
	States     []dynamo.State
	Signals    []bloch.Signal
	Metrics    map[string]float64
	StepsTaken int
}

type resultObserver struct {
	res *Result
}

func (r *resultObserver) OnStep(x dynamo.State, t float64) {
	r.res.Times = append(r.res.Times, t)
	r.res.States = append(r.res.States, x.Clone())
	r.res.Signals = append(r.res.Signals, bloch.Detect(bloch.FromState(x)))
}

// Run drives a session for cfg.Duration seconds of simulated time and records
// every tick, starting with the post-pulse state at t=0.
func Run(ctx context.Context, p bloch.Params, cfg Config, metrics []dynamo.Metric, opts ...Option) (*Result, error) {
	if err := cfg.validate(true); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	res := &Result{
		Params:  p,
		Times:   make([]float64, 0, steps+1),
		States:  make([]dynamo.State, 0, steps+1),
		Signals: make([]bloch.Signal, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	opts = append(opts, WithObserver(&resultObserver{res: res}), WithMetrics(metrics...))
	s, err := NewSession(p, cfg, opts...)
	if err != nil {
		return nil, err
	}

	x0 := s.Snapshot().State
	res.Times = append(res.Times, 0)
	res.States = append(res.States, x0.State())
	res.Signals = append(res.Signals, bloch.Detect(x0))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		s.Tick()
		res.StepsTaken++
		if err := s.Err(); err != nil {
			return res, err
		}
	}

	for k, v := range s.Metrics() {
		res.Metrics[k] = v
	}
	return res, nil
}

// RunEnsemble runs every parameter set concurrently. newMetrics is called once
// per run since metrics carry state.
func RunEnsemble(ctx context.Context, sets []bloch.Params, cfg Config, newMetrics func() []dynamo.Metric) ([]*Result, error) {
	results := make([]*Result, len(sets))
	errs := make([]error, len(sets))

	var wg sync.WaitGroup
	for i := range sets {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			var ms []dynamo.Metric
			if newMetrics != nil {
				ms = newMetrics()
			}
			results[idx], errs[idx] = Run(ctx, sets[idx], cfg, ms)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
	}
	return results, nil
}

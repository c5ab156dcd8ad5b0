package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(bloch.DefaultParams(), DefaultConfig())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestSessionStartsPulsed(t *testing.T) {
	s := newTestSession(t)
	snap := s.Snapshot()

	if snap.State != (bloch.Magnetization{X: 1}) {
		t.Errorf("initial state = %+v, want (M0, 0, 0)", snap.State)
	}
	if snap.Elapsed != 0 || snap.Ticks != 0 {
		t.Errorf("initial elapsed %v ticks %d", snap.Elapsed, snap.Ticks)
	}
	if snap.DrawRange != 1 {
		t.Errorf("initial draw range = %d, want 1", snap.DrawRange)
	}
}

func TestSessionFrameFansOut(t *testing.T) {
	s := newTestSession(t)

	n := s.Frame(0.102)
	if n != 24 {
		t.Fatalf("0.102s at 240Hz should run 24 ticks, got %d", n)
	}
	snap := s.Snapshot()
	if snap.DrawRange != 24 {
		t.Errorf("draw range = %d, want 24", snap.DrawRange)
	}
	if snap.Signal != bloch.Detect(snap.State) {
		t.Errorf("signal %+v does not match state %+v", snap.Signal, snap.State)
	}
	if math.Abs(snap.Elapsed-24.0/240) > 1e-12 {
		t.Errorf("elapsed = %v", snap.Elapsed)
	}
}

func TestSessionRestartIdempotent(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)

	a.Frame(0.5)
	a.Restart()
	a.Restart()

	b.Frame(1.7)
	b.Restart()

	if a.Snapshot() != b.Snapshot() {
		t.Errorf("restart snapshots differ: %+v vs %+v", a.Snapshot(), b.Snapshot())
	}

	ax, _ := a.Recorder().Buffers()
	bx, _ := b.Recorder().Buffers()
	for i, v := range ax.Positions() {
		if v != bx.Positions()[i] || v != 0 {
			t.Fatalf("restart buffers differ at %d", i)
		}
	}
}

func TestSessionReplayStable(t *testing.T) {
	deltas := []float64{0.016, 0.017, 0.033, 0.008, 0.016}

	a := newTestSession(t)
	b := newTestSession(t)
	for i := 0; i < 20; i++ {
		for _, d := range deltas {
			a.Frame(d)
			b.Frame(d)
		}
	}
	if a.Snapshot() != b.Snapshot() {
		t.Error("identical delta sequences produced different states")
	}
}

func TestSessionPulseKeepsTraces(t *testing.T) {
	s := newTestSession(t)
	s.Frame(0.05)
	before := s.Snapshot().DrawRange

	s.Pulse()
	snap := s.Snapshot()
	if snap.Elapsed != 0 || snap.State != (bloch.Magnetization{X: 1}) {
		t.Errorf("pulse did not reset integrator: %+v", snap)
	}
	if snap.DrawRange != before {
		t.Errorf("pulse changed draw range from %d to %d", before, snap.DrawRange)
	}
}

type countingObserver struct{ n int }

func (c *countingObserver) OnStep(x dynamo.State, t float64) { c.n++ }

func TestSessionObservers(t *testing.T) {
	obs := &countingObserver{}
	s, err := NewSession(bloch.DefaultParams(), DefaultConfig(), WithObserver(obs))
	if err != nil {
		t.Fatal(err)
	}
	ticks := s.Frame(0.25)
	if obs.n != ticks {
		t.Errorf("observer saw %d ticks, frame ran %d", obs.n, ticks)
	}
}

func TestNewSessionRejectsBadInput(t *testing.T) {
	p := bloch.DefaultParams()
	p.T2 = -1
	if _, err := NewSession(p, DefaultConfig()); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Capacity = 0
	if _, err := NewSession(bloch.DefaultParams(), cfg); err == nil {
		t.Error("expected error for zero capacity")
	}
}

func TestRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 1.0

	res, err := Run(context.Background(), bloch.DefaultParams(), cfg, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.StepsTaken != 240 {
		t.Errorf("expected 240 steps, got %d", res.StepsTaken)
	}
	if len(res.States) != 241 || len(res.Times) != 241 || len(res.Signals) != 241 {
		t.Errorf("expected 241 samples, got %d/%d/%d", len(res.States), len(res.Times), len(res.Signals))
	}
	if res.Times[0] != 0 || res.States[0][0] != 1 {
		t.Errorf("first sample should be the pulsed state, got t=%v %v", res.Times[0], res.States[0])
	}
	if math.Abs(res.Times[240]-1.0) > 1e-9 {
		t.Errorf("last time = %v, want 1.0", res.Times[240])
	}
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  func() Config
	}{
		{"zero dt", func() Config { c := DefaultConfig(); c.Dt = 0; return c }},
		{"negative dt", func() Config { c := DefaultConfig(); c.Dt = -0.1; return c }},
		{"zero duration", func() Config { c := DefaultConfig(); c.Duration = 0; return c }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), bloch.DefaultParams(), tt.cfg(), nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, bloch.DefaultParams(), DefaultConfig(), nil)
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

func TestRunEnsemble(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 0.5

	sets := make([]bloch.Params, 4)
	for i := range sets {
		sets[i] = bloch.DefaultParams()
		sets[i].T2 = 0.1 * float64(i+1)
	}

	results, err := RunEnsemble(context.Background(), sets, cfg, nil)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != len(sets) {
		t.Fatalf("expected %d results, got %d", len(sets), len(results))
	}
	for i, r := range results {
		if r.Params.T2 != sets[i].T2 {
			t.Errorf("result %d carries T2 %v, want %v", i, r.Params.T2, sets[i].T2)
		}
	}

	last := func(r *Result) float64 { return bloch.FromState(r.States[len(r.States)-1]).Transverse() }
	if last(results[0]) >= last(results[3]) {
		t.Error("shorter T2 should leave less transverse magnetization")
	}
}

func TestSessionLongFrameRunsEveryTick(t *testing.T) {
	s := newTestSession(t)
	dt := s.Clock().Dt()

	n := s.Frame(2.0 + dt/2)
	if n != 480 {
		t.Fatalf("2s at 240Hz should run 480 ticks, got %d", n)
	}
	snap := s.Snapshot()
	if snap.Dropped != 0 {
		t.Errorf("default config dropped %v s", snap.Dropped)
	}
	if math.Abs(snap.Elapsed-2.0) > 1e-9 {
		t.Errorf("elapsed = %v, want 2.0", snap.Elapsed)
	}

	short := newTestSession(t)
	for i := 0; i < 4; i++ {
		short.Frame(0.5)
	}
	if d := math.Abs(short.Snapshot().Elapsed - snap.Elapsed); d > dt {
		t.Errorf("one long frame and four short ones differ by %v s", d)
	}
}

func TestSessionCountsDirectTicks(t *testing.T) {
	s := newTestSession(t)
	for i := 0; i < 37; i++ {
		s.Tick()
	}
	if got := s.Snapshot().Ticks; got != 37 {
		t.Errorf("ticks = %d, want 37", got)
	}

	s.Pulse()
	if got := s.Snapshot().Ticks; got != 0 {
		t.Errorf("pulse left ticks = %d", got)
	}
}

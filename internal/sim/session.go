package sim

import (
	"io"
	"log/slog"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/trace"
)

// Snapshot is what the presentation layer reads after a frame.
type Snapshot struct {
	State     bloch.Magnetization
	Signal    bloch.Signal
	Elapsed   float64
	Ticks     int64
	DrawRange int
	Dropped   float64
}

// Session is the simulation context: integrator, clock, recorder and the
// per-tick hooks, all reset together by Restart.
type Session struct {
	integ     *bloch.Integrator
	clock     *Clock
	recorder  *trace.Recorder
	observers []dynamo.Observer
	metrics   []dynamo.Metric
	logger    *slog.Logger
	signal    bloch.Signal
	validate  bool
	ticks     int64
	lastErr   error
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o dynamo.Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

func WithMetrics(ms ...dynamo.Metric) Option {
	return func(s *Session) { s.metrics = append(s.metrics, ms...) }
}

// NewSession builds a session and applies the initial pulse.
func NewSession(p bloch.Params, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.validate(false); err != nil {
		return nil, err
	}
	integ, err := bloch.NewIntegrator(p)
	if err != nil {
		return nil, err
	}
	clock, err := NewClock(cfg.Dt, cfg.MaxTicksPerFrame)
	if err != nil {
		return nil, err
	}
	lx, ly := cfg.layouts()
	rec, err := trace.NewRecorder(cfg.Capacity, lx, ly)
	if err != nil {
		return nil, err
	}

	s := &Session{
		integ:    integ,
		clock:    clock,
		recorder: rec,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: cfg.ValidateState,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Restart()
	return s, nil
}

// Restart applies the pulse at t=0, resets the clock and clears both traces.
// Calling it twice in a row leaves the same state as calling it once.
func (s *Session) Restart() {
	s.integ.ApplyPulse()
	s.clock.Reset()
	s.ticks = 0
	s.recorder.Clear()
	for _, m := range s.metrics {
		m.Reset()
	}
	s.signal = bloch.Detect(s.integ.State())
	s.lastErr = nil
	bx, _ := s.recorder.Buffers()
	s.logger.Debug("session restarted", "dt", s.clock.Dt(), "capacity", bx.Capacity())
}

// Pulse re-applies the 90° pulse and rewinds the clock but keeps the traces.
func (s *Session) Pulse() {
	s.integ.ApplyPulse()
	s.clock.Reset()
	s.ticks = 0
	s.signal = bloch.Detect(s.integ.State())
	s.logger.Debug("pulse applied")
}

// Frame accumulates a wall-clock delta in seconds and runs every whole tick
// it covers. It returns the number of ticks run.
func (s *Session) Frame(delta float64) int {
	before := s.clock.Dropped()
	n := s.clock.Advance(delta)
	if d := s.clock.Dropped() - before; d > 0 {
		s.logger.Warn("frame exceeded tick budget, dropping time", "dropped_s", d, "ticks", n)
	}
	for i := 0; i < n; i++ {
		s.Tick()
	}
	return n
}

// Tick runs exactly one physics step. Ticks are counted here so headless
// runs that bypass Frame are numbered too.
func (s *Session) Tick() {
	s.ticks++
	m := s.integ.Step(s.clock.Dt())
	s.signal = bloch.Detect(m)
	s.recorder.PushSample(s.signal.Sx, s.signal.Sy)

	x := m.State()
	t := s.integ.Elapsed()
	if s.validate && !x.IsValid() && s.lastErr == nil {
		s.lastErr = &dynamo.SimulationError{Step: int(s.ticks), Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
		s.logger.Error("invalid magnetization", "t", t, "state", x)
	}
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, o := range s.observers {
		o.OnStep(x, t)
	}
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:     s.integ.State(),
		Signal:    s.signal,
		Elapsed:   s.integ.Elapsed(),
		Ticks:     s.ticks,
		DrawRange: s.recorder.DrawRange(),
		Dropped:   s.clock.Dropped(),
	}
}

func (s *Session) Recorder() *trace.Recorder     { return s.recorder }
func (s *Session) Clock() *Clock                 { return s.clock }
func (s *Session) Params() bloch.Params          { return s.integ.Params() }
func (s *Session) Integrator() *bloch.Integrator { return s.integ }

// Err returns the first invalid-state error seen since the last restart.
func (s *Session) Err() error { return s.lastErr }

func (s *Session) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

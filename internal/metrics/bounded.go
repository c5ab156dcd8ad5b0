package metrics

import "github.com/san-kum/blochsim/internal/dynamo"

// Bounded is the fraction of ticks whose |M| stayed within limit.
type Bounded struct {
	limit      float64
	violations int
	samples    int
}

func NewBounded(limit float64) *Bounded {
	return &Bounded{limit: limit}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) Observe(x dynamo.State, t float64) {
	b.samples++
	if x.Norm() > b.limit {
		b.violations++
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}

// Default returns the metric set recorded for every run.
func Default(m0 float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewMagnitudeBound(m0),
		NewTransverseEnvelope(m0),
		NewLongitudinalRecovery(m0),
		NewBounded(m0 * (1 + 1e-9)),
	}
}

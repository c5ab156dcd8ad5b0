package bloch_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
)

const dtFixed = 1.0 / 240

var _ = Describe("Integrator", func() {
	var (
		params bloch.Params
		integ  *bloch.Integrator
	)

	BeforeEach(func() {
		params = bloch.DefaultParams()
		var err error
		integ, err = bloch.NewIntegrator(params)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts at equilibrium before any pulse", func() {
		Expect(integ.State()).To(Equal(bloch.Magnetization{Z: params.M0}))
		Expect(integ.Pulsed()).To(BeFalse())

		m := integ.Step(dtFixed)
		Expect(m).To(Equal(bloch.Magnetization{Z: params.M0}))
	})

	It("tips magnetization onto +X and zeroes the clock on pulse", func() {
		for i := 0; i < 10; i++ {
			integ.Step(dtFixed)
		}
		integ.ApplyPulse()

		Expect(integ.State()).To(Equal(bloch.Magnetization{X: params.M0}))
		Expect(integ.Elapsed()).To(BeZero())
	})

	It("decays the transverse magnitude by 1/e after one T2", func() {
		integ.ApplyPulse()
		m := integ.At(0.35)
		Expect(m.Transverse()).To(BeNumerically("~", math.Exp(-1), 1e-3))
	})

	It("recovers Mz to 1-1/e after one T1", func() {
		integ.ApplyPulse()
		m := integ.At(1.8)
		Expect(m.Z).To(BeNumerically("~", 1-math.Exp(-1), 1e-3))
	})

	It("never exceeds M0 in magnitude", func() {
		integ.ApplyPulse()
		for i := 0; i < 240*10; i++ {
			m := integ.Step(dtFixed)
			Expect(m.Norm()).To(BeNumerically("<=", params.M0+1e-12))
		}
	})

	It("returns to equilibrium at long times", func() {
		integ.ApplyPulse()
		m := integ.At(60)
		Expect(m.X).To(BeNumerically("~", 0, 1e-9))
		Expect(m.Y).To(BeNumerically("~", 0, 1e-9))
		Expect(m.Z).To(BeNumerically("~", params.M0, 1e-9))
	})

	It("is deterministic across fresh pulses", func() {
		run := func() []bloch.Magnetization {
			integ.ApplyPulse()
			out := make([]bloch.Magnetization, 0, 500)
			for i := 0; i < 500; i++ {
				out = append(out, integ.Step(dtFixed))
			}
			return out
		}
		first := run()
		second := run()
		Expect(second).To(Equal(first))
	})

	It("ignores non-positive steps", func() {
		integ.ApplyPulse()
		integ.Step(dtFixed)
		before := integ.State()
		t := integ.Elapsed()

		Expect(integ.Step(0)).To(Equal(before))
		Expect(integ.Step(-1)).To(Equal(before))
		Expect(integ.Step(math.NaN())).To(Equal(before))
		Expect(integ.Elapsed()).To(Equal(t))
	})

	Context("with clockwise precession", func() {
		It("mirrors My", func() {
			cw := params
			cw.Handedness = bloch.Clockwise
			other, err := bloch.NewIntegrator(cw)
			Expect(err).NotTo(HaveOccurred())

			integ.ApplyPulse()
			other.ApplyPulse()
			a := integ.At(0.01)
			b := other.At(0.01)
			Expect(b.X).To(Equal(a.X))
			Expect(b.Y).To(Equal(-a.Y))
			Expect(b.Z).To(Equal(a.Z))
		})
	})

	Context("with a hold interval", func() {
		It("keeps Mz at zero until the hold elapses", func() {
			held := params
			held.THold = 0.5
			h, err := bloch.NewIntegrator(held)
			Expect(err).NotTo(HaveOccurred())
			h.ApplyPulse()

			Expect(h.At(0.25).Z).To(BeZero())
			Expect(h.At(0.5).Z).To(BeZero())
			Expect(h.At(0.5 + 1.8).Z).To(BeNumerically("~", 1-math.Exp(-1), 1e-9))
		})
	})
})

var _ = Describe("Params", func() {
	DescribeTable("Validate rejects out-of-range values",
		func(mutate func(*bloch.Params)) {
			p := bloch.DefaultParams()
			mutate(&p)
			Expect(p.Validate()).To(MatchError(dynamo.ErrParameterBounds))
		},
		Entry("zero m0", func(p *bloch.Params) { p.M0 = 0 }),
		Entry("negative t1", func(p *bloch.Params) { p.T1 = -1 }),
		Entry("zero t2", func(p *bloch.Params) { p.T2 = 0 }),
		Entry("t2 beyond 2*t1", func(p *bloch.Params) { p.T2 = 2*p.T1 + 0.1 }),
		Entry("negative hold", func(p *bloch.Params) { p.THold = -0.1 }),
		Entry("zero handedness", func(p *bloch.Params) { p.Handedness = 0 }),
		Entry("NaN omega", func(p *bloch.Params) { p.Omega0 = math.NaN() }),
	)

	It("accepts the defaults", func() {
		Expect(bloch.DefaultParams().Validate()).To(Succeed())
	})

	It("reports the precession frequency in Hz", func() {
		Expect(bloch.DefaultParams().Frequency()).To(BeNumerically("~", 30, 1e-12))
	})

	It("parses handedness names", func() {
		h, err := bloch.ParseHandedness("cw")
		Expect(err).NotTo(HaveOccurred())
		Expect(h).To(Equal(bloch.Clockwise))

		_, err = bloch.ParseHandedness("sideways")
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})

var _ = Describe("Detect", func() {
	It("reads the transverse components without scaling", func() {
		sig := bloch.Detect(bloch.Magnetization{X: 0.25, Y: -0.5, Z: 0.9})
		Expect(sig).To(Equal(bloch.Signal{Sx: 0.25, Sy: -0.5}))
	})
})

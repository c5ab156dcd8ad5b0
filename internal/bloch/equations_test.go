package bloch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/integrators"
)

var _ = Describe("Equations", func() {
	It("matches the closed form under RK4", func() {
		p := bloch.DefaultParams()
		p.THold = 0.1
		eq := bloch.NewEquations(p)
		integ, err := bloch.NewIntegrator(p)
		Expect(err).NotTo(HaveOccurred())
		integ.ApplyPulse()

		rk4 := integrators.NewRK4()
		x := integ.State().State()
		t := 0.0
		dt := 1.0 / 4800
		for i := 0; i < 4800; i++ {
			x = rk4.Step(eq, x, t, dt)
			t += dt
		}

		want := integ.At(t)
		got := bloch.FromState(x)
		Expect(got.X).To(BeNumerically("~", want.X, 1e-4))
		Expect(got.Y).To(BeNumerically("~", want.Y, 1e-4))
		Expect(got.Z).To(BeNumerically("~", want.Z, 1e-3))
	})

	It("has a fixed point at equilibrium", func() {
		eq := bloch.NewEquations(bloch.DefaultParams())
		dx := eq.Derive(dynamo.State{0, 0, 1}, 5)
		Expect(dx).To(Equal(dynamo.State{0, 0, 0}))
	})
})

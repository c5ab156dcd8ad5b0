// Package bloch evaluates the free-induction decay of a bulk magnetization
// vector after a hard 90° pulse.
//
// The [Integrator] uses the exact solution of the Bloch equations with no
// applied RF field: transverse components precess at Omega0 and decay with
// T2, the longitudinal component recovers toward M0 with T1. Because the
// solution is closed form, repeated steps never drift.
//
//	integ, _ := bloch.NewIntegrator(bloch.DefaultParams())
//	integ.ApplyPulse()
//	m := integ.Step(1.0 / 240)
//	sig := bloch.Detect(m)
//
// [Equations] expresses the same model as a [dynamo.System] so numerical
// integrators can be measured against the closed form.
package bloch

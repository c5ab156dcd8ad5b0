// Package dynamo provides the state and integration primitives shared by the
// Bloch simulation packages.
//
//   - [State]: flat vector of the magnetization components
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper over a [System]
//   - [Observer] and [Metric]: per-tick hooks used by runs and sessions
//
// The closed-form integrator in package bloch does not need a [System]; the
// interfaces exist so the numerical steppers can be checked against it.
package dynamo

// Package sim composes the Bloch integrator and the trace recorder into a
// simulation context driven by a fixed-timestep accumulator.
//
// A [Session] owns every piece of mutable simulation state. The presentation
// layer calls [Session.Frame] once per rendered frame with the wall-clock
// delta; the session drains whole physics ticks through the integrator and
// pushes each tick's detector signal into the recorder. [Run] drives the same
// session headlessly for batch runs and [RunEnsemble] fans several parameter
// sets out in parallel.
//
// # Thread Safety
//
// Session instances are NOT thread-safe. They are meant to be owned by the
// single goroutine driving the animation.
package sim

// Package viz draws a live session in the terminal.
//
// The scene is rendered onto a braille [Canvas] through a small perspective
// [Camera]: the three lab axes, the magnetization arrow, the two detector
// cones and both detector traces as recorded by the session's ring buffers.
// Only the first DrawRange points of each buffer are drawn.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart (pulse and clear traces)
//	P     - Pulse again, keep traces
//	x/y/z - Orbit the camera (shift reverses)
//	+/-   - Zoom
//	T     - Cycle color themes
//	Q     - Quit
package viz

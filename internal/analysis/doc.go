// Package analysis recovers physical parameters from a recorded FID.
//
//   - [PowerSpectrum]: magnitude spectrum of a real signal
//   - [DominantFrequency]: precession frequency from the Sx channel
//   - [EstimateT2]: log-linear fit of the transverse envelope
//   - [EstimateT1]: log-linear fit of the longitudinal recovery
//
// The estimators assume uniformly spaced samples starting at the pulse.
package analysis

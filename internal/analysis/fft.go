package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X[k]| for the non-negative frequency bins of data.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// of data sampled every dt seconds, and the bin resolution.
func DominantFrequency(data []float64, dt float64) (freq, resolution float64) {
	if len(data) < 2 || dt <= 0 {
		return 0, 0
	}
	ps := PowerSpectrum(data)
	resolution = 1.0 / (float64(len(data)) * dt)

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) * resolution, resolution
}

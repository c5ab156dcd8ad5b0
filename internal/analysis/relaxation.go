package analysis

import (
	"errors"
	"math"
)

var ErrInsufficientData = errors.New("analysis: not enough usable samples for fit")

// minSignal keeps the log fit away from the noise floor near zero.
const minSignal = 1e-6

// EstimateT2 fits ln|Mxy| = ln M0 - t/T2 over samples whose envelope is above
// floor·m0.
func EstimateT2(times, mx, my []float64, m0, floor float64) (float64, error) {
	n := min(len(times), len(mx), len(my))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v := math.Hypot(mx[i], my[i])
		if v <= math.Max(floor*m0, minSignal) {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, math.Log(v))
	}
	slope, err := fitSlope(xs, ys)
	if err != nil {
		return 0, err
	}
	if slope >= 0 {
		return math.Inf(1), nil
	}
	return -1 / slope, nil
}

// EstimateT1 fits ln(M0 - Mz) = ln M0 - (t - tHold)/T1 over samples after the
// hold where recovery is still far from complete.
func EstimateT1(times, mz []float64, m0, tHold float64) (float64, error) {
	n := min(len(times), len(mz))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if times[i] <= tHold {
			continue
		}
		gap := m0 - mz[i]
		if gap <= minSignal*m0 {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, math.Log(gap))
	}
	slope, err := fitSlope(xs, ys)
	if err != nil {
		return 0, err
	}
	if slope >= 0 {
		return math.Inf(1), nil
	}
	return -1 / slope, nil
}

// fitSlope is an ordinary least-squares slope.
func fitSlope(xs, ys []float64) (float64, error) {
	n := float64(len(xs))
	if len(xs) < 2 {
		return 0, ErrInsufficientData
	}
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, ErrInsufficientData
	}
	return (n*sxy - sx*sy) / den, nil
}

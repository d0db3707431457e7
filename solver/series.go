package solver

import (
	"math"
)

const (
	maxBisectionIters = 100
	maxBoundDoublings = 30
	epsilon           = 1e-7

	// linearSnap is how close a target ratio must be to the unscaled ratio
	// before the bisection returns a step scale of exactly 1.
	linearSnap = 0.001

	lowerStepScale = 0.00001
)

// Ratio returns the total duration ratio R for n steps at per-step scale s:
// sum(deltas[k mod M] * s^k) / sourceDur.
func Ratio(deltas []float64, n int, s, sourceDur float64) float64 {
	if len(deltas) == 0 || sourceDur <= epsilon || n <= 0 {
		return 0
	}
	if math.Abs(s-1) < epsilon {
		return linearRatio(deltas, n, sourceDur)
	}

	m := len(deltas)
	var total float64
	for k := 0; k < n; k++ {
		total += deltas[k%m] * math.Pow(s, float64(k))
	}
	return total / sourceDur
}

// linearRatio is Ratio at s == 1: whole loops plus the leading deltas of a
// partial loop. Equals n/M when the deltas are uniform.
func linearRatio(deltas []float64, n int, sourceDur float64) float64 {
	m := len(deltas)
	var loop, partial float64
	for i, d := range deltas {
		loop += d
		if i < n%m {
			partial += d
		}
	}
	return (float64(n/m)*loop + partial) / sourceDur
}

// StepDurations returns the ideal (unrounded) duration of each of the n
// generated steps.
func StepDurations(deltas []float64, n int, s float64) []float64 {
	if len(deltas) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for k := range out {
		out[k] = deltas[k%len(deltas)] * math.Pow(s, float64(k))
	}
	return out
}

// solveStepScale bisects for the per-step scale whose ratio over n steps
// equals target. Ratio is non-decreasing in s, which the search relies on.
func solveStepScale(deltas []float64, n int, target, sourceDur float64) float64 {
	if math.Abs(target-linearRatio(deltas, n, sourceDur)) < linearSnap {
		return 1
	}

	low, high := lowerStepScale, 2.0
	for i := 0; i < maxBoundDoublings && Ratio(deltas, n, high, sourceDur) < target; i++ {
		high *= 2
	}

	for i := 0; i < maxBisectionIters; i++ {
		mid := low + (high-low)*0.5
		r := Ratio(deltas, n, mid, sourceDur)
		if math.Abs(r-target) < epsilon {
			return mid
		}
		if r < target {
			low = mid
		} else {
			high = mid
		}
	}
	return low + (high-low)*0.5
}

// searchLimit caps the candidate repetition counts tried by the fit modes.
func searchLimit(m int) int {
	return max(1000, 100*m)
}

// fitRepetitions finds the step count (a multiple of stride) whose ratio
// at a fixed step scale is closest to target.
//
// Precondition: Ratio grows with n for a fixed s, so the search stops as
// soon as an overshooting candidate is worse than the best seen.
// Pathological delta sets could in principle break this; see DESIGN.md.
func fitRepetitions(deltas []float64, s, target, sourceDur float64, stride int) int {
	m := len(deltas)
	limit := searchLimit(m)
	linear := math.Abs(s-1) < epsilon

	best := stride
	minDiff := math.MaxFloat64
	var total float64
	for k := 0; k < limit; k++ {
		term := deltas[k%m]
		if !linear {
			term *= math.Pow(s, float64(k))
		}
		total += term

		n := k + 1
		if n%stride != 0 {
			continue
		}
		r := total / sourceDur
		diff := math.Abs(r - target)
		if diff < minDiff {
			minDiff = diff
			best = n
		}
		if r > target && diff > minDiff {
			break
		}
	}
	return best
}

// fitRepetitionsFixedEnd is fitRepetitions for the case where the final
// scale is locked: the step scale is re-derived from each candidate n as
// end^(1/(n-1)).
func fitRepetitionsFixedEnd(deltas []float64, end, target, sourceDur float64, stride int) int {
	m := len(deltas)

	if math.Abs(end-1) < linearSnap {
		n := int(math.Round(target * float64(m)))
		return roundToStride(n, stride)
	}

	limit := searchLimit(m)
	start := max(stride, 2)
	best := start
	minDiff := math.MaxFloat64
	for n := start; n <= limit; n += stride {
		s := math.Pow(end, 1/float64(n-1))
		r := Ratio(deltas, n, s, sourceDur)
		diff := math.Abs(r - target)
		if diff < minDiff {
			minDiff = diff
			best = n
		}
		if r > target && diff > minDiff {
			break
		}
	}
	return best
}

// roundToStride rounds n to the nearest multiple of stride, never below
// stride.
func roundToStride(n, stride int) int {
	if stride > 1 && n%stride != 0 {
		n = ((n + stride/2) / stride) * stride
	}
	return max(n, stride)
}

// Package confidence folds heterogeneous confidence scores into one bounded value.
package confidence

import "math"

const (
	Min = 0
	Max = 100
)

// Clamp bounds a confidence to [Min, Max].
func Clamp(v int) int {
	return max(Min, min(Max, v))
}

// Average returns the rounded arithmetic mean of values, ignoring NaN and
// infinities. An empty or fully filtered input yields 0.
func Average(values ...float64) int {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return Round(sum / float64(n))
}

// Round rounds half up, so 82.5 becomes 83 and -0.5 becomes 0.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Ints converts integer confidences for use with Average.
func Ints(values ...int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

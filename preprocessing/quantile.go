package preprocessing

import (
	"math"
	"slices"
)

// Quantile returns the p-quantile of values by linear interpolation between the
// closest ranks, at position (n-1)*p of the sorted values. NaN values are skipped;
// with no values left the result is NaN.
func Quantile(values []float64, p float64) float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	slices.Sort(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	a, b := sorted[int(lo)], sorted[int(hi)]
	return a + (h-lo)*(b-a)
}

package precip

import "math"

// NearestIndex returns the index of the axis value closest to target. Ties
// resolve to the lowest index. It returns -1 for an empty axis.
func NearestIndex(axis []float64, target float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range axis {
		d := math.Abs(v - target)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

package snm

import "math"

// SplitIndex returns the grid index separating the two lobes of a butterfly.
//
// It looks for sign changes of a[i]-b[i] between consecutive samples,
// bucketing zero with the positives, and picks the change closest to the
// middle of the grid (the first one on ties). With no sign change the
// middle index is used. Both lobes include the returned index.
//
// The nearest-to-middle rule is a heuristic: curves with several crossings
// or a difference that hugs zero may split off-centre.
func SplitIndex(a, b []float64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	mid := n / 2

	best, bestDist := -1, 0
	for i := 0; i+1 < n; i++ {
		if math.Signbit(a[i]-b[i]) == math.Signbit(a[i+1]-b[i+1]) {
			continue
		}
		dist := i - mid
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return mid
	}
	return best
}

// SplitLobes partitions an n-sample grid at split into the left lobe
// [0, split] and right lobe [split, n-1].
func SplitLobes(n, split int) (left, right Lobe) {
	return Lobe{Lo: 0, Hi: split}, Lobe{Lo: split, Hi: n - 1}
}

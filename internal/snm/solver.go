package snm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SearchConfig controls the bisection over candidate square sides.
type SearchConfig struct {
	// Tolerance stops the search once the bracket is narrower than
	// Tolerance times the initial upper bound. Zero runs MaxIterations.
	Tolerance float64

	// MaxIterations caps the number of probes.
	MaxIterations int
}

// DefaultSearchConfig resolves sides to about 1e-12 of the lobe's scale.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Tolerance:     1e-12,
		MaxIterations: 64,
	}
}

// probe is the outcome of one feasibility check: the window of length
// window starting at index has the largest clearance for side.
type probe struct {
	side   float64
	index  int
	window int
}

// lobeSearch holds one lobe's samples for repeated feasibility probes.
type lobeSearch struct {
	x, upper, lower []float64
	dx              float64
}

// fits reports whether a square of side s fits between the envelopes.
//
// The square spans k = ceil(s/dx)+1 grid samples. It fits when, over some
// window of k samples, the lowest upper-envelope point minus the highest
// lower-envelope point is at least s. The leftmost such window is returned.
func (ls lobeSearch) fits(s float64) (probe, bool) {
	n := len(ls.x)
	ratio := s / ls.dx
	if ratio > float64(n-1) {
		return probe{}, false
	}
	k := int(math.Ceil(ratio)) + 1
	if k < 2 {
		k = 2
	}
	if k > n {
		return probe{}, false
	}

	minUpper, err := WindowMin(ls.upper, k)
	if err != nil {
		return probe{}, false
	}
	maxLower, err := WindowMax(ls.lower, k)
	if err != nil {
		return probe{}, false
	}
	clearance := floats.SubTo(minUpper, minUpper, maxLower)

	i := floats.MaxIdx(clearance)
	return probe{side: s, index: i, window: k}, clearance[i] >= s
}

// Feasible reports whether a square of side s fits anywhere in the lobe
// described by x, upper and lower.
func Feasible(x, upper, lower []float64, s float64) bool {
	if len(x) < 2 || len(upper) != len(x) || len(lower) != len(x) {
		return false
	}
	dx := x[1] - x[0]
	if !(dx > 0) {
		return false
	}
	_, ok := lobeSearch{x: x, upper: upper, lower: lower, dx: dx}.fits(s)
	return ok
}

// MaxSquare finds the largest square that fits between upper and lower
// over the uniformly spaced positions x.
//
// Algorithm:
//  1. Bound the side by the lobe width and the widest vertical gap.
//  2. Bisect on [0, bound]; each probe checks every window with two
//     sliding-extrema passes, so a probe costs O(len(x)).
//  3. Stop when the bracket is within tolerance or the iteration cap is hit.
//  4. Place the square at the best window's left edge, resting on the
//     highest lower-envelope point inside it.
//
// A lobe that cannot hold any square of positive side returns 0 and a nil
// placement; that is a valid zero margin, not an error.
func MaxSquare(x, upper, lower []float64, cfg SearchConfig) (float64, *Placement, error) {
	if len(upper) != len(x) || len(lower) != len(x) {
		return 0, nil, fmt.Errorf("%w: lobe lengths x=%d upper=%d lower=%d",
			ErrInvalidWindow, len(x), len(upper), len(lower))
	}
	if len(x) < 2 {
		return 0, nil, nil
	}
	dx := x[1] - x[0]
	if !(dx > 0) {
		return 0, nil, nil
	}

	bound := math.Min(x[len(x)-1]-x[0], floats.Max(upper)-floats.Min(lower))
	if !(bound > 0) {
		return 0, nil, nil
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultSearchConfig().MaxIterations
	}
	tol := math.Max(cfg.Tolerance, 0) * bound

	ls := lobeSearch{x: x, upper: upper, lower: lower, dx: dx}
	best, found := bisect(ls, bound, tol, cfg.MaxIterations)
	if !found {
		return 0, nil, nil
	}

	window := lower[best.index : best.index+best.window]
	return best.side, &Placement{
		X0:   x[best.index],
		Y0:   floats.Max(window),
		Side: best.side,
	}, nil
}

// bisect searches (0, hi] for the largest feasible side. The best probe so
// far is threaded through the loop and returned.
func bisect(ls lobeSearch, hi, tol float64, maxIter int) (probe, bool) {
	lo := 0.0
	var best probe
	found := false
	for iter := 0; iter < maxIter && hi-lo > tol; iter++ {
		mid := (lo + hi) / 2
		if p, ok := ls.fits(mid); ok {
			best, found = p, true
			lo = mid
		} else {
			hi = mid
		}
	}
	return best, found
}

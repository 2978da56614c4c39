package snm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Envelope holds both curves resampled onto a shared uniform grid together
// with their pointwise upper and lower bounds.
type Envelope struct {
	X []float64

	// A and B keep curve identity; the lobe splitter needs the signed
	// difference between them.
	A []float64
	B []float64

	Upper []float64
	Lower []float64
}

// Len returns the number of grid samples.
func (e *Envelope) Len() int {
	return len(e.X)
}

// Slice returns the grid positions and envelopes restricted to a lobe.
// The returned slices share storage with the envelope.
func (e *Envelope) Slice(l Lobe) (x, upper, lower []float64) {
	return e.X[l.Lo : l.Hi+1], e.Upper[l.Lo : l.Hi+1], e.Lower[l.Lo : l.Hi+1]
}

// BuildEnvelope resamples a and b onto gridSize uniformly spaced positions
// over [0, xMax] and derives the upper and lower envelopes.
//
// Samples with a missing coordinate are dropped from each curve
// independently. Outside a curve's own x range its boundary value is held.
func BuildEnvelope(a, b Curve, xMax float64, gridSize int) (*Envelope, error) {
	if gridSize < 2 {
		return nil, fmt.Errorf("%w: grid size %d, need at least 2", ErrInvalidWindow, gridSize)
	}
	if !(xMax > 0) || math.IsInf(xMax, 0) {
		return nil, fmt.Errorf("%w: xMax=%v", ErrInvalidDomain, xMax)
	}

	grid := floats.Span(make([]float64, gridSize), 0, xMax)

	ya, err := resample(a, grid)
	if err != nil {
		return nil, fmt.Errorf("curve A: %w", err)
	}
	yb, err := resample(b, grid)
	if err != nil {
		return nil, fmt.Errorf("curve B: %w", err)
	}

	upper := make([]float64, gridSize)
	lower := make([]float64, gridSize)
	for i := range grid {
		upper[i] = math.Max(ya[i], yb[i])
		lower[i] = math.Min(ya[i], yb[i])
	}

	return &Envelope{X: grid, A: ya, B: yb, Upper: upper, Lower: lower}, nil
}

// resample linearly interpolates c at every grid position.
func resample(c Curve, grid []float64) ([]float64, error) {
	valid := c.Valid()
	if len(valid) < 2 {
		return nil, fmt.Errorf("%w: %d valid points, need at least 2", ErrInsufficientSamples, len(valid))
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].X < valid[j].X })

	xs, ys := knots(valid)
	out := make([]float64, len(grid))

	// Every sample shares one x: the curve is flat at their mean.
	if len(xs) == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit curve: %w", err)
	}
	for i, x := range grid {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// knots collapses runs of equal x in sorted samples to their mean y so the
// interpolant sees strictly increasing abscissae.
func knots(sorted Curve) (xs, ys []float64) {
	xs = make([]float64, 0, len(sorted))
	ys = make([]float64, 0, len(sorted))
	for i := 0; i < len(sorted); {
		j := i
		sum := 0.0
		for j < len(sorted) && sorted[j].X == sorted[i].X {
			sum += sorted[j].Y
			j++
		}
		xs = append(xs, sorted[i].X)
		ys = append(ys, sum/float64(j-i))
		i = j
	}
	return xs, ys
}

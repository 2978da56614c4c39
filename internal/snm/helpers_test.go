package snm

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// inverterButterfly returns a logistic inverter transfer curve and its
// mirror about y = x, the shape of an ideal cross-coupled cell.
func inverterButterfly(vdd, gain float64, n int) (Curve, Curve) {
	a := make(Curve, n)
	b := make(Curve, n)
	for i := 0; i < n; i++ {
		x := vdd * float64(i) / float64(n-1)
		y := vdd / (1 + math.Exp(gain*(x-vdd/2)))
		a[i] = Point{X: x, Y: y}
		b[i] = Point{X: y, Y: x}
	}
	return a, b
}

func uniformGrid(n int) []float64 {
	return floats.Span(make([]float64, n), 0, 1)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

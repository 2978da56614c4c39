package snm

import "math"

// Point is one (x, y) sample of a transfer curve. A NaN coordinate marks a
// missing value.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Missing reports whether either coordinate is absent.
func (p Point) Missing() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// Curve is an ordered sequence of samples as exported by the simulator.
type Curve []Point

// Valid returns the samples with both coordinates present.
func (c Curve) Valid() Curve {
	out := make(Curve, 0, len(c))
	for _, p := range c {
		if !p.Missing() {
			out = append(out, p)
		}
	}
	return out
}

// Lobe is an inclusive index range [Lo, Hi] into the grid.
type Lobe struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Len returns the number of grid samples in the lobe.
func (l Lobe) Len() int {
	return l.Hi - l.Lo + 1
}

// Placement is the bottom-left corner and edge length of an inscribed square.
type Placement struct {
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	Side float64 `json:"side"`
}

// Corner is a vertex of an inscribed square.
type Corner struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Corners returns the square's vertices in the order bottom-left,
// bottom-right, top-right, top-left.
func (p Placement) Corners() [4]Corner {
	return [4]Corner{
		{X: p.X0, Y: p.Y0},
		{X: p.X0 + p.Side, Y: p.Y0},
		{X: p.X0 + p.Side, Y: p.Y0 + p.Side},
		{X: p.X0, Y: p.Y0 + p.Side},
	}
}

// Result is the outcome of one SNM computation.
type Result struct {
	// SNM is the reported margin, the weaker of the two lobes.
	SNM   float64 `json:"snm"`
	Left  float64 `json:"snm_left"`
	Right float64 `json:"snm_right"`

	// Placements are nil when a lobe admits no square of positive side.
	LeftPlacement  *Placement `json:"placement_left,omitempty"`
	RightPlacement *Placement `json:"placement_right,omitempty"`

	Split     int  `json:"split_index"`
	LeftLobe  Lobe `json:"left_lobe"`
	RightLobe Lobe `json:"right_lobe"`
}

package butterfly

import "github.com/banshee-data/snm.report/internal/snm"

func pt(x, y float64) snm.Point {
	return snm.Point{X: x, Y: y}
}

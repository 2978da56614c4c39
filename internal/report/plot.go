package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/snm.report/internal/snm"
)

const (
	plotWidth  = 7 * vg.Inch
	plotHeight = 7 * vg.Inch
)

// SavePNG draws the resampled butterfly and both inscribed squares to path.
// The image format follows the file extension, as plot.Save does.
func SavePNG(path, title string, env *snm.Envelope, res *snm.Result) error {
	p, err := butterflyPlot(title, env, res)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save butterfly plot: %w", err)
	}
	return nil
}

// WritePNG renders the same plot as SavePNG to w.
func WritePNG(w io.Writer, title string, env *snm.Envelope, res *snm.Result) error {
	p, err := butterflyPlot(title, env, res)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render butterfly plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func butterflyPlot(title string, env *snm.Envelope, res *snm.Result) (*plot.Plot, error) {
	if env == nil || env.Len() == 0 {
		return nil, fmt.Errorf("no envelope to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "V(Q) (V)"
	p.Y.Label.Text = "V(Qb) (V)"
	p.X.Min, p.X.Max = env.X[0], env.X[env.Len()-1]
	p.Y.Min, p.Y.Max = p.X.Min, p.X.Max
	p.Add(plotter.NewGrid())

	colors := generateColors(4)

	for i, c := range []struct {
		name string
		ys   []float64
	}{
		{"Q vs Qb", env.A},
		{"Qb vs Q", env.B},
	} {
		line, err := plotter.NewLine(curveXYs(env.X, c.ys))
		if err != nil {
			return nil, err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(c.name, line)
	}

	if res != nil {
		for i, sq := range []struct {
			name string
			pl   *snm.Placement
		}{
			{"left square", res.LeftPlacement},
			{"right square", res.RightPlacement},
		} {
			if sq.pl == nil {
				continue
			}
			poly, err := plotter.NewPolygon(squareXYs(*sq.pl))
			if err != nil {
				return nil, err
			}
			c := colors[2+i]
			poly.LineStyle.Color = c
			poly.LineStyle.Width = vg.Points(1)
			poly.Color = withAlpha(c, 0x40)
			p.Add(poly)
			p.Legend.Add(fmt.Sprintf("%s %.4f V", sq.name, sq.pl.Side), poly)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

func curveXYs(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

func squareXYs(pl snm.Placement) plotter.XYs {
	corners := pl.Corners()
	pts := make(plotter.XYs, len(corners))
	for i, c := range corners {
		pts[i] = plotter.XY{X: c.X, Y: c.Y}
	}
	return pts
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	// Premultiplied alpha.
	scale := func(v uint32) uint8 { return uint8((v >> 8) * uint32(a) / 0xff) }
	return color.RGBA{R: scale(r), G: scale(g), B: scale(b), A: a}
}

// generateColors creates a palette of n evenly spaced hues.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

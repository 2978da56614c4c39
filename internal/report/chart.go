package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/snm.report/internal/snm"
)

// maxChartPoints bounds the samples per curve sent to the browser.
const maxChartPoints = 2000

// RenderHTML writes a standalone go-echarts page showing the butterfly and
// the outlines of both inscribed squares.
func RenderHTML(w io.Writer, title string, env *snm.Envelope, res *snm.Result) error {
	if env == nil || env.Len() == 0 {
		return fmt.Errorf("no envelope to chart")
	}

	lo, hi := env.X[0], env.X[env.Len()-1]
	subtitle := fmt.Sprintf("grid=%d", env.Len())
	if res != nil {
		subtitle = fmt.Sprintf("SNM=%.6f V left=%.6f V right=%.6f V split=%d", res.SNM, res.Left, res.Right, res.Split)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "800px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: lo, Max: hi, Name: "V(Q) (V)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: lo, Max: hi, Name: "V(Qb) (V)", NameLocation: "middle", NameGap: 40}),
	)

	curveOpts := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	line.AddSeries("Q vs Qb", curveData(env.X, env.A), curveOpts,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#1f77b4", Width: 2}))
	line.AddSeries("Qb vs Q", curveData(env.X, env.B), curveOpts,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#ff7f0e", Width: 2}))

	if res != nil {
		for _, sq := range []struct {
			name  string
			pl    *snm.Placement
			color string
		}{
			{"left square", res.LeftPlacement, "#2ca02c"},
			{"right square", res.RightPlacement, "#d62728"},
		} {
			if sq.pl == nil {
				continue
			}
			line.AddSeries(sq.name, squareData(*sq.pl), curveOpts,
				charts.WithLineStyleOpts(opts.LineStyle{Color: sq.color, Width: 1.5, Type: "dashed"}))
		}
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func curveData(x, y []float64) []opts.LineData {
	stride := 1
	if len(x) > maxChartPoints {
		stride = (len(x) + maxChartPoints - 1) / maxChartPoints
	}
	data := make([]opts.LineData, 0, len(x)/stride+2)
	for i := 0; i < len(x); i += stride {
		data = append(data, opts.LineData{Value: []interface{}{x[i], y[i]}})
	}
	// Keep the right end of the grid.
	if last := len(x) - 1; last%stride != 0 {
		data = append(data, opts.LineData{Value: []interface{}{x[last], y[last]}})
	}
	return data
}

// squareData traces the square's outline, closing back at the first corner.
func squareData(pl snm.Placement) []opts.LineData {
	corners := pl.Corners()
	data := make([]opts.LineData, 0, len(corners)+1)
	for _, c := range corners {
		data = append(data, opts.LineData{Value: []interface{}{c.X, c.Y}})
	}
	return append(data, data[0])
}

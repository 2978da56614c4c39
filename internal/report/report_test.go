package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/snm.report/internal/snm"
)

// crossedLines builds a small butterfly from two straight lines crossing at
// the centre of the unit square.
func crossedLines(t *testing.T) (*snm.Envelope, *snm.Result) {
	t.Helper()
	a := snm.Curve{{X: 0, Y: 1}, {X: 1, Y: 0}}
	b := snm.Curve{{X: 0, Y: 0}, {X: 1, Y: 1}}
	env, err := snm.BuildEnvelope(a, b, 1, 101)
	require.NoError(t, err)
	res, err := snm.Solve(env, snm.DefaultConfig())
	require.NoError(t, err)
	return env, res
}

func TestWriteText(t *testing.T) {
	res := &snm.Result{
		SNM:           0.25,
		Left:          0.25,
		Right:         0.3,
		LeftPlacement: &snm.Placement{X0: 0.1, Y0: 0.2, Side: 0.25},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, "HOLD (HSNM)", res, "V"))

	rule := strings.Repeat("=", 70)
	want := "\n" + rule + "\nHOLD (HSNM)\n" + rule + "\n" +
		"SNM (reported)      : 0.250000 V  (250.0 mV)\n" +
		"SNM_left  (lobe)    : 0.250000 V  (250.0 mV)\n" +
		"SNM_right (lobe)    : 0.300000 V  (300.0 mV)\n" +
		"\n" +
		"LEFT lobe (max-square side = 0.250000 V):\n" +
		"  P1 bottom-left : (0.100000, 0.200000)\n" +
		"  P2 bottom-right: (0.350000, 0.200000)\n" +
		"  P3 top-right   : (0.350000, 0.450000)\n" +
		"  P4 top-left    : (0.100000, 0.450000)\n" +
		"\n" +
		"RIGHT lobe: no square\n" +
		rule + "\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteText mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteText_Units(t *testing.T) {
	res := &snm.Result{SNM: 0.012, Left: 0.012, Right: 0.5}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, "READ", res, "uV"))
	assert.Contains(t, buf.String(), "SNM (reported)      : 0.012000 V  (12000 uV)")

	buf.Reset()
	require.NoError(t, WriteText(&buf, "READ", res, "mV"))
	assert.Contains(t, buf.String(), "(12.0 mV)")
}

func TestWriteText_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteText(&buf, "x", nil, "V"))
	assert.Error(t, WriteText(&buf, "x", &snm.Result{}, "kV"))
	assert.Zero(t, buf.Len())
}

func TestSavePNG(t *testing.T) {
	env, res := crossedLines(t)
	require.NotNil(t, res.LeftPlacement)

	path := filepath.Join(t.TempDir(), "hold.png")
	require.NoError(t, SavePNG(path, "HOLD (HSNM)", env, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "file is not a PNG")
}

func TestWritePNG(t *testing.T) {
	env, res := crossedLines(t)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, "READ (RSNM)", env, res))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "output is not a PNG")

	// Curves alone still plot.
	buf.Reset()
	require.NoError(t, WritePNG(&buf, "curves", env, nil))
	assert.NotZero(t, buf.Len())
}

func TestRenderHTML(t *testing.T) {
	env, res := crossedLines(t)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "HOLD (HSNM)", env, res))

	html := buf.String()
	assert.Contains(t, html, "HOLD (HSNM)")
	assert.Contains(t, html, "Q vs Qb")
	assert.Contains(t, html, "left square")
	assert.Contains(t, html, "right square")
}

func TestPlotsRejectMissingEnvelope(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderHTML(&buf, "x", nil, nil))
	assert.Error(t, WritePNG(&buf, "x", &snm.Envelope{}, nil))
	assert.Error(t, SavePNG(filepath.Join(t.TempDir(), "x.png"), "x", nil, nil))
}

func TestCurveData_Decimates(t *testing.T) {
	n := 20001
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	data := curveData(x, x)
	assert.LessOrEqual(t, len(data), maxChartPoints+1)

	last := data[len(data)-1].Value.([]interface{})
	assert.Equal(t, float64(n-1), last[0], "right end of the grid must be kept")

	small := curveData([]float64{0, 1, 2}, []float64{0, 1, 2})
	assert.Len(t, small, 3)
}

func TestSquareData_Closed(t *testing.T) {
	data := squareData(snm.Placement{X0: 0.1, Y0: 0.2, Side: 0.3})
	require.Len(t, data, 5)
	assert.Equal(t, data[0], data[4])
}

package snm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(x0, y0, x1, y1 float64) Curve {
	return Curve{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

func TestBuildEnvelope_Grid(t *testing.T) {
	env, err := BuildEnvelope(line(0, 0, 1, 1), line(0, 1, 1, 0), 1, 11)
	require.NoError(t, err)

	require.Equal(t, 11, env.Len())
	assert.Equal(t, 0.0, env.X[0])
	assert.InDelta(t, 1.0, env.X[10], 1e-15)
	for i := 1; i < env.Len(); i++ {
		assert.InDelta(t, 0.1, env.X[i]-env.X[i-1], 1e-12)
	}
}

func TestBuildEnvelope_UpperAboveLower(t *testing.T) {
	a := Curve{{0, 0.2}, {0.3, 1.4}, {0.9, 0.1}, {1.5, 1.7}, {1.8, 0.4}}
	b := Curve{{0, 1.1}, {0.6, 0.3}, {1.2, 1.6}, {1.8, 0.9}}

	env, err := BuildEnvelope(a, b, 1.8, 401)
	require.NoError(t, err)

	for i := range env.X {
		if env.Upper[i] < env.Lower[i] {
			t.Fatalf("upper[%d]=%v below lower[%d]=%v", i, env.Upper[i], i, env.Lower[i])
		}
		assert.Equal(t, math.Max(env.A[i], env.B[i]), env.Upper[i])
		assert.Equal(t, math.Min(env.A[i], env.B[i]), env.Lower[i])
	}
}

func TestBuildEnvelope_InterpolatesAndClamps(t *testing.T) {
	// Curve A covers only [0.25, 0.75]; outside it holds its end values.
	a := Curve{{0.75, 3}, {0.25, 1}}
	b := line(0, 0, 1, 0)

	env, err := BuildEnvelope(a, b, 1, 5)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1, 2, 3, 3}, env.A)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, env.B)
}

func TestBuildEnvelope_DropsMissingSamples(t *testing.T) {
	nan := math.NaN()
	a := Curve{{0, 0}, {nan, 5}, {0.5, nan}, {1, 1}}
	b := Curve{{nan, nan}, {0, 1}, {1, 0}}

	env, err := BuildEnvelope(a, b, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.5, 1}, env.A)
	assert.Equal(t, []float64{1, 0.5, 0}, env.B)
}

func TestBuildEnvelope_DuplicateXAveraged(t *testing.T) {
	a := Curve{{0, 0}, {0.5, 1}, {0.5, 3}, {1, 2}}
	b := line(0, 0, 1, 0)

	env, err := BuildEnvelope(a, b, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 2}, env.A)
}

func TestBuildEnvelope_SingleAbscissaIsFlat(t *testing.T) {
	a := Curve{{0.4, 1}, {0.4, 2}}
	b := line(0, 0, 1, 0)

	env, err := BuildEnvelope(a, b, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1.5, 1.5, 1.5}, env.A)
}

func TestBuildEnvelope_Errors(t *testing.T) {
	nan := math.NaN()
	good := line(0, 0, 1, 1)

	tests := []struct {
		name     string
		a, b     Curve
		xMax     float64
		gridSize int
		want     error
	}{
		{"empty curve A", nil, good, 1, 10, ErrInsufficientSamples},
		{"one valid point in B", good, Curve{{0, 1}, {nan, 2}}, 1, 10, ErrInsufficientSamples},
		{"all missing", Curve{{nan, nan}, {nan, 1}}, good, 1, 10, ErrInsufficientSamples},
		{"grid of one", good, good, 1, 1, ErrInvalidWindow},
		{"grid of zero", good, good, 1, 0, ErrInvalidWindow},
		{"zero domain", good, good, 0, 10, ErrInvalidDomain},
		{"NaN domain", good, good, nan, 10, ErrInvalidDomain},
		{"infinite domain", good, good, math.Inf(1), 10, ErrInvalidDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildEnvelope(tt.a, tt.b, tt.xMax, tt.gridSize)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCurveValid_KeepsOrder(t *testing.T) {
	nan := math.NaN()
	c := Curve{{3, 1}, {nan, 0}, {1, 2}, {2, nan}, {0, 0}}
	assert.Equal(t, Curve{{3, 1}, {1, 2}, {0, 0}}, c.Valid())
}

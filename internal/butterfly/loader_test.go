package butterfly

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/snm.report/internal/monitoring"
)

const sampleCSV = "Q vs Qb X,Q vs Qb Y,Qb vs Q X,Qb vs Q Y\n" +
	"0,1.8,1.8,0\n" +
	"0.9,0.9,0.9,0.9\n" +
	"1.8,0,0,1.8\n" +
	"1.85,0.01,,\n"

func TestRead_DefaultColumns(t *testing.T) {
	a, b, err := Read(strings.NewReader(sampleCSV), DefaultColumns())
	require.NoError(t, err)

	require.Len(t, a, 4)
	require.Len(t, b, 4)
	assert.Equal(t, 0.9, a[1].X)
	assert.Equal(t, 0.9, a[1].Y)
	assert.Equal(t, 1.8, b[0].X)
	assert.Equal(t, 0.0, b[0].Y)

	assert.True(t, b[3].Missing())
	assert.Len(t, b.Valid(), 3)
	assert.Len(t, a.Valid(), 4)
}

func TestRead_ShortRowsAndNaNAreMissing(t *testing.T) {
	data := "Q vs Qb X,Q vs Qb Y,Qb vs Q X,Qb vs Q Y\n" +
		"0,1\n" +
		"NaN,2,0.5,nan\n" +
		"1, 0 ,1,1\n"

	a, b, err := Read(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)

	require.Len(t, a, 3)
	assert.False(t, a[0].Missing())
	assert.True(t, math.IsNaN(b[0].X))
	assert.True(t, a[1].Missing())
	assert.True(t, b[1].Missing())
	assert.Equal(t, pt(1, 0), a[2])
}

func TestRead_ColumnOrderAndBOM(t *testing.T) {
	data := "\ufeffQb vs Q Y, Qb vs Q X,Q vs Qb Y,Q vs Qb X,extra\n" +
		"4,3,2,1,99\n"

	a, b, err := Read(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)
	assert.Equal(t, pt(1, 2), a[0])
	assert.Equal(t, pt(3, 4), b[0])
}

func TestRead_CustomColumns(t *testing.T) {
	data := "vin,vout,vin2,vout2\n0,1,1,0\n"
	cols := Columns{AX: "vin", AY: "vout", BX: "vin2", BY: "vout2"}

	a, b, err := Read(strings.NewReader(data), cols)
	require.NoError(t, err)
	assert.Equal(t, pt(0, 1), a[0])
	assert.Equal(t, pt(1, 0), b[0])
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		is   error
	}{
		{"empty input", "", nil},
		{"missing column", "Q vs Qb X,Q vs Qb Y,Qb vs Q X\n0,0,0\n", ErrMissingColumn},
		{"not a number", "Q vs Qb X,Q vs Qb Y,Qb vs Q X,Qb vs Q Y\n0,abc,0,0\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.data), DefaultColumns())
			require.Error(t, err)
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, format)
	})

	path := filepath.Join(t.TempDir(), "Butterfly_hold.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	a, b, err := Load(path, DefaultColumns())
	require.NoError(t, err)
	assert.Len(t, a, 4)
	assert.Len(t, b, 4)
	assert.Len(t, logged, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), DefaultColumns())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

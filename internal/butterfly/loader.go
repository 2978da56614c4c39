// Package butterfly reads butterfly-plot exports into the pair of transfer
// curves consumed by the snm package.
package butterfly

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/snm.report/internal/monitoring"
	"github.com/banshee-data/snm.report/internal/snm"
)

// Columns names the four CSV columns holding the two curves.
type Columns struct {
	AX string `json:"a_x"`
	AY string `json:"a_y"`
	BX string `json:"b_x"`
	BY string `json:"b_y"`
}

// DefaultColumns returns the headers written by the simulator's butterfly
// export: Q plotted against Qb, and the mirrored Qb against Q.
func DefaultColumns() Columns {
	return Columns{
		AX: "Q vs Qb X",
		AY: "Q vs Qb Y",
		BX: "Qb vs Q X",
		BY: "Qb vs Q Y",
	}
}

// ErrMissingColumn is returned when the header lacks one of the curve columns.
var ErrMissingColumn = errors.New("missing column")

// Load reads a butterfly CSV file.
func Load(path string, cols Columns) (a, b snm.Curve, err error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open butterfly file: %w", err)
	}
	defer f.Close()

	a, b, err = Read(f, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	monitoring.Logf("loaded butterfly %s: %d/%d rows in curve A, %d/%d in curve B",
		filepath.Base(path), len(a.Valid()), len(a), len(b.Valid()), len(b))
	return a, b, nil
}

// Read parses butterfly CSV data with a header row.
//
// The two curves may have different lengths, so short rows and empty cells
// are read as missing values (NaN) rather than errors. Cells that are
// present but not numbers are errors.
func Read(r io.Reader, cols Columns) (a, b snm.Curve, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty butterfly file")
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx, err := columnIndex(header, cols)
	if err != nil {
		return nil, nil, err
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		var v [4]float64
		for j, col := range idx {
			if v[j], err = cell(record, col); err != nil {
				return nil, nil, fmt.Errorf("line %d, column %q: %w", line, header[col], err)
			}
		}
		a = append(a, snm.Point{X: v[0], Y: v[1]})
		b = append(b, snm.Point{X: v[2], Y: v[3]})
	}

	return a, b, nil
}

// columnIndex maps the four curve columns to header positions, in the order
// AX, AY, BX, BY.
func columnIndex(header []string, cols Columns) ([4]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var idx [4]int
	for j, name := range []string{cols.AX, cols.AY, cols.BX, cols.BY} {
		i, ok := pos[name]
		if !ok {
			return idx, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		idx[j] = i
	}
	return idx, nil
}

func cell(record []string, col int) (float64, error) {
	if col >= len(record) {
		return math.NaN(), nil
	}
	s := strings.TrimSpace(record[col])
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

package db

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/banshee-data/snm.report/internal/snm"
)

// newTestDB creates a migrated database in a temporary directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// sampleRun returns an unsaved run over a pair of crossed lines.
func sampleRun(label string, createdAt int64) *Run {
	a := snm.Curve{{X: 0, Y: 1}, {X: 1, Y: 0}}
	b := snm.Curve{{X: 0, Y: 0}, {X: 1, Y: 1}}
	cfg := snm.DefaultConfig()
	cfg.XMax, cfg.GridSize = 1, 101
	res := &snm.Result{
		SNM:            0.33,
		Left:           0.33,
		Right:          0.34,
		LeftPlacement:  &snm.Placement{X0: 0, Y0: 0.33, Side: 0.33},
		RightPlacement: &snm.Placement{X0: 0.66, Y0: 0, Side: 0.34},
		Split:          50,
		LeftLobe:       snm.Lobe{Lo: 0, Hi: 50},
		RightLobe:      snm.Lobe{Lo: 50, Hi: 100},
	}
	run := NewRun(label, "/data/"+label+".csv", cfg, a, b, res)
	run.CreatedAt = createdAt
	return run
}

func nan() float64 {
	return math.NaN()
}

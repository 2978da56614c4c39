package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/snm.report/internal/snm"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted SNM computation together with the curves it was
// computed from, so charts can be rebuilt later.
type Run struct {
	RunID         string     `json:"run_id"`
	Label         string     `json:"label"`
	SourcePath    string     `json:"source_path,omitempty"`
	XMax          float64    `json:"x_max"`
	GridSize      int        `json:"grid_size"`
	Tolerance     float64    `json:"tolerance"`
	MaxIterations int        `json:"max_iterations"`
	Result        snm.Result `json:"result"`
	CurveA        snm.Curve  `json:"curve_a,omitempty"`
	CurveB        snm.Curve  `json:"curve_b,omitempty"`
	CreatedAt     int64      `json:"created_at"`
}

// NewRun records a result with the settings and curves that produced it.
// Missing samples are dropped from the stored curves.
func NewRun(label, sourcePath string, cfg snm.Config, a, b snm.Curve, res *snm.Result) *Run {
	return &Run{
		Label:         label,
		SourcePath:    sourcePath,
		XMax:          cfg.XMax,
		GridSize:      cfg.GridSize,
		Tolerance:     cfg.Search.Tolerance,
		MaxIterations: cfg.Search.MaxIterations,
		Result:        *res,
		CurveA:        a.Valid(),
		CurveB:        b.Valid(),
	}
}

// Config returns the engine settings the run was computed with.
func (r *Run) Config() snm.Config {
	return snm.Config{
		XMax:     r.XMax,
		GridSize: r.GridSize,
		Search: snm.SearchConfig{
			Tolerance:     r.Tolerance,
			MaxIterations: r.MaxIterations,
		},
	}
}

// Envelope rebuilds the resampled curves for plotting.
func (r *Run) Envelope() (*snm.Envelope, error) {
	return snm.BuildEnvelope(r.CurveA, r.CurveB, r.XMax, r.GridSize)
}

// RunStore provides persistence for SNM runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB}
}

// Insert persists a run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	curveA, err := json.Marshal(run.CurveA.Valid())
	if err != nil {
		return fmt.Errorf("marshal curve A: %w", err)
	}
	curveB, err := json.Marshal(run.CurveB.Valid())
	if err != nil {
		return fmt.Errorf("marshal curve B: %w", err)
	}

	var sourcePath interface{}
	if run.SourcePath != "" {
		sourcePath = run.SourcePath
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO snm_runs (
				run_id, label, source_path, x_max, grid_size, tolerance, max_iterations,
				snm, snm_left, snm_right, split_index,
				result_json, curve_a_json, curve_b_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Label, sourcePath, run.XMax, run.GridSize, run.Tolerance, run.MaxIterations,
			run.Result.SNM, run.Result.Left, run.Result.Right, run.Result.Split,
			string(resultJSON), string(curveA), string(curveB), run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// Get returns a single run, curves included.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, label, source_path, x_max, grid_size, tolerance, max_iterations,
		       result_json, curve_a_json, curve_b_json, created_at
		FROM snm_runs
		WHERE run_id = ?`, runID)

	var (
		r                      Run
		sourcePath             sql.NullString
		result, curveA, curveB string
	)
	err := row.Scan(
		&r.RunID, &r.Label, &sourcePath, &r.XMax, &r.GridSize, &r.Tolerance, &r.MaxIterations,
		&result, &curveA, &curveB, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.SourcePath = sourcePath.String

	if err := json.Unmarshal([]byte(result), &r.Result); err != nil {
		return nil, fmt.Errorf("decode result of run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(curveA), &r.CurveA); err != nil {
		return nil, fmt.Errorf("decode curve A of run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(curveB), &r.CurveB); err != nil {
		return nil, fmt.Errorf("decode curve B of run %s: %w", runID, err)
	}
	return &r, nil
}

// List returns the most recent runs, newest first, without their curves.
// A label filters to runs with that label; limit <= 0 means no limit.
func (s *RunStore) List(label string, limit int) ([]*Run, error) {
	query := `
		SELECT run_id, label, source_path, x_max, grid_size, tolerance, max_iterations,
		       result_json, created_at
		FROM snm_runs`
	var args []interface{}
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			r          Run
			sourcePath sql.NullString
			result     string
		)
		if err := rows.Scan(
			&r.RunID, &r.Label, &sourcePath, &r.XMax, &r.GridSize, &r.Tolerance, &r.MaxIterations,
			&result, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.SourcePath = sourcePath.String
		if err := json.Unmarshal([]byte(result), &r.Result); err != nil {
			return nil, fmt.Errorf("decode result of run %s: %w", r.RunID, err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// Delete removes a run by ID.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM snm_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil
	})
}

// Package api serves stored SNM runs over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/snm.report/internal/butterfly"
	"github.com/banshee-data/snm.report/internal/config"
	"github.com/banshee-data/snm.report/internal/db"
	"github.com/banshee-data/snm.report/internal/monitoring"
	"github.com/banshee-data/snm.report/internal/report"
	"github.com/banshee-data/snm.report/internal/snm"
	"github.com/banshee-data/snm.report/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxUploadBytes bounds CSV bodies accepted by the compute endpoint.
const maxUploadBytes = 32 << 20

// Server exposes stored runs and on-demand computation over HTTP.
type Server struct {
	store   *db.RunStore
	engine  snm.Config
	columns butterfly.Columns
	units   string
}

// NewServer serves runs from store. settings supplies the engine parameters
// for uploads and the display unit; nil uses the defaults.
func NewServer(store *db.RunStore, settings *config.SNMConfig) *Server {
	if settings == nil {
		settings = config.EmptySNMConfig()
	}
	return &Server{
		store:   store,
		engine:  settings.Engine(),
		columns: settings.GetColumns(),
		units:   settings.GetUnit(),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns a mux with the API and chart routes registered.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/{id}", s.showRun)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/runs/{id}/chart", s.showChart)
	mux.HandleFunc("/runs/{id}/plot.png", s.showPlot)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// RunSummary is a run as listed by /api/runs, margins in the requested unit.
type RunSummary struct {
	RunID     string  `json:"run_id"`
	Label     string  `json:"label"`
	SNM       float64 `json:"snm"`
	Left      float64 `json:"snm_left"`
	Right     float64 `json:"snm_right"`
	Units     string  `json:"units"`
	CreatedAt int64   `json:"created_at"`
}

func summarise(run *db.Run, unit string) RunSummary {
	return RunSummary{
		RunID:     run.RunID,
		Label:     run.Label,
		SNM:       units.ConvertVoltage(run.Result.SNM, unit),
		Left:      units.ConvertVoltage(run.Result.Left, unit),
		Right:     units.ConvertVoltage(run.Result.Right, unit),
		Units:     unit,
		CreatedAt: run.CreatedAt,
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRuns(w, r)
	case http.MethodPost:
		s.computeRun(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	unit := s.units
	if u := r.URL.Query().Get("unit"); u != "" {
		if !units.IsValid(u) {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid 'unit' parameter. Must be one of: %s", units.GetValidUnitsString()))
			return
		}
		unit = u
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.store.List(r.URL.Query().Get("label"), limit)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}

	summaries := make([]RunSummary, len(runs))
	for i, run := range runs {
		summaries[i] = summarise(run, unit)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		monitoring.Logf("failed to write runs: %v", err)
	}
}

// computeRun accepts a butterfly CSV body, computes its margin with the
// server's settings and stores the run under the label query parameter.
func (s *Server) computeRun(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	if label == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing 'label' parameter")
		return
	}

	a, b, err := butterfly.Read(http.MaxBytesReader(w, r.Body, maxUploadBytes), s.columns)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid butterfly CSV: %v", err))
		return
	}

	res, err := snm.Compute(a, b, s.engine)
	if err != nil {
		s.writeJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to compute SNM: %v", err))
		return
	}

	run := db.NewRun(label, "", s.engine, a, b, res)
	if err := s.store.Insert(run); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to store run: %v", err))
		return
	}
	monitoring.Logf("stored run %s (%s): SNM %s", run.RunID, label, units.FormatVoltage(res.SNM, s.units))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(summarise(run, s.units))
}

// loadRun fetches the run named in the path, writing the error response
// itself when it cannot.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return nil, false
	}
	run, err := s.store.Get(r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve run: %v", err))
		return nil, false
	}
	return run, true
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(run); err != nil {
		monitoring.Logf("failed to write run %s: %v", run.RunID, err)
	}
}

func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	env, err := run.Envelope()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to rebuild curves: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, run.Label, env, &run.Result); err != nil {
		monitoring.Logf("failed to render chart for run %s: %v", run.RunID, err)
	}
}

func (s *Server) showPlot(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	env, err := run.Envelope()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to rebuild curves: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := report.WritePNG(w, run.Label, env, &run.Result); err != nil {
		monitoring.Logf("failed to render plot for run %s: %v", run.RunID, err)
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	cfg := map[string]interface{}{
		"units":          s.units,
		"x_max":          s.engine.XMax,
		"grid_size":      s.engine.GridSize,
		"tolerance":      s.engine.Search.Tolerance,
		"max_iterations": s.engine.Search.MaxIterations,
		"columns":        s.columns,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		monitoring.Logf("failed to write config: %v", err)
	}
}

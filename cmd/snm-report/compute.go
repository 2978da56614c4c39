package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/snm.report/internal/butterfly"
	"github.com/banshee-data/snm.report/internal/config"
	"github.com/banshee-data/snm.report/internal/db"
	"github.com/banshee-data/snm.report/internal/monitoring"
	"github.com/banshee-data/snm.report/internal/report"
	"github.com/banshee-data/snm.report/internal/snm"
)

// job is one butterfly file to report on.
type job struct {
	label string
	path  string
}

// parseJobs turns -hold, -read and label=path arguments into jobs, in that
// order. A bare path is labelled with its file name.
func parseJobs(args []string, hold, read string) ([]job, error) {
	var jobs []job
	if hold != "" {
		jobs = append(jobs, job{label: "HOLD (HSNM)", path: hold})
	}
	if read != "" {
		jobs = append(jobs, job{label: "READ (RSNM)", path: read})
	}
	for _, arg := range args {
		label, path, ok := strings.Cut(arg, "=")
		if !ok {
			path = arg
			label = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		}
		if label == "" || path == "" {
			return nil, fmt.Errorf("invalid butterfly argument %q, want label=file.csv", arg)
		}
		jobs = append(jobs, job{label: label, path: path})
	}
	if len(jobs) == 0 {
		return nil, errors.New("no butterfly files given")
	}
	return jobs, nil
}

// runner computes and reports each job with one set of settings.
type runner struct {
	settings *config.SNMConfig
	plotDir  string
	store    *db.RunStore // nil disables persistence
	out      io.Writer
}

func (r *runner) run(jobs []job) error {
	if r.plotDir != "" {
		if err := os.MkdirAll(r.plotDir, 0o755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
	}
	for _, j := range jobs {
		if err := r.runJob(j); err != nil {
			return fmt.Errorf("%s: %w", j.label, err)
		}
	}
	return nil
}

func (r *runner) runJob(j job) error {
	a, b, err := butterfly.Load(j.path, r.settings.GetColumns())
	if err != nil {
		return err
	}

	cfg := r.settings.Engine()
	start := time.Now()
	env, err := snm.BuildEnvelope(a, b, cfg.XMax, cfg.GridSize)
	if err != nil {
		return err
	}
	res, err := snm.Solve(env, cfg)
	if err != nil {
		return err
	}
	monitoring.Debugf("%s: solved %d-point grid in %v, split at %d", j.label, cfg.GridSize, time.Since(start), res.Split)

	if err := report.WriteText(r.out, j.label, res, r.settings.GetUnit()); err != nil {
		return err
	}

	if r.plotDir != "" {
		if err := r.writePlots(j, env, res); err != nil {
			return err
		}
	}

	if r.store != nil {
		run := db.NewRun(j.label, j.path, cfg, a, b, res)
		if err := r.store.Insert(run); err != nil {
			return err
		}
		monitoring.Logf("stored %s as run %s", j.label, run.RunID)
	}
	return nil
}

func (r *runner) writePlots(j job, env *snm.Envelope, res *snm.Result) error {
	base := filepath.Join(r.plotDir, slug(j.label))

	if err := report.SavePNG(base+".png", j.label, env, res); err != nil {
		return err
	}

	f, err := os.Create(base + ".html")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := report.RenderHTML(f, j.label, env, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	monitoring.Logf("wrote %s.png and %s.html", base, base)
	return nil
}

// slug makes a label safe to use as a file name: "HOLD (HSNM)" becomes "hold_hsnm".
func slug(label string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			underscore = false
		case !underscore && b.Len() > 0:
			b.WriteByte('_')
			underscore = true
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "butterfly"
	}
	return s
}

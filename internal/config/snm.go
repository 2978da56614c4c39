package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/snm.report/internal/butterfly"
	"github.com/banshee-data/snm.report/internal/snm"
	"github.com/banshee-data/snm.report/internal/units"
)

// DefaultConfigPath is the path to the canonical SNM defaults file.
const DefaultConfigPath = "config/snm.defaults.json"

// SNMConfig represents the root configuration for margin extraction.
// Every field is optional; the Get* methods fall back to defaults so a
// partial file only overrides what it names.
type SNMConfig struct {
	// Grid
	XMax     *float64 `json:"x_max,omitempty"` // supply voltage, upper end of the grid
	GridSize *int     `json:"grid_size,omitempty"`

	// Square search
	Tolerance     *float64 `json:"tolerance,omitempty"` // relative to the search bound
	MaxIterations *int     `json:"max_iterations,omitempty"`
	ParallelLobes *bool    `json:"parallel_lobes,omitempty"`

	// CSV columns
	ColumnAX *string `json:"column_a_x,omitempty"`
	ColumnAY *string `json:"column_a_y,omitempty"`
	ColumnBX *string `json:"column_b_x,omitempty"`
	ColumnBY *string `json:"column_b_y,omitempty"`

	// Report
	Unit *string `json:"unit,omitempty"`
}

// EmptySNMConfig returns an SNMConfig with all fields set to nil.
func EmptySNMConfig() *SNMConfig {
	return &SNMConfig{}
}

// LoadSNMConfig loads an SNMConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadSNMConfig(path string) (*SNMConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySNMConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *SNMConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSNMConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SNMConfig) Validate() error {
	if c.XMax != nil {
		if !(*c.XMax > 0) || math.IsInf(*c.XMax, 0) {
			return fmt.Errorf("x_max must be a positive finite number, got %v", *c.XMax)
		}
	}

	if c.GridSize != nil && *c.GridSize < 2 {
		return fmt.Errorf("grid_size must be at least 2, got %d", *c.GridSize)
	}

	if c.Tolerance != nil {
		if *c.Tolerance < 0 || *c.Tolerance >= 1 || math.IsNaN(*c.Tolerance) {
			return fmt.Errorf("tolerance must be in [0, 1), got %v", *c.Tolerance)
		}
	}

	if c.MaxIterations != nil {
		if *c.MaxIterations < 1 || *c.MaxIterations > 1000 {
			return fmt.Errorf("max_iterations must be between 1 and 1000, got %d", *c.MaxIterations)
		}
	}

	// A zero tolerance relies on the iteration cap alone.
	if c.Tolerance != nil && *c.Tolerance == 0 && c.MaxIterations == nil {
		return fmt.Errorf("tolerance 0 requires max_iterations")
	}

	for name, col := range map[string]*string{
		"column_a_x": c.ColumnAX, "column_a_y": c.ColumnAY,
		"column_b_x": c.ColumnBX, "column_b_y": c.ColumnBY,
	} {
		if col != nil && *col == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}

	if c.Unit != nil && !units.IsValid(*c.Unit) {
		return fmt.Errorf("unit must be one of %s, got %q", units.GetValidUnitsString(), *c.Unit)
	}

	return nil
}

// GetXMax returns the x_max value or the default.
func (c *SNMConfig) GetXMax() float64 {
	if c.XMax == nil {
		return 1.8
	}
	return *c.XMax
}

// GetGridSize returns the grid_size value or the default.
func (c *SNMConfig) GetGridSize() int {
	if c.GridSize == nil {
		return 20001
	}
	return *c.GridSize
}

// GetTolerance returns the tolerance value or the default.
func (c *SNMConfig) GetTolerance() float64 {
	if c.Tolerance == nil {
		return snm.DefaultSearchConfig().Tolerance
	}
	return *c.Tolerance
}

// GetMaxIterations returns the max_iterations value or the default.
func (c *SNMConfig) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return snm.DefaultSearchConfig().MaxIterations
	}
	return *c.MaxIterations
}

// GetParallelLobes returns the parallel_lobes value or the default.
func (c *SNMConfig) GetParallelLobes() bool {
	if c.ParallelLobes == nil {
		return false
	}
	return *c.ParallelLobes
}

// GetUnit returns the report unit or the default.
func (c *SNMConfig) GetUnit() string {
	if c.Unit == nil {
		return units.V
	}
	return *c.Unit
}

// GetColumns returns the CSV column names, filling unset ones from
// butterfly.DefaultColumns.
func (c *SNMConfig) GetColumns() butterfly.Columns {
	cols := butterfly.DefaultColumns()
	if c.ColumnAX != nil {
		cols.AX = *c.ColumnAX
	}
	if c.ColumnAY != nil {
		cols.AY = *c.ColumnAY
	}
	if c.ColumnBX != nil {
		cols.BX = *c.ColumnBX
	}
	if c.ColumnBY != nil {
		cols.BY = *c.ColumnBY
	}
	return cols
}

// Engine returns the snm.Config described by this configuration.
func (c *SNMConfig) Engine() snm.Config {
	return snm.Config{
		XMax:     c.GetXMax(),
		GridSize: c.GetGridSize(),
		Search: snm.SearchConfig{
			Tolerance:     c.GetTolerance(),
			MaxIterations: c.GetMaxIterations(),
		},
		ParallelLobes: c.GetParallelLobes(),
	}
}

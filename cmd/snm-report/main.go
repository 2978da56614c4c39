// Command snm-report computes static noise margins from butterfly CSV
// exports, and serves or migrates the run database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/snm.report/internal/config"
	"github.com/banshee-data/snm.report/internal/db"
	"github.com/banshee-data/snm.report/internal/monitoring"
	"github.com/banshee-data/snm.report/internal/units"
	"github.com/banshee-data/snm.report/internal/version"
)

const defaultDBPath = "snm_runs.db"

func usage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, "  snm-report [flags] [label=]file.csv ...")
		fmt.Fprintln(out, "  snm-report serve [-db path] [-listen addr] [-config path]")
		fmt.Fprintln(out, "  snm-report migrate [-db path] <up|down|status|version N|force N>")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Flags:")
		fs.PrintDefaults()
	}
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			serveMain(os.Args[2:])
			return
		case "migrate":
			migrateMain(os.Args[2:])
			return
		}
	}
	computeMain(os.Args[1:])
}

// settingsFlags are shared by compute and serve.
type settingsFlags struct {
	fs         *flag.FlagSet
	configPath *string
	vdd        *float64
	grid       *int
	unit       *string
	parallel   *bool
}

func addSettingsFlags(fs *flag.FlagSet) settingsFlags {
	return settingsFlags{
		fs:         fs,
		configPath: fs.String("config", "", "JSON settings file (defaults apply when empty)"),
		vdd:        fs.Float64("vdd", 0, "Supply voltage, upper end of the grid (overrides config)"),
		grid:       fs.Int("grid", 0, "Number of grid samples (overrides config)"),
		unit:       fs.String("unit", "", "Display unit: "+units.GetValidUnitsString()+" (overrides config)"),
		parallel:   fs.Bool("parallel", false, "Solve both lobes concurrently"),
	}
}

// load reads the config file, if any, and applies flag overrides.
func (f settingsFlags) load() (*config.SNMConfig, error) {
	settings := config.EmptySNMConfig()
	if *f.configPath != "" {
		var err error
		if settings, err = config.LoadSNMConfig(*f.configPath); err != nil {
			return nil, err
		}
	}
	// Only flags given on the command line override the file.
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "vdd":
			settings.XMax = f.vdd
		case "grid":
			settings.GridSize = f.grid
		case "unit":
			settings.Unit = f.unit
		case "parallel":
			settings.ParallelLobes = f.parallel
		}
	})
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func computeMain(args []string) {
	fs := flag.NewFlagSet("snm-report", flag.ExitOnError)
	fs.Usage = usage(fs)
	sf := addSettingsFlags(fs)
	hold := fs.String("hold", "", "Hold butterfly CSV, reported as HOLD (HSNM)")
	read := fs.String("read", "", "Read butterfly CSV, reported as READ (RSNM)")
	plotDir := fs.String("plot-dir", "", "Write PNG and HTML plots of each butterfly to this directory")
	dbPath := fs.String("db", "", "Store runs in this SQLite database")
	verbose := fs.Bool("verbose", false, "Log diagnostic detail")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("snm-report", version.String())
		return
	}
	monitoring.SetVerbose(*verbose)

	jobs, err := parseJobs(fs.Args(), *hold, *read)
	if err != nil {
		fs.Usage()
		log.Fatal(err)
	}

	settings, err := sf.load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	var store *db.RunStore
	if *dbPath != "" {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		store = db.NewRunStore(database)
	}

	r := &runner{
		settings: settings,
		plotDir:  *plotDir,
		store:    store,
		out:      os.Stdout,
	}
	if err := r.run(jobs); err != nil {
		log.Fatal(err)
	}
}

func migrateMain(args []string) {
	fs := flag.NewFlagSet("snm-report migrate", flag.ExitOnError)
	fs.Usage = func() { db.PrintMigrateHelp(fs.Output()) }
	dbPath := fs.String("db", defaultDBPath, "SQLite database path")
	fs.Parse(args)

	db.RunMigrateCommand(fs.Args(), *dbPath)
}

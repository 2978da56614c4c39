package db

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching
func RunMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 || args[0] == "help" {
		PrintMigrateHelp(os.Stdout)
		if len(args) < 1 {
			os.Exit(1)
		}
		return
	}

	// Open without migrating; the command manages the schema itself.
	database, err := OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.runMigrate(args, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("migrate %s: %v", args[0], err)
	}
}

// runMigrate executes one migrate action. Confirmation for force is read
// from in; status output goes to out.
func (db *DB) runMigrate(args []string, in io.Reader, out io.Writer) error {
	migrations, err := getMigrationsFS()
	if err != nil {
		return err
	}

	switch action := args[0]; action {
	case "up":
		log.Printf("Running migrations...")
		if err := db.MigrateUp(migrations); err != nil {
			return err
		}
		return db.logVersion(migrations)

	case "down":
		log.Printf("Rolling back one migration...")
		if err := db.MigrateDown(migrations); err != nil {
			return err
		}
		return db.logVersion(migrations)

	case "status":
		status, err := db.GetMigrationStatus(migrations)
		if err != nil {
			return err
		}
		printStatus(out, status)
		return nil

	case "version":
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		log.Printf("Migrating to version %d...", v)
		if err := db.MigrateTo(migrations, uint(v)); err != nil {
			return err
		}
		return db.logVersion(migrations)

	case "force":
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "WARNING: Forcing migration version to %d\n", v)
		fmt.Fprintln(out, "This should only be used to recover from a dirty migration state.")
		fmt.Fprint(out, "Continue? [y/N]: ")
		if !confirmed(in) {
			log.Println("Aborted")
			return nil
		}
		if err := db.MigrateForce(migrations, v); err != nil {
			return err
		}
		log.Printf("Migration version forced to %d", v)
		return nil

	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("unknown migrate action %q", action)
	}
}

func versionArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: snm-report migrate %s <version_number>", args[0])
	}
	v, err := strconv.Atoi(args[1])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version number: %s", args[1])
	}
	return v, nil
}

func confirmed(in io.Reader) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

func (db *DB) logVersion(migrations fs.FS) error {
	version, dirty, err := db.MigrateVersion(migrations)
	if err != nil {
		return err
	}
	log.Printf("Current version: %d (dirty: %v)", version, dirty)
	return nil
}

func printStatus(out io.Writer, s *MigrationStatus) {
	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", s.Version)
	fmt.Fprintf(out, "Latest available: %d\n", s.Latest)
	fmt.Fprintf(out, "Dirty: %v\n", s.Dirty)

	switch {
	case s.Dirty:
		fmt.Fprintln(out, "\nWARNING: Database is in a dirty state!")
		fmt.Fprintln(out, "A migration failed mid-execution. Inspect the database, then run:")
		fmt.Fprintln(out, "  snm-report migrate force <version>")
	case s.Pending() > 0:
		fmt.Fprintf(out, "\nDatabase is %d version(s) behind. Run 'snm-report migrate up' to update.\n", s.Pending())
	default:
		fmt.Fprintln(out, "\nDatabase is up to date.")
	}
}

// PrintMigrateHelp displays the help message for the migrate command
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprintln(w, "Database Migration Commands")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: snm-report migrate [-db path] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  up              Apply all pending migrations")
	fmt.Fprintln(w, "  down            Rollback one migration")
	fmt.Fprintln(w, "  status          Show current migration status and version")
	fmt.Fprintln(w, "  version <N>     Migrate to specific version N")
	fmt.Fprintln(w, "  force <N>       Force migration version to N (recovery only)")
	fmt.Fprintln(w, "  help            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  snm-report migrate up")
	fmt.Fprintln(w, "  snm-report migrate -db runs.db status")
	fmt.Fprintln(w, "  snm-report migrate version 1")
}

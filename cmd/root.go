// Package cmd implements the dayplan CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "dayplan",
	Short: "Turn free-text tasks into a conflict-free daily schedule",
	Long: `dayplan parses free-text task descriptions into structured tasks and
packs them into your work hours around blocked time and advisories.
Run dayplan with no arguments to open the day view.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		output.SetupColor(flagNoColor)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to planner directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// SilentError: exit with the code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("DAYPLAN_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error, wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the absolute path to the planner directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	return config.FindDir(cwd)
}

// loadConfig finds and loads the planner config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// openStore builds the session store selected by storage.backend. The
// returned cleanup is a no-op for the file backend and closes the pool for
// postgres.
func openStore(cmd *cobra.Command, cfg *config.Config) (session.Store, func(), error) {
	if cfg.Storage.Backend != config.BackendPostgres {
		return session.NewFileStore(cfg), func() {}, nil
	}

	ctx := cmd.Context()
	pool, err := session.OpenPg(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, err
	}

	loc, err := cfg.Preferences.Location()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	st := session.NewPgStore(ctx, pool, loc)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, clierr.Newf(clierr.StoreError, "preparing postgres schema: %v", err)
	}
	return st, pool.Close, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printStoreWarnings writes task read warnings (file backend only) to stderr.
func printStoreWarnings(st session.Store) {
	fs, ok := st.(*session.FileStore)
	if !ok {
		return
	}
	for _, w := range fs.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: skipping malformed file %s: %v\n", w.File, w.Err)
	}
}

// logActivity appends an entry to the activity log. Errors are silently
// discarded because logging should never fail a command.
func logActivity(cfg *config.Config, action, taskID, detail string) {
	session.LogMutation(cfg.Dir(), action, taskID, detail)
}

// resolveDateFlag parses a --date style value, defaulting to today in the
// configured timezone when empty.
func resolveDateFlag(value string, prefs config.Preferences) (date.Date, error) {
	if value == "" {
		loc, err := prefs.Location()
		if err != nil {
			return date.Date{}, err
		}
		return date.FromTime(time.Now().In(loc)), nil
	}
	d, err := date.Parse(value)
	if err != nil {
		return date.Date{}, clierr.Newf(clierr.InvalidDate, "invalid date %q: expected YYYY-MM-DD", value)
	}
	return d, nil
}

// resolveNowFlag parses a --now override (RFC 3339), defaulting to the wall
// clock in the configured timezone. Extraction and reminders stay replayable
// because the injected instant, not the clock, drives them.
func resolveNowFlag(value string, prefs config.Preferences) (time.Time, error) {
	loc, err := prefs.Location()
	if err != nil {
		return time.Time{}, err
	}
	if value == "" {
		return time.Now().In(loc), nil
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// A bare date is accepted and anchors to the start of that day.
		d, derr := date.Parse(value)
		if derr != nil {
			return time.Time{}, clierr.Newf(clierr.InvalidDate,
				"invalid --now %q: expected RFC 3339 or YYYY-MM-DD", value)
		}
		return d.At(0, 0, loc), nil
	}
	return now.In(loc), nil
}

// findTaskByID loads one task from the store by exact id.
func findTaskByID(st session.Store, id string) (*task.Task, error) {
	tasks, err := st.Tasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, clierr.NotFound(id)
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []string, fn func(string) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		err := fn(id)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{ID: id, OK: true})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

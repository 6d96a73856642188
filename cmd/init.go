package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new planner directory",
	Long:  `Creates a planner directory with config.yml plus tasks/ and schedules/ subdirectories.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("work-hours", "", "work-hours window (format: HH:MM-HH:MM)")
	initCmd.Flags().String("timezone", "", "IANA timezone identifier (default UTC)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	// Check if already initialized.
	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.PlannerExists, "planner already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := config.NewDefault()
	cfg.SetDir(absDir)

	if hours, _ := cmd.Flags().GetString("work-hours"); hours != "" {
		start, end, ok := splitWindow(hours)
		if !ok {
			return clierr.Newf(clierr.InvalidInput,
				"invalid --work-hours %q (expected HH:MM-HH:MM)", hours)
		}
		cfg.Preferences.WorkHours = config.WorkHours{Start: start, End: end}
	}
	if tz, _ := cmd.Flags().GetString("timezone"); tz != "" {
		cfg.Preferences.Timezone = tz
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	const dirMode = 0o750
	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return fmt.Errorf("creating tasks directory: %w", err)
	}
	if err := os.MkdirAll(cfg.SchedulesPath(), dirMode); err != nil {
		return fmt.Errorf("creating schedules directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":     "initialized",
			"dir":        absDir,
			"config":     cfg.ConfigPath(),
			"tasks":      cfg.TasksPath(),
			"schedules":  cfg.SchedulesPath(),
			"work_hours": cfg.Preferences.WorkHours.Start + "-" + cfg.Preferences.WorkHours.End,
		})
	}

	output.Messagef(os.Stdout, "Initialized planner in %s", absDir)
	output.Messagef(os.Stdout, "  Config:     %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Tasks:      %s", cfg.TasksPath())
	output.Messagef(os.Stdout, "  Schedules:  %s", cfg.SchedulesPath())
	output.Messagef(os.Stdout, "  Work hours: %s-%s (%s)",
		cfg.Preferences.WorkHours.Start, cfg.Preferences.WorkHours.End, cfg.Preferences.Timezone)
	return nil
}

// splitWindow splits "HH:MM-HH:MM" into its bounds.
func splitWindow(s string) (start, end string, ok bool) {
	return strings.Cut(s, "-")
}

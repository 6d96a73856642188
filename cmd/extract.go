package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/extract"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var extractCmd = &cobra.Command{
	Use:   "extract TEXT",
	Short: "Parse free text into tasks without storing them",
	Long: `Runs the task extractor over the given text and prints what it found.
Nothing is written; use this to preview how a description will be parsed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("now", "", "reference instant for date words (RFC 3339; defaults to wall clock)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	// extract works without a planner directory; fall back to defaults.
	prefs := config.NewDefault().Preferences
	if cfg, err := loadConfig(); err == nil {
		prefs = cfg.Preferences
	}

	nowFlag, _ := cmd.Flags().GetString("now")
	now, err := resolveNowFlag(nowFlag, prefs)
	if err != nil {
		return err
	}

	loc, err := prefs.Location()
	if err != nil {
		return err
	}

	ex := extract.New(extract.Options{
		DefaultDuration: prefs.DefaultDuration,
		Location:        loc,
	})
	tasks := ex.Extract(strings.Join(args, " "), now)

	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}

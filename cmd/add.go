package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/extract"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add TEXT",
	Aliases: []string{"create"},
	Short:   "Add tasks from free text",
	Long: `Extracts one or more tasks from a free-text description and stores them.

The extractor reads priority markers ("urgent", "low priority"), durations
("for 2 hours"), due-date words ("by friday", "tomorrow"), recurrence
("daily", "weekly"), and infers tags. Flags override the extracted values.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("priority", "", "override priority (high, medium, low)")
	addCmd.Flags().Int("duration", 0, "override duration in minutes")
	addCmd.Flags().String("due", "", "override due date (YYYY-MM-DD)")
	addCmd.Flags().StringSlice("tags", nil, "override tags (comma-separated)")
	addCmd.Flags().String("recurrence", "", "override recurrence (daily, weekly)")
	addCmd.Flags().String("body", "", "task description (markdown)")
	addCmd.Flags().String("now", "", "reference instant for date words (RFC 3339; defaults to wall clock)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "tag":
			name = "tags"
		case "description":
			name = "body"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	nowFlag, _ := cmd.Flags().GetString("now")
	now, err := resolveNowFlag(nowFlag, cfg.Preferences)
	if err != nil {
		return err
	}

	loc, err := cfg.Preferences.Location()
	if err != nil {
		return err
	}

	ex := extract.New(extract.Options{
		DefaultDuration: cfg.Preferences.DefaultDuration,
		Location:        loc,
	})
	tasks := ex.Extract(strings.Join(args, " "), now)
	if len(tasks) == 0 {
		return clierr.New(clierr.InvalidInput, "no task found in input text")
	}

	// Re-derive ids against the store so a title added twice on the same
	// day gets its -2 suffix instead of overwriting.
	existing, err := st.Tasks()
	if err != nil {
		return err
	}
	printStoreWarnings(st)
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t.ID] = true
	}

	for _, t := range tasks {
		if err := applyAddFlags(cmd, t); err != nil {
			return err
		}
		t.ID = task.EnsureUniqueID(task.NewID(t.Title, date.FromTime(now.In(loc))), func(id string) bool {
			return taken[id]
		})
		taken[t.ID] = true

		if err := st.SaveTask(t); err != nil {
			return err
		}
		logActivity(cfg, session.ActionAdd, t.ID, t.Title)
	}

	return outputAddResult(tasks)
}

func applyAddFlags(cmd *cobra.Command, t *task.Task) error {
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		if err := task.ValidatePriority(v); err != nil {
			return err
		}
		t.Priority = v
	}
	if cmd.Flags().Changed("duration") {
		v, _ := cmd.Flags().GetInt("duration")
		if err := task.ValidateDuration(v); err != nil {
			return err
		}
		t.Duration = v
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return task.ValidateDate("due", v, err)
		}
		t.Due = &d
	}
	if v, _ := cmd.Flags().GetStringSlice("tags"); len(v) > 0 {
		t.Tags = v
	}
	if v, _ := cmd.Flags().GetString("recurrence"); v != "" {
		r := task.Recurrence(v)
		if err := task.ValidateRecurrence(r); err != nil {
			return err
		}
		t.Recurrence = r
	}
	if v, _ := cmd.Flags().GetString("body"); v != "" {
		t.Body = v
	}
	return nil
}

func outputAddResult(tasks []*task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	for _, t := range tasks {
		output.Messagef(os.Stdout, "Added task %s: %s", t.ID, t.Title)
		line := "  Priority: " + t.Priority + " | Duration: " + output.FormatMinutes(t.Duration)
		if t.Due != nil {
			line += " | Due: " + t.Due.String()
		}
		if t.Recurrence != task.RecurNone {
			line += " | Repeats: " + string(t.Recurrence)
		}
		output.Messagef(os.Stdout, "%s", line)
		if len(t.Tags) > 0 {
			output.Messagef(os.Stdout, "  Tags: %s", strings.Join(t.Tags, ", "))
		}
	}
	return nil
}

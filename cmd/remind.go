package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/reminder"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Show upcoming alerts and overdue tasks",
	Long: `Reports schedule blocks starting within the alert window and tasks
whose due date has passed. Pending tasks found past due are transitioned
to overdue so the next planning call still picks them up.`,
	RunE: runRemind,
}

func init() {
	remindCmd.Flags().String("now", "", "reference instant (RFC 3339; defaults to wall clock)")
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
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

	tasks, err := st.Tasks()
	if err != nil {
		return err
	}
	printStoreWarnings(st)

	// A missing schedule just means no alerts today.
	today := date.FromTime(now)
	sched, err := st.LoadSchedule(today)
	if err != nil {
		var cliErr *clierr.Error
		if !errors.As(err, &cliErr) || cliErr.Code != clierr.ScheduleNotFound {
			return err
		}
		sched = nil
	}

	report := reminder.Evaluate(now, sched, tasks, cfg.Preferences)

	// Persist pending→overdue transitions found during evaluation.
	if err := persistOverdue(st, tasks, today, now); err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, report)
	}
	if format == output.FormatCompact {
		output.ReminderCompact(os.Stdout, report)
		return nil
	}

	output.ReminderTable(os.Stdout, report)
	return nil
}

func persistOverdue(st session.Store, tasks []*task.Task, today date.Date, now time.Time) error {
	for _, t := range task.MarkOverdue(tasks, today, now) {
		if err := st.SaveTask(t); err != nil {
			return err
		}
	}
	return nil
}

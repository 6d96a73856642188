package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/dayplan/internal/advisory"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/output"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/session"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the schedule for a day",
	Long: `Places the day's eligible tasks into the work-hours window around
blocked time, splitting long tasks into focus blocks with breaks. Tasks
that fit nowhere are reported as unscheduled, never dropped.

Planning is deterministic: the same tasks, blocked time, preferences, and
advisories always produce the same schedule.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("date", "", "day to plan (YYYY-MM-DD, default today)")
	planCmd.Flags().Bool("dry-run", false, "compute the schedule without persisting anything")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	dateFlag, _ := cmd.Flags().GetString("date")
	day, err := resolveDateFlag(dateFlag, cfg.Preferences)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	tasks, err := st.Tasks()
	if err != nil {
		return err
	}
	printStoreWarnings(st)

	blocked, err := st.Blocked(day)
	if err != nil {
		return err
	}
	intervals := make([]timegrid.Interval, len(blocked))
	for i, b := range blocked {
		intervals[i] = b.Interval
	}

	// A failing advisory source means "no advisories", never an error.
	loc, err := cfg.Preferences.Location()
	if err != nil {
		return err
	}
	src := advisory.FileSource{Dir: cfg.Dir(), Loc: loc}
	advisories, err := src.Advisories(cmd.Context(), day)
	if err != nil {
		advisories = nil
	}

	sched, err := planner.Plan(planner.Request{
		Date:       day,
		Tasks:      tasks,
		Blocked:    intervals,
		Prefs:      cfg.Preferences,
		Advisories: advisories,
	})
	if err != nil {
		return err
	}

	if !dryRun {
		if err := persistPlan(cfg, st, sched, tasks); err != nil {
			return err
		}
	}

	return outputSchedule(sched, tasks)
}

// persistPlan saves the schedule and the status transitions the planner made.
func persistPlan(cfg *config.Config, st session.Store, sched *planner.Schedule, tasks []*task.Task) error {
	if err := st.SaveSchedule(sched); err != nil {
		return err
	}

	placed := make(map[string]bool)
	for _, id := range sched.ScheduledIDs() {
		placed[id] = true
	}
	for _, t := range tasks {
		if placed[t.ID] {
			if err := st.SaveTask(t); err != nil {
				return err
			}
		}
	}

	logActivity(cfg, session.ActionPlan, "", sched.Date.String())
	return nil
}

func outputSchedule(sched *planner.Schedule, tasks []*task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, sched)
	}
	if format == output.FormatCompact {
		output.ScheduleCompact(os.Stdout, sched)
		return nil
	}

	output.ScheduleTable(os.Stdout, sched, tasks)
	return nil
}

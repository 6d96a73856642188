package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/reminder"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	// Timestamps line.
	ts := "  created:" + t.Created.Format("2006-01-02") +
		" updated:" + t.Updated.Format("2006-01-02")
	if t.Completed != nil {
		ts += " completed:" + t.Completed.Format("2006-01-02")
	}
	fmt.Fprintln(w, ts)

	if t.Body != "" {
		for _, bodyLine := range strings.Split(t.Body, "\n") {
			fmt.Fprintln(w, "  "+bodyLine)
		}
	}
}

// ScheduleCompact renders a schedule in compact format.
func ScheduleCompact(w io.Writer, s *planner.Schedule) {
	fmt.Fprintf(w, "%s: %d blocks, %d unscheduled\n", s.Date, len(s.Blocks), len(s.Unscheduled))

	for _, b := range s.Blocks {
		span := b.Start.Format("15:04") + "-" + b.End.Format("15:04")
		if b.IsBreak() {
			fmt.Fprintln(w, "  "+span+" break")
			continue
		}
		fmt.Fprintln(w, "  "+span+" "+*b.TaskID)
	}
	for _, u := range s.Unscheduled {
		fmt.Fprintln(w, "  unscheduled: "+u.TaskID+" ("+u.Reason+")")
	}
}

// ReminderCompact renders a reminder report in compact format.
func ReminderCompact(w io.Writer, r reminder.Report) {
	if r.Empty() {
		fmt.Fprintln(w, "no reminders")
		return
	}

	for _, a := range r.Alerts {
		fmt.Fprintf(w, "alert %s %s in:%dm actions:%s\n",
			a.StartsAt.Format("15:04"), a.TaskID, a.MinutesUntil, strings.Join(a.Actions, ","))
	}
	for _, o := range r.Overdue {
		fmt.Fprintf(w, "overdue %s due:%s %s\n", o.TaskID, o.Due, strings.ToLower(o.Reason))
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := t.ID + " [" + t.Status + "/" + t.Priority + "] " + t.Title

	if len(t.Tags) > 0 {
		line += " (" + strings.Join(t.Tags, ", ") + ")"
	}
	if t.Due != nil {
		line += " due:" + t.Due.String()
	}
	line += " dur:" + strconv.Itoa(t.Duration) + "m"
	if t.Recurrence != task.RecurNone {
		line += " repeats:" + string(t.Recurrence)
	}

	return line
}

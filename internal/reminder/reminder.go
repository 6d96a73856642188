// Package reminder evaluates a schedule and task list into upcoming-task
// alerts and overdue notices. Evaluation is pure: same now, schedule, and
// tasks always yield the same report.
package reminder

import (
	"fmt"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

// Alert actions, gated by how soon the block starts.
const (
	ActionSnooze10     = "snooze_10"
	ActionReschedule30 = "reschedule_30"
	ActionMarkDone     = "mark_done"
)

// Alert announces a task block starting within the alert window.
type Alert struct {
	ID           string    `json:"id"` // taskID-HHMM, stable per block start
	TaskID       string    `json:"task_id"`
	Title        string    `json:"title"`
	StartsAt     time.Time `json:"starts_at"`
	MinutesUntil int       `json:"minutes_until"`
	Actions      []string  `json:"actions"`
}

// Overdue annotates a task whose due date has passed.
type Overdue struct {
	TaskID         string    `json:"task_id"`
	Title          string    `json:"title"`
	Due            date.Date `json:"due_date"`
	Reason         string    `json:"reason"`
	Recommendation string    `json:"recommendation"`
}

// Report is the outcome of one reminder evaluation.
type Report struct {
	Now     time.Time `json:"now"`
	Alerts  []Alert   `json:"alerts"`
	Overdue []Overdue `json:"overdue"`
}

// Empty reports whether there is nothing to tell the user.
func (r Report) Empty() bool {
	return len(r.Alerts) == 0 && len(r.Overdue) == 0
}

// Evaluate computes alerts for blocks starting inside the alert window and
// overdue notices for non-completed tasks past their due date. A nil
// schedule simply yields no alerts.
func Evaluate(now time.Time, sched *planner.Schedule, tasks []*task.Task, prefs config.Preferences) Report {
	report := Report{Now: now, Alerts: []Alert{}, Overdue: []Overdue{}}

	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	if sched != nil {
		cutoff := now.Add(time.Duration(prefs.AlertWindow) * time.Minute)
		for _, b := range sched.Blocks {
			if b.IsBreak() {
				continue
			}
			if b.Start.Before(now) || b.Start.After(cutoff) {
				continue
			}
			minutes := int(b.Start.Sub(now).Minutes())
			report.Alerts = append(report.Alerts, Alert{
				ID:           *b.TaskID + "-" + b.Start.Format("1504"),
				TaskID:       *b.TaskID,
				Title:        titles[*b.TaskID],
				StartsAt:     b.Start,
				MinutesUntil: minutes,
				Actions:      actionsFor(minutes),
			})
		}
	}

	today := date.FromTime(now)
	for _, t := range tasks {
		if t.Status == task.StatusCompleted || t.Due == nil || !t.Due.Time.Before(today.Time) {
			continue
		}
		days := today.DaysSince(*t.Due)
		report.Overdue = append(report.Overdue, Overdue{
			TaskID:         t.ID,
			Title:          t.Title,
			Due:            *t.Due,
			Reason:         overdueReason(days),
			Recommendation: overdueRecommendation(t.Priority, days),
		})
	}

	return report
}

func actionsFor(minutesUntil int) []string {
	var actions []string
	if minutesUntil > 10 {
		actions = append(actions, ActionSnooze10)
	}
	if minutesUntil > 30 {
		actions = append(actions, ActionReschedule30)
	}
	return append(actions, ActionMarkDone)
}

func overdueReason(days int) string {
	switch {
	case days <= 1:
		return "Due date was yesterday"
	case days <= 7:
		return fmt.Sprintf("Due date was %d days ago", days)
	case days <= 30:
		return fmt.Sprintf("Due date was %d weeks ago", days/7)
	default:
		return fmt.Sprintf("Due date was %d months ago", days/30)
	}
}

func overdueRecommendation(priority string, days int) string {
	switch {
	case days <= 1:
		if priority == task.PriorityHigh {
			return "Reschedule immediately to today"
		}
		return "Reschedule to tomorrow or mark as done if completed"
	case days <= 7:
		switch priority {
		case task.PriorityHigh:
			return "Urgent: Reschedule to today or next available slot"
		case task.PriorityMedium:
			return "Reschedule to this week or evaluate if still needed"
		default:
			return "Consider if this task is still relevant or can be cancelled"
		}
	default:
		return "Evaluate if this task is still needed, consider marking as cancelled"
	}
}

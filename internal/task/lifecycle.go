package task

import (
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
)

// Complete transitions a task to completed and stamps the completion
// time. Completing an already-completed task is a no-op.
func Complete(t *Task, now time.Time) bool {
	if t.Status == StatusCompleted {
		return false
	}
	t.Status = StatusCompleted
	t.Completed = &now
	t.Updated = now
	return true
}

// Reopen returns a completed task to pending and clears the completion
// stamp.
func Reopen(t *Task, now time.Time) bool {
	if t.Status != StatusCompleted {
		return false
	}
	t.Status = StatusPending
	t.Completed = nil
	t.Updated = now
	return true
}

// MarkOverdue flips pending tasks whose due date has passed to overdue.
// Scheduled and completed tasks are left alone; a scheduled task that
// slips past its date is the planner's concern, not the reminder's.
// Returns the tasks that changed.
func MarkOverdue(tasks []*Task, today date.Date, now time.Time) []*Task {
	var changed []*Task
	for _, t := range tasks {
		if t.Status != StatusPending || t.Due == nil {
			continue
		}
		if t.Due.Before(today.Time) {
			t.Status = StatusOverdue
			t.Updated = now
			changed = append(changed, t)
		}
	}
	return changed
}

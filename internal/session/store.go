// Package session persists the planner's working state: tasks, blocked
// intervals, and computed schedules. The default backend keeps everything
// as plain files inside the planner directory; a Postgres backend covers
// shared setups.
package session

import (
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

// BlockedInterval is a span of the day reserved outside the planner's
// control, such as a standing meeting.
type BlockedInterval struct {
	timegrid.Interval `yaml:",inline"`

	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Store is the persistence seam between commands and storage backends.
type Store interface {
	// Tasks returns all stored tasks in id order.
	Tasks() ([]*task.Task, error)
	// SaveTask creates or overwrites the record for t.ID.
	SaveTask(t *task.Task) error
	// Blocked returns the blocked intervals that overlap the given day,
	// sorted by start time.
	Blocked(day date.Date) ([]BlockedInterval, error)
	// AddBlocked records a new blocked interval.
	AddBlocked(iv BlockedInterval) error
	// SaveSchedule stores the schedule under its date, replacing any
	// previous schedule for that day.
	SaveSchedule(s *planner.Schedule) error
	// LoadSchedule returns the stored schedule for the day, or an error
	// with code clierr.ScheduleNotFound when none exists.
	LoadSchedule(day date.Date) (*planner.Schedule, error)
	// PruneSchedules deletes schedules dated strictly before the cutoff
	// and reports how many were removed.
	PruneSchedules(before date.Date) (int, error)
}

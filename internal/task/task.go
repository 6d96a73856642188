// Package task defines the task model, its on-disk frontmatter format,
// and collection-level operations (filtering, sorting, grouping).
package task

import (
	"encoding/json"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
)

// Priority levels, highest first in scheduling order.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Statuses a task moves through. Tasks are never deleted, only
// status-transitioned, so history stays available to reminders.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
)

// Recurrence values. The zero value means a one-off task.
const (
	RecurNone   = Recurrence("")
	RecurDaily  = Recurrence("daily")
	RecurWeekly = Recurrence("weekly")
)

// Recurrence is a task repeat cadence. It serializes as null in JSON and
// is omitted from frontmatter when the task does not recur.
type Recurrence string

// MarshalJSON renders the absent cadence as null, per the task record
// contract (recurrence|null).
func (r Recurrence) MarshalJSON() ([]byte, error) {
	if r == RecurNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts null, "none", or a cadence name.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RecurNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "none" {
		*r = RecurNone
		return nil
	}
	*r = Recurrence(s)
	return nil
}

// Task is one unit of schedulable work, parsed from a markdown file with
// YAML frontmatter. Body holds the markdown description below the
// frontmatter.
type Task struct {
	ID         string     `yaml:"id" json:"id"`
	Title      string     `yaml:"title" json:"title"`
	Priority   string     `yaml:"priority" json:"priority"`
	Duration   int        `yaml:"duration_minutes" json:"duration_minutes"`
	Due        *date.Date `yaml:"due,omitempty" json:"due_date"`
	Tags       []string   `yaml:"tags,omitempty" json:"tags"`
	Recurrence Recurrence `yaml:"recurrence,omitempty" json:"recurrence"`
	Status     string     `yaml:"status" json:"status"`
	Created    time.Time  `yaml:"created" json:"created_at"`
	Updated    time.Time  `yaml:"updated" json:"updated_at"`
	Completed  *time.Time `yaml:"completed,omitempty" json:"completed_at,omitempty"`

	// Body is the markdown description below the frontmatter (not in YAML).
	Body string `yaml:"-" json:"description,omitempty"`

	// File is the path the task was read from (not persisted).
	File string `yaml:"-" json:"-"`
}

// Priorities returns the allowed priority names in rank order.
func Priorities() []string {
	return []string{PriorityHigh, PriorityMedium, PriorityLow}
}

// Statuses returns the allowed status names.
func Statuses() []string {
	return []string{StatusPending, StatusScheduled, StatusCompleted, StatusOverdue}
}

// PriorityRank maps a priority to its sort position; high ranks first.
// Unknown priorities rank after all known ones.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Open reports whether the task still wants scheduling
// (pending or overdue).
func (t *Task) Open() bool {
	return t.Status == StatusPending || t.Status == StatusOverdue
}

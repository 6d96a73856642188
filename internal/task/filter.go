package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Statuses        []string
	ExcludeStatuses []string // statuses to exclude from results
	Priorities      []string
	Tag             string
	Search          string     // case-insensitive substring match across title, body, and tags
	DueBefore       *date.Date // tasks due strictly before this date
	DueOn           *date.Date // tasks due exactly on this date
	Overdue         bool       // only tasks due before today
	Today           date.Date  // reference date for the Overdue filter
	Recurring       *bool      // nil=no filter, true=only recurring, false=only one-off
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*Task, opts FilterOptions) []*Task {
	var result []*Task
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *Task, opts FilterOptions) bool {
	if !matchesStatus(t.Status, opts.Statuses, opts.ExcludeStatuses) {
		return false
	}
	if len(opts.Priorities) > 0 && !containsStr(opts.Priorities, t.Priority) {
		return false
	}
	if opts.Tag != "" && !t.HasTag(opts.Tag) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	if opts.Recurring != nil && (t.Recurrence != RecurNone) != *opts.Recurring {
		return false
	}
	return matchesDue(t, opts)
}

func matchesStatus(status string, include, exclude []string) bool {
	if len(include) > 0 && !containsStr(include, status) {
		return false
	}
	if len(exclude) > 0 && containsStr(exclude, status) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title,
// body, and tags.
func matchesSearch(t *Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Body), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func matchesDue(t *Task, opts FilterOptions) bool {
	if opts.DueBefore != nil {
		if t.Due == nil || !t.Due.Before(opts.DueBefore.Time) {
			return false
		}
	}
	if opts.DueOn != nil {
		if t.Due == nil || !t.Due.Equal(opts.DueOn.Time) {
			return false
		}
	}
	if opts.Overdue {
		if t.Due == nil || !t.Due.Before(opts.Today.Time) || t.Status == StatusCompleted {
			return false
		}
	}
	return true
}

func containsStr(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

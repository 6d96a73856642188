package task

import (
	"strings"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
)

// ValidateStatus checks that a status is one of the allowed names.
func ValidateStatus(status string) error {
	for _, s := range Statuses() {
		if s == status {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidStatus, "invalid status %q", status).
		WithDetails(map[string]any{
			"status":  status,
			"allowed": Statuses(),
		})
}

// ValidatePriority checks that a priority is one of the allowed names.
func ValidatePriority(priority string) error {
	for _, p := range Priorities() {
		if p == priority {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", priority).
		WithDetails(map[string]any{
			"priority": priority,
			"allowed":  Priorities(),
		})
}

// ValidateDuration checks the duration > 0 invariant.
func ValidateDuration(minutes int) error {
	if minutes > 0 {
		return nil
	}
	return clierr.Newf(clierr.InvalidInput, "duration must be positive, got %d", minutes).
		WithDetails(map[string]any{"duration_minutes": minutes})
}

// ValidateRecurrence checks a recurrence cadence.
func ValidateRecurrence(r Recurrence) error {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly:
		return nil
	}
	return clierr.Newf(clierr.InvalidInput, "invalid recurrence %q", string(r)).
		WithDetails(map[string]any{
			"recurrence": string(r),
			"allowed":    []string{"none", "daily", "weekly"},
		})
}

// ValidateDate wraps a date parse failure for CLI reporting.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// Validate checks every task invariant the planner relies on. The first
// violation is returned.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return clierr.New(clierr.InvalidInput, "task title must not be empty")
	}
	if err := ValidateDuration(t.Duration); err != nil {
		return err
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	if err := ValidateStatus(t.Status); err != nil {
		return err
	}
	return ValidateRecurrence(t.Recurrence)
}

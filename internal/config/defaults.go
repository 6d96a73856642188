// Package config handles planner configuration and preferences.
package config

const (
	// DefaultDir is the default planner directory name.
	DefaultDir = ".dayplan"
	// DefaultTasksDir is the tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultSchedulesDir is the schedules subdirectory name.
	DefaultSchedulesDir = "schedules"

	// ConfigFileName is the name of the config file within the planner directory.
	ConfigFileName = "config.yml"

	// Preference defaults.
	DefaultWorkStart       = "09:00"
	DefaultWorkEnd         = "17:00"
	DefaultFocusMinutes    = 90
	DefaultBreakMinutes    = 15
	DefaultTimezone        = "UTC"
	DefaultDurationMinutes = 60
	DefaultAlertWindow     = 60
	DefaultRetentionDays   = 30

	// Storage backends.
	BackendFiles    = "files"
	BackendPostgres = "postgres"
)

// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for machine consumption.
package clierr

import (
	"fmt"
	"strconv"
)

// Error code constants: uppercase, underscore-separated, stable across minor versions.
const (
	ConfigInvalid    = "CONFIG_INVALID"
	DataIntegrity    = "DATA_INTEGRITY"
	TaskNotFound     = "TASK_NOT_FOUND"
	ScheduleNotFound = "SCHEDULE_NOT_FOUND"
	PlannerNotFound  = "PLANNER_NOT_FOUND"
	PlannerExists    = "PLANNER_ALREADY_EXISTS"
	InvalidInput     = "INVALID_INPUT"
	InvalidDate      = "INVALID_DATE"
	InvalidPriority  = "INVALID_PRIORITY"
	InvalidStatus    = "INVALID_STATUS"
	InvalidInterval  = "INVALID_INTERVAL"
	ConfirmationReq  = "CONFIRMATION_REQUIRED"
	NoChanges        = "NO_CHANGES"
	StoreError       = "STORE_ERROR"
	InternalError    = "INTERNAL_ERROR"
)

// Exit codes per error class. Scripts branch on these, so the mapping is
// part of the CLI contract.
const (
	exitGeneric   = 1
	exitInternal  = 2
	exitConfig    = 3
	exitIntegrity = 4
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Config creates a CONFIG_INVALID error. Configuration errors are fatal and
// surface before any planning work starts.
func Config(format string, args ...any) *Error {
	return Newf(ConfigInvalid, format, args...)
}

// Integrity creates a DATA_INTEGRITY error naming the offending task.
func Integrity(taskID, reason string) *Error {
	return Newf(DataIntegrity, "task %s: %s", taskID, reason).
		WithDetails(map[string]any{"task_id": taskID})
}

// NotFound creates a TASK_NOT_FOUND error for the given task id.
func NotFound(taskID string) *Error {
	return Newf(TaskNotFound, "task %s not found", taskID).
		WithDetails(map[string]any{"task_id": taskID})
}

// ExitCode maps the error code to a process exit code.
func (e *Error) ExitCode() int {
	switch e.Code {
	case InternalError:
		return exitInternal
	case ConfigInvalid:
		return exitConfig
	case DataIntegrity:
		return exitIntegrity
	default:
		return exitGeneric
	}
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }

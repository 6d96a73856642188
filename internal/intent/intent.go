// Package intent routes free-text utterances to a command category using
// ordered keyword tables. First matching category wins; anything
// unrecognized is a general query.
package intent

import "strings"

// Intent is a routed command category.
type Intent string

const (
	AddTasks       Intent = "add_tasks"
	PlanDay        Intent = "plan_day"
	CheckReminders Intent = "check_reminders"
	UpdateTask     Intent = "update_task"
	SetPreferences Intent = "set_preferences"
	GeneralQuery   Intent = "general_query"
)

// rules are checked in order; the order is the precedence contract
// ("add task ... and plan my day" routes to add_tasks).
var rules = []struct {
	intent   Intent
	keywords []string
}{
	{AddTasks, []string{
		"add task", "create task", "new task", "i need to", "remember to",
		"todo", "task:", "schedule this",
	}},
	{PlanDay, []string{
		"plan my day", "schedule my day", "create schedule", "organize my day",
		"what should i do", "plan today", "schedule tasks",
	}},
	{CheckReminders, []string{
		"reminders", "what's due", "upcoming tasks", "alerts",
		"what's coming up", "check schedule",
	}},
	{UpdateTask, []string{
		"mark done", "complete task", "update task", "finished",
		"reschedule", "change due date",
	}},
	{SetPreferences, []string{
		"set work hours", "change timezone", "update preferences",
		"focus time", "break length",
	}},
}

// Detect classifies an utterance.
func Detect(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return GeneralQuery
}

package intent

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"I need to call the dentist by Friday", AddTasks},
		{"add task: buy groceries", AddTasks},
		{"remember to water the plants", AddTasks},
		{"plan my day", PlanDay},
		{"what should I do today?", PlanDay},
		{"Schedule my day please", PlanDay},
		{"any reminders?", CheckReminders},
		{"what's due this week", CheckReminders},
		{"what's coming up", CheckReminders},
		{"mark done dentist call", UpdateTask},
		{"reschedule the report to friday", UpdateTask},
		{"finished the budget review", UpdateTask},
		{"set work hours 08:00 to 16:00", SetPreferences},
		{"change timezone to Europe/Berlin", SetPreferences},
		{"focus time 45 minutes", SetPreferences},
		{"how does scheduling work?", GeneralQuery},
		{"", GeneralQuery},
		// Precedence: add_tasks wins over plan_day when both match.
		{"i need to plan my day", AddTasks},
	}

	for _, tc := range cases {
		if got := Detect(tc.text); got != tc.want {
			t.Errorf("Detect(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

package extract

import (
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

// monday is the fixed reference clock for all extraction tests:
// Monday 2025-11-24, 10:00 UTC.
var monday = time.Date(2025, time.November, 24, 10, 0, 0, 0, time.UTC)

func extractOne(t *testing.T, text string) *task.Task {
	t.Helper()
	tasks := New(Options{}).Extract(text, monday)
	if len(tasks) != 1 {
		t.Fatalf("Extract(%q) yielded %d tasks, want 1", text, len(tasks))
	}
	return tasks[0]
}

func TestExtractDentistCall(t *testing.T) {
	got := extractOne(t, "I need to call the dentist by Friday")

	if got.Title != "call the dentist" {
		t.Errorf("title = %q, want %q", got.Title, "call the dentist")
	}
	if got.Due == nil || got.Due.String() != "2025-11-28" {
		t.Errorf("due = %v, want 2025-11-28", got.Due)
	}
	if !got.HasTag("communication") {
		t.Errorf("tags = %v, want communication included", got.Tags)
	}
	if got.Priority != task.PriorityMedium {
		t.Errorf("priority = %q, want medium", got.Priority)
	}
	if got.Duration != 60 {
		t.Errorf("duration = %d, want default 60", got.Duration)
	}
	if got.ID != "call-the-dentist-20251124" {
		t.Errorf("id = %q", got.ID)
	}
}

func TestExtractUrgentServerFix(t *testing.T) {
	got := extractOne(t, "URGENT: fix server issues for 2 hours")

	if got.Priority != task.PriorityHigh {
		t.Errorf("priority = %q, want high", got.Priority)
	}
	if got.Duration != 120 {
		t.Errorf("duration = %d, want 120", got.Duration)
	}
	if got.Title != "fix server issues" {
		t.Errorf("title = %q, want %q", got.Title, "fix server issues")
	}
}

func TestSegmentation(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string // expected titles in order
	}{
		{
			name: "conjunction with verbs on both sides splits",
			text: "Buy groceries and call mom",
			want: []string{"Buy groceries", "call mom"},
		},
		{
			name: "noun list stays one task",
			text: "meeting, presentation, and budget review",
			want: []string{"meeting, presentation, and budget review"},
		},
		{
			name: "numbered list always splits",
			text: "1. Buy groceries 2. Call mom 3. Finish project report",
			want: []string{"Buy groceries", "Call mom", "Finish project report"},
		},
		{
			name: "semicolons split",
			text: "write the summary; send it to the team",
			want: []string{"write the summary", "send it to the team"},
		},
		{
			name: "comma-then splits",
			text: "clean the kitchen, then water the plants",
			want: []string{"clean the kitchen", "water the plants"},
		},
		{
			name: "sentence boundary needs verbs on both sides",
			text: "Prepare slides. Team sync at ten.",
			want: []string{"Prepare slides. Team sync at ten"},
		},
	}

	ex := New(Options{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := ex.Extract(tc.text, monday)
			if len(tasks) != len(tc.want) {
				titles := make([]string, len(tasks))
				for i, tk := range tasks {
					titles[i] = tk.Title
				}
				t.Fatalf("got %v, want %v", titles, tc.want)
			}
			for i, want := range tc.want {
				if tasks[i].Title != want {
					t.Errorf("task %d title = %q, want %q", i, tasks[i].Title, want)
				}
			}
		})
	}
}

func TestDetectPriority(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"urgent: submit the report", task.PriorityHigh},
		{"finish slides asap", task.PriorityHigh},
		{"fix this immediately", task.PriorityHigh},
		{"do the thing!!", task.PriorityHigh},
		{"ASAP review the contract", task.PriorityHigh},
		{"organize photos someday", task.PriorityLow},
		{"low priority: archive old mail", task.PriorityLow},
		{"maybe reorganize the shelf", task.PriorityLow},
		{"call the plumber when possible", task.PriorityLow},
		{"write the weekly summary", task.PriorityMedium},
	}
	for _, tc := range cases {
		if got := detectPriority(tc.text); got != tc.want {
			t.Errorf("detectPriority(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectDuration(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"deep work for 2 hours", 120},
		{"standup for 30 minutes", 30},
		{"reading for 90 min", 90},
		{"pairing 1h 30m", 90},
		{"review 45m", 45},
		{"workshop 3h", 180},
		{"quick sync 15min", 15},
		{"2 hrs of budget review", 120},
		{"1 hour and 15 minutes of prep", 75},
		{"no duration here", 60},
	}
	for _, tc := range cases {
		got, _ := detectDuration(tc.text, 60)
		if got != tc.want {
			t.Errorf("detectDuration(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestDetectDue(t *testing.T) {
	today := date.New(2025, time.November, 24) // Monday

	cases := []struct {
		text string
		want string // "" means no due date
	}{
		{"submit it today", "2025-11-24"},
		{"call them tomorrow", "2025-11-25"},
		{"report due friday", "2025-11-28"},
		{"gym on Monday", "2025-12-01"}, // same weekday jumps a week
		{"review by next tuesday", "2025-11-25"},
		{"plan next week", "2025-12-01"},
		{"renew passport in 10 days", "2025-12-04"},
		{"file taxes by 2026-04-15", "2026-04-15"},
		{"party on 12/31", "2025-12-31"},
		{"dentist on 1/5/2026", "2026-01-05"},
		{"no date mentioned", ""},
	}
	for _, tc := range cases {
		due, _ := detectDue(tc.text, today)
		switch {
		case tc.want == "" && due != nil:
			t.Errorf("detectDue(%q) = %v, want none", tc.text, due)
		case tc.want != "" && due == nil:
			t.Errorf("detectDue(%q) = none, want %s", tc.text, tc.want)
		case tc.want != "" && due.String() != tc.want:
			t.Errorf("detectDue(%q) = %s, want %s", tc.text, due, tc.want)
		}
	}
}

func TestDetectRecurrence(t *testing.T) {
	cases := []struct {
		text string
		want task.Recurrence
	}{
		{"water the plants daily", task.RecurDaily},
		{"review goals every week", task.RecurWeekly},
		{"backup photos weekly", task.RecurWeekly},
		{"stretch every day", task.RecurDaily},
		{"pay rent monthly", task.RecurNone}, // unsupported cadence degrades to one-off
		{"one-off errand", task.RecurNone},
	}
	for _, tc := range cases {
		got, _ := detectRecurrence(tc.text)
		if got != tc.want {
			t.Errorf("detectRecurrence(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectTagsOrderAndCap(t *testing.T) {
	// Keywords from five tables; the cap keeps the first four in table order.
	text := "buy a gift, call the office about the project bill, then study outside"
	tags := detectTags(text, 4)
	want := []string{"work", "shopping", "communication", "finance"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags = %v, want %v", tags, want)
		}
	}
}

func TestExtractEmptyInput(t *testing.T) {
	ex := New(Options{})
	for _, text := range []string{"", "   ", "\n\t"} {
		if got := ex.Extract(text, monday); len(got) != 0 {
			t.Errorf("Extract(%q) = %v, want empty", text, got)
		}
	}
}

func TestExtractDegradesToSingleTask(t *testing.T) {
	got := extractOne(t, "quarterly numbers")
	if got.Title != "quarterly numbers" {
		t.Errorf("title = %q, want the raw text", got.Title)
	}
	if got.Priority != task.PriorityMedium || got.Duration != 60 {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestExtractDedupesIDsWithinBatch(t *testing.T) {
	tasks := New(Options{}).Extract("call mom and call mom", monday)
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].ID == tasks[1].ID {
		t.Errorf("duplicate ids: %s", tasks[0].ID)
	}
	if tasks[1].ID != tasks[0].ID+"-2" {
		t.Errorf("counter id = %q, want %q", tasks[1].ID, tasks[0].ID+"-2")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	ex := New(Options{})
	text := "URGENT: prepare the board deck for 3 hours by thursday and email the agenda"
	a := ex.Extract(text, monday)
	b := ex.Extract(text, monday)
	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title || a[i].Duration != b[i].Duration {
			t.Errorf("run %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestResolveDate(t *testing.T) {
	ex := New(Options{})
	d, ok := ex.ResolveDate("friday", monday)
	if !ok || d.String() != "2025-11-28" {
		t.Errorf("ResolveDate(friday) = %v %v", d, ok)
	}
	if _, ok := ex.ResolveDate("whenever", monday); ok {
		t.Error("ResolveDate(whenever) succeeded, want false")
	}
}

package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	d, err := Parse("2025-11-24")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := d.String(); got != "2025-11-24" {
		t.Errorf("String() = %q, want %q", got, "2025-11-24")
	}
	if d.Weekday() != time.Monday {
		t.Errorf("Weekday() = %v, want Monday", d.Weekday())
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "24-11-2025", "2025/11/24", "tomorrow"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

// TestNextWeekday verifies the strictly-after rule: asking for the current
// weekday jumps a full week rather than returning the same day.
func TestNextWeekday(t *testing.T) {
	monday := New(2025, time.November, 24)

	cases := []struct {
		name string
		want string
		w    time.Weekday
	}{
		{"later this week", "2025-11-28", time.Friday},
		{"same weekday wraps a week", "2025-12-01", time.Monday},
		{"earlier weekday wraps", "2025-11-30", time.Sunday},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := monday.NextWeekday(tc.w).String(); got != tc.want {
				t.Errorf("NextWeekday(%v) = %s, want %s", tc.w, got, tc.want)
			}
		})
	}
}

func TestAddDaysAndDaysSince(t *testing.T) {
	d := New(2025, time.November, 24)
	later := d.AddDays(9)
	if got := later.String(); got != "2025-12-03" {
		t.Errorf("AddDays(9) = %s, want 2025-12-03", got)
	}
	if got := later.DaysSince(d); got != 9 {
		t.Errorf("DaysSince = %d, want 9", got)
	}
	if got := d.DaysSince(later); got != -9 {
		t.Errorf("reverse DaysSince = %d, want -9", got)
	}
}

func TestAtUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	d := New(2025, time.November, 24)
	at := d.At(9, 30, loc)
	if at.Hour() != 9 || at.Minute() != 30 {
		t.Errorf("At(9,30) clock = %02d:%02d, want 09:30", at.Hour(), at.Minute())
	}
	if at.Location() != loc {
		t.Errorf("At location = %v, want %v", at.Location(), loc)
	}
}

func TestJSONMarshalling(t *testing.T) {
	d := New(2025, time.November, 28)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2025-11-28"` {
		t.Errorf("Marshal = %s, want \"2025-11-28\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

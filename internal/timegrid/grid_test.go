package timegrid

import (
	"errors"
	"testing"
	"time"
)

// at builds an instant on a fixed test day.
func at(hour, min int) time.Time {
	return time.Date(2025, time.November, 24, hour, min, 0, 0, time.UTC)
}

func span(fromH, fromM, toH, toM int) Interval {
	return Interval{Start: at(fromH, fromM), End: at(toH, toM)}
}

func workday(t *testing.T, occupied ...Interval) *Grid {
	t.Helper()
	g, err := New(span(9, 0, 17, 0), occupied)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestIntervalValidate(t *testing.T) {
	if err := span(9, 0, 10, 0).Validate(); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}
	if err := span(10, 0, 10, 0).Validate(); err == nil {
		t.Error("zero-length interval accepted")
	}
	if err := span(11, 0, 10, 0).Validate(); err == nil {
		t.Error("inverted interval accepted")
	}
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", span(9, 0, 10, 0), span(11, 0, 12, 0), false},
		{"touching edges", span(9, 0, 10, 0), span(10, 0, 11, 0), false},
		{"partial overlap", span(9, 0, 10, 30), span(10, 0, 11, 0), true},
		{"containment", span(9, 0, 12, 0), span(10, 0, 11, 0), true},
		{"identical", span(9, 0, 10, 0), span(9, 0, 10, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewMergesAndClamps(t *testing.T) {
	g := workday(t,
		span(10, 0, 11, 0),
		span(10, 30, 11, 30), // overlaps previous -> merged
		span(8, 0, 9, 30),    // clamped to window start
		span(18, 0, 19, 0),   // entirely outside -> dropped
	)

	free := g.Free()
	want := []Interval{span(9, 30, 10, 0), span(11, 30, 17, 0)}
	if len(free) != len(want) {
		t.Fatalf("Free() = %v, want %v", free, want)
	}
	for i := range want {
		if !free[i].Equal(want[i]) {
			t.Errorf("Free()[%d] = %s, want %s", i, free[i], want[i])
		}
	}
}

func TestNewRejectsInvertedWindow(t *testing.T) {
	if _, err := New(span(17, 0, 9, 0), nil); err == nil {
		t.Error("inverted window accepted")
	}
}

func TestFindFree(t *testing.T) {
	cases := []struct {
		name     string
		occupied []Interval
		after    time.Time
		d        time.Duration
		want     Interval
		ok       bool
	}{
		{
			name:  "empty day places at window start",
			after: at(0, 0),
			d:     time.Hour,
			want:  span(9, 0, 10, 0),
			ok:    true,
		},
		{
			name:     "skips occupied head",
			occupied: []Interval{span(9, 0, 10, 30)},
			after:    at(0, 0),
			d:        time.Hour,
			want:     span(10, 30, 11, 30),
			ok:       true,
		},
		{
			name:     "gap too small is passed over",
			occupied: []Interval{span(9, 30, 10, 0), span(10, 45, 12, 0)},
			after:    at(0, 0),
			d:        time.Hour,
			want:     span(12, 0, 13, 0),
			ok:       true,
		},
		{
			name:  "after parameter moves the search",
			after: at(13, 15),
			d:     30 * time.Minute,
			want:  span(13, 15, 13, 45),
			ok:    true,
		},
		{
			name:     "no room before window end",
			occupied: []Interval{span(9, 0, 16, 30)},
			after:    at(0, 0),
			d:        time.Hour,
			ok:       false,
		},
		{
			name:     "fully blocked day",
			occupied: []Interval{span(9, 0, 17, 0)},
			after:    at(0, 0),
			d:        time.Minute,
			ok:       false,
		},
		{
			name:  "exact fit at window end",
			after: at(16, 0),
			d:     time.Hour,
			want:  span(16, 0, 17, 0),
			ok:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := workday(t, tc.occupied...)
			got, ok := g.FindFree(tc.after, tc.d)
			if ok != tc.ok {
				t.Fatalf("FindFree ok = %v, want %v", ok, tc.ok)
			}
			if ok && !got.Equal(tc.want) {
				t.Errorf("FindFree = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestOccupyRejectsOverlap(t *testing.T) {
	g := workday(t, span(10, 0, 11, 0))

	if err := g.Occupy(span(9, 0, 10, 0)); err != nil {
		t.Fatalf("touching occupy rejected: %v", err)
	}
	err := g.Occupy(span(10, 30, 11, 30))
	if !errors.Is(err, ErrOverlap) {
		t.Errorf("overlapping occupy error = %v, want ErrOverlap", err)
	}
	if err := g.Occupy(span(8, 0, 9, 30)); err == nil {
		t.Error("occupy escaping the window accepted")
	}
}

func TestOccupyKeepsSortedOrder(t *testing.T) {
	g := workday(t)
	for _, iv := range []Interval{span(14, 0, 15, 0), span(9, 0, 10, 0), span(11, 0, 12, 0)} {
		if err := g.Occupy(iv); err != nil {
			t.Fatalf("Occupy(%s): %v", iv, err)
		}
	}

	free := g.Free()
	want := []Interval{span(10, 0, 11, 0), span(12, 0, 14, 0), span(15, 0, 17, 0)}
	if len(free) != len(want) {
		t.Fatalf("Free() = %v, want %v", free, want)
	}
	for i := range want {
		if !free[i].Equal(want[i]) {
			t.Errorf("Free()[%d] = %s, want %s", i, free[i], want[i])
		}
	}
}

func TestReleaseRollsBack(t *testing.T) {
	g := workday(t)
	iv := span(9, 0, 10, 0)
	if err := g.Occupy(iv); err != nil {
		t.Fatalf("Occupy: %v", err)
	}
	if err := g.Release(iv); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, ok := g.FindFree(at(0, 0), 8*time.Hour)
	if !ok || !got.Equal(span(9, 0, 17, 0)) {
		t.Errorf("after release FindFree = %v %v, want full window", got, ok)
	}

	err := g.Release(span(12, 0, 13, 0))
	if !errors.Is(err, ErrNotOccupied) {
		t.Errorf("release of unknown interval = %v, want ErrNotOccupied", err)
	}
}

func TestLargestFree(t *testing.T) {
	g := workday(t, span(9, 0, 12, 0), span(13, 0, 16, 0))
	if got := g.LargestFree(); got != time.Hour {
		t.Errorf("LargestFree = %v, want 1h", got)
	}
}

// Package timegrid models a single day as ordered free/occupied time
// intervals and answers earliest-fit slot queries for the planner.
package timegrid

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Sentinel errors returned by Grid mutations.
var (
	ErrOverlap     = errors.New("interval overlaps occupied time")
	ErrNotOccupied = errors.New("interval is not occupied")
)

// Interval is a half-open [Start, End) range of instants in one timezone.
type Interval struct {
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end"   json:"end"`
}

// NewInterval builds a validated interval.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	return iv, iv.Validate()
}

// Validate checks the start < end invariant.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("interval start %s is not before end %s",
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals ([a,b) and [b,c)) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Covers reports whether other lies fully inside iv.
func (iv Interval) Covers(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Intersect returns the overlap of two intervals, or false when they
// share no instant.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Equal reports whether both endpoints match exactly.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

func (iv Interval) String() string {
	return iv.Start.Format("15:04") + "-" + iv.End.Format("15:04")
}

// Grid tracks occupied intervals inside one day's work window.
// Occupied intervals are kept sorted by start and non-overlapping.
type Grid struct {
	window   Interval
	occupied []Interval
}

// New creates a Grid for the given window, pre-occupied with the given
// intervals. Inputs are merged and sorted once; intervals outside the
// window are clamped to it or dropped entirely.
func New(window Interval, occupied []Interval) (*Grid, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("work window: %w", err)
	}

	clamped := make([]Interval, 0, len(occupied))
	for _, iv := range occupied {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
		if !iv.Overlaps(window) {
			continue
		}
		if iv.Start.Before(window.Start) {
			iv.Start = window.Start
		}
		if iv.End.After(window.End) {
			iv.End = window.End
		}
		clamped = append(clamped, iv)
	}

	sort.Slice(clamped, func(i, j int) bool {
		return clamped[i].Start.Before(clamped[j].Start)
	})

	merged := make([]Interval, 0, len(clamped))
	for _, iv := range clamped {
		n := len(merged)
		if n > 0 && !iv.Start.After(merged[n-1].End) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return &Grid{window: window, occupied: merged}, nil
}

// Window returns the grid's work window.
func (g *Grid) Window() Interval { return g.window }

// FindFree returns the earliest interval of exactly d starting at or after
// `after`, fully inside the window and clear of occupied time. The second
// return is false when no such slot exists before the window's end.
func (g *Grid) FindFree(after time.Time, d time.Duration) (Interval, bool) {
	if d <= 0 {
		return Interval{}, false
	}

	cursor := g.window.Start
	if after.After(cursor) {
		cursor = after
	}

	for _, occ := range g.occupied {
		if gapFits(cursor, occ.Start, d) {
			return Interval{Start: cursor, End: cursor.Add(d)}, true
		}
		if occ.End.After(cursor) {
			cursor = occ.End
		}
	}

	if gapFits(cursor, g.window.End, d) {
		return Interval{Start: cursor, End: cursor.Add(d)}, true
	}
	return Interval{}, false
}

func gapFits(from, until time.Time, d time.Duration) bool {
	return !from.Add(d).After(until)
}

// Occupy inserts a busy interval, keeping the occupied list sorted.
// An interval overlapping existing busy time or escaping the window is
// rejected with ErrOverlap; the planner always queries FindFree first,
// so hitting this is an invariant violation, not a normal outcome.
func (g *Grid) Occupy(iv Interval) error {
	if err := iv.Validate(); err != nil {
		return err
	}
	if iv.Start.Before(g.window.Start) || iv.End.After(g.window.End) {
		return fmt.Errorf("occupy %s: outside window %s", iv, g.window)
	}

	i := sort.Search(len(g.occupied), func(i int) bool {
		return !g.occupied[i].Start.Before(iv.Start)
	})
	if i > 0 && g.occupied[i-1].Overlaps(iv) {
		return fmt.Errorf("occupy %s against %s: %w", iv, g.occupied[i-1], ErrOverlap)
	}
	if i < len(g.occupied) && g.occupied[i].Overlaps(iv) {
		return fmt.Errorf("occupy %s against %s: %w", iv, g.occupied[i], ErrOverlap)
	}

	g.occupied = append(g.occupied, Interval{})
	copy(g.occupied[i+1:], g.occupied[i:])
	g.occupied[i] = iv
	return nil
}

// Release removes an exactly matching occupied interval. Used by the
// planner to roll back a partial placement.
func (g *Grid) Release(iv Interval) error {
	for i, occ := range g.occupied {
		if occ.Equal(iv) {
			g.occupied = append(g.occupied[:i], g.occupied[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("release %s: %w", iv, ErrNotOccupied)
}

// Free returns the remaining gaps inside the window, in time order.
func (g *Grid) Free() []Interval {
	var free []Interval
	cursor := g.window.Start
	for _, occ := range g.occupied {
		if occ.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: occ.Start})
		}
		if occ.End.After(cursor) {
			cursor = occ.End
		}
	}
	if g.window.End.After(cursor) {
		free = append(free, Interval{Start: cursor, End: g.window.End})
	}
	return free
}

// LargestFree returns the length of the widest remaining gap.
func (g *Grid) LargestFree() time.Duration {
	var max time.Duration
	for _, gap := range g.Free() {
		if d := gap.Duration(); d > max {
			max = d
		}
	}
	return max
}

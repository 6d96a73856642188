// Package planner turns a day's eligible tasks into a conflict-free
// schedule. Placement is deterministic: identical inputs always produce an
// identical schedule, and an infeasible day is a result (everything in
// unscheduled), never an error.
package planner

import (
	"fmt"
	"time"

	"github.com/twiced-technology-gmbh/dayplan/internal/advisory"
	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/config"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/focus"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

// Request carries everything one planning call consumes.
type Request struct {
	Date       date.Date
	Tasks      []*task.Task
	Blocked    []timegrid.Interval
	Prefs      config.Preferences
	Advisories []advisory.Advisory
}

// Plan builds the schedule for the requested day. Placed tasks are marked
// scheduled; tasks that fit nowhere are listed as unscheduled. The only
// errors are invalid preferences (configuration) and invalid task records
// (data integrity, naming the offending task); both abort before any
// status mutation.
func Plan(req Request) (*Schedule, error) {
	if err := req.Prefs.Validate(); err != nil {
		return nil, err
	}
	for _, t := range req.Tasks {
		if err := t.Validate(); err != nil {
			return nil, clierrIntegrity(t, err)
		}
	}

	window, err := req.Prefs.Window(req.Date)
	if err != nil {
		return nil, err
	}
	grid, err := timegrid.New(window, req.Blocked)
	if err != nil {
		return nil, err
	}

	eligible := make([]*task.Task, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		if eligibleOn(t, req.Date) {
			eligible = append(eligible, t)
		}
	}
	task.SortForPlanning(eligible)

	hints := collectHints(req.Advisories, window)

	sched := &Schedule{
		Date:        req.Date,
		Blocks:      []Block{},
		Unscheduled: []Unscheduled{},
	}

	cursor := window.Start
	var placed []*task.Task
	for _, t := range eligible {
		minutes := t.Duration
		if t.HasTag("travel") {
			minutes += hints.travelBuffer
		}
		chunks := focus.Split(minutes, req.Prefs.FocusMinutes, req.Prefs.BreakMinutes)

		blocks, ok := placeTask(grid, t, chunks, cursor, hints)
		if !ok {
			sched.Unscheduled = append(sched.Unscheduled, Unscheduled{
				TaskID: t.ID,
				Reason: ReasonNoSlot,
				Detail: fmt.Sprintf("Task requires %d minutes, but largest available slot is %d minutes",
					minutes, int(grid.LargestFree().Minutes())),
			})
			continue
		}

		sched.Blocks = append(sched.Blocks, blocks...)
		cursor = blocks[len(blocks)-1].End
		placed = append(placed, t)
	}

	for _, t := range placed {
		t.Status = task.StatusScheduled
	}
	return sched, nil
}

func clierrIntegrity(t *task.Task, err error) error {
	id := t.ID
	if id == "" {
		id = "(missing id)"
	}
	return clierr.Integrity(id, err.Error())
}

// eligibleOn decides whether a task is a placement candidate for the day.
// Only pending and overdue tasks qualify. Daily recurrence always matches;
// weekly recurrence matches on the weekday of the due date (or of the
// creation date when undated). One-off tasks must be due on or after the
// day, except that an overdue task stays plannable regardless of its
// original due date.
func eligibleOn(t *task.Task, day date.Date) bool {
	if !t.Open() {
		return false
	}
	switch t.Recurrence {
	case task.RecurDaily:
		return true
	case task.RecurWeekly:
		ref := date.FromTime(t.Created)
		if t.Due != nil {
			ref = *t.Due
		}
		return day.Weekday() == ref.Weekday()
	default:
		if t.Status == task.StatusOverdue {
			return true
		}
		return t.Due == nil || !t.Due.Time.Before(day.Time)
	}
}

// hints is the per-call digest of the advisory slice: the traffic buffer
// for travel-tagged tasks, the windows outdoor tasks must avoid, and the
// windows focused work should prefer.
type hints struct {
	travelBuffer int
	avoid        []timegrid.Interval
	prefer       []timegrid.Interval
}

func collectHints(advs []advisory.Advisory, window timegrid.Interval) hints {
	var h hints
	for _, a := range advs {
		switch {
		case a.Kind == advisory.Traffic && a.Adjustment == advisory.AddBuffer:
			if a.Window.Overlaps(window) {
				h.travelBuffer += a.Buffer
			}
		case a.Kind == advisory.Weather && a.Adjustment == advisory.AvoidOutdoor:
			h.avoid = append(h.avoid, a.Window)
		case a.Kind == advisory.Research && a.Adjustment == advisory.PreferWindow:
			if pw, ok := a.Window.Intersect(window); ok {
				h.prefer = append(h.prefer, pw)
			}
		}
	}
	return h
}

// placeTask places all chunks of one task, preferring advised windows for
// focused work, and rolls the grid back entirely when any chunk fails.
func placeTask(grid *timegrid.Grid, t *task.Task, chunks []focus.Chunk, cursor time.Time, h hints) ([]Block, bool) {
	if len(chunks) == 0 {
		return nil, false
	}

	avoid := h.avoid
	if !t.HasTag("outdoor") {
		avoid = nil
	}

	if t.HasTag("work") || t.HasTag("learning") {
		for _, pw := range h.prefer {
			from := cursor
			if pw.Start.After(from) {
				from = pw.Start
			}
			if blocks, ok := placeChunks(grid, t.ID, chunks, from, &pw, avoid); ok {
				return blocks, true
			}
		}
	}

	return placeChunks(grid, t.ID, chunks, cursor, nil, avoid)
}

// placeChunks walks the chunk sequence from the given position, occupying a
// slot per chunk and a break block after chunks that carry one. A break is
// placed only when the exact interval directly after the chunk is free and
// inside the window; otherwise it is skipped. On any chunk failing, every
// interval occupied here is released and ok is false.
func placeChunks(grid *timegrid.Grid, taskID string, chunks []focus.Chunk, from time.Time, within *timegrid.Interval, avoid []timegrid.Interval) ([]Block, bool) {
	var (
		blocks   []Block
		occupied []timegrid.Interval
	)
	rollback := func() {
		for _, iv := range occupied {
			_ = grid.Release(iv)
		}
	}

	pos := from
	for _, ch := range chunks {
		slot, ok := findSlot(grid, pos, time.Duration(ch.Minutes)*time.Minute, within, avoid)
		if !ok {
			rollback()
			return nil, false
		}
		if err := grid.Occupy(slot); err != nil {
			rollback()
			return nil, false
		}
		occupied = append(occupied, slot)
		blocks = append(blocks, taskBlock(slot, taskID))
		pos = slot.End

		if ch.Break > 0 {
			br := timegrid.Interval{Start: slot.End, End: slot.End.Add(time.Duration(ch.Break) * time.Minute)}
			if grid.Occupy(br) == nil {
				occupied = append(occupied, br)
				blocks = append(blocks, breakBlock(br))
				pos = br.End
			}
		}
	}
	return blocks, true
}

// findSlot finds the earliest free slot of length d at or after from,
// optionally constrained inside within, skipping past avoided windows.
func findSlot(grid *timegrid.Grid, from time.Time, d time.Duration, within *timegrid.Interval, avoid []timegrid.Interval) (timegrid.Interval, bool) {
	pos := from
	for {
		slot, ok := grid.FindFree(pos, d)
		if !ok {
			return timegrid.Interval{}, false
		}
		if within != nil && !within.Covers(slot) {
			// Slots only move later; once one escapes the constraint
			// window, no later slot can fit either.
			return timegrid.Interval{}, false
		}

		moved := false
		for _, w := range avoid {
			if slot.Overlaps(w) && w.End.After(pos) {
				pos = w.End
				moved = true
			}
		}
		if !moved {
			return slot, true
		}
	}
}

package planner

import (
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/timegrid"
)

// ReasonNoSlot marks a task that found no free slot large enough.
const ReasonNoSlot = "no_available_slot"

// Block is one placed interval: a task chunk, or a break when TaskID is nil.
type Block struct {
	timegrid.Interval `yaml:",inline"`
	TaskID            *string `yaml:"task_id" json:"task_id"`
}

// IsBreak reports whether the block is a break marker.
func (b Block) IsBreak() bool { return b.TaskID == nil }

func taskBlock(iv timegrid.Interval, taskID string) Block {
	return Block{Interval: iv, TaskID: &taskID}
}

func breakBlock(iv timegrid.Interval) Block {
	return Block{Interval: iv}
}

// Unscheduled records a task that could not be placed. Detail carries the
// human explanation shown by the CLI; only task_id and reason are part of
// the serialized contract.
type Unscheduled struct {
	TaskID string `yaml:"task_id" json:"task_id"`
	Reason string `yaml:"reason" json:"reason"`
	Detail string `yaml:"-" json:"-"`
}

// Schedule is the plan for one day: blocks ascending by start time plus the
// tasks that did not fit, in attempt order. The serialized shape
// {date, blocks, unscheduled} is the contract consumed downstream.
type Schedule struct {
	Date        date.Date     `yaml:"date" json:"date"`
	Blocks      []Block       `yaml:"blocks" json:"blocks"`
	Unscheduled []Unscheduled `yaml:"unscheduled" json:"unscheduled"`
}

// TaskBlocks returns the blocks carrying tasks, skipping breaks.
func (s *Schedule) TaskBlocks() []Block {
	out := make([]Block, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		if !b.IsBreak() {
			out = append(out, b)
		}
	}
	return out
}

// ScheduledIDs returns the distinct task ids with at least one block, in
// first-block order.
func (s *Schedule) ScheduledIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range s.Blocks {
		if b.IsBreak() || seen[*b.TaskID] {
			continue
		}
		seen[*b.TaskID] = true
		ids = append(ids, *b.TaskID)
	}
	return ids
}

// BlocksFor returns the blocks belonging to one task, in order.
func (s *Schedule) BlocksFor(taskID string) []Block {
	var out []Block
	for _, b := range s.Blocks {
		if !b.IsBreak() && *b.TaskID == taskID {
			out = append(out, b)
		}
	}
	return out
}

package task

import "sort"

// SortForPlanning orders tasks into the scheduling queue: due date
// ascending with undated tasks after all dated ones, then priority
// descending, then creation time, then id. The order is total, so
// identical inputs always yield the identical queue.
func SortForPlanning(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return planningLess(tasks[i], tasks[j])
	})
}

func planningLess(a, b *Task) bool {
	if c := compareDue(a, b); c != 0 {
		return c < 0
	}
	if ra, rb := PriorityRank(a.Priority), PriorityRank(b.Priority); ra != rb {
		return ra < rb
	}
	if !a.Created.Equal(b.Created) {
		return a.Created.Before(b.Created)
	}
	return a.ID < b.ID
}

// compareDue orders by due date ascending; a missing due date sorts
// after every present one.
func compareDue(a, b *Task) int {
	switch {
	case a.Due == nil && b.Due == nil:
		return 0
	case a.Due == nil:
		return 1
	case b.Due == nil:
		return -1
	case a.Due.Before(b.Due.Time):
		return -1
	case b.Due.Before(a.Due.Time):
		return 1
	default:
		return 0
	}
}

// Sort sorts tasks by the given field for listing. Priority and status
// use their semantic order, not alphabetical.
func Sort(tasks []*Task, field string, reverse bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		less := compareField(tasks[i], tasks[j], field)
		if reverse {
			return !less
		}
		return less
	})
}

func compareField(a, b *Task, field string) bool {
	switch field {
	case "id":
		return a.ID < b.ID
	case "status":
		return statusIndex(a.Status) < statusIndex(b.Status)
	case "priority":
		return PriorityRank(a.Priority) < PriorityRank(b.Priority)
	case "created":
		return a.Created.Before(b.Created)
	case "updated":
		return a.Updated.Before(b.Updated)
	case "due":
		return compareDue(a, b) < 0
	default:
		return a.ID < b.ID
	}
}

func statusIndex(s string) int {
	for i, name := range Statuses() {
		if name == s {
			return i
		}
	}
	return len(Statuses())
}

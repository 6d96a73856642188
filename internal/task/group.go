package task

import "sort"

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key      string          `json:"key"`
	Statuses []StatusSummary `json:"statuses"`
	Total    int             `json:"total"`
}

// StatusSummary counts a group's tasks in one status.
type StatusSummary struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{"tag", "priority", "status"}
}

// GroupBy groups tasks by the specified field and returns summaries per
// group. Tasks with several tags appear in each tag's group.
func GroupBy(tasks []*Task, field string) GroupedSummary {
	groups := make(map[string][]*Task)
	for _, t := range tasks {
		for _, key := range groupKeys(t, field) {
			groups[key] = append(groups[key], t)
		}
	}

	keys := sortGroupKeys(groups, field)
	result := GroupedSummary{Groups: make([]GroupSummary, 0, len(keys))}
	for _, key := range keys {
		result.Groups = append(result.Groups, GroupSummary{
			Key:      key,
			Statuses: statusSummary(groups[key]),
			Total:    len(groups[key]),
		})
	}
	return result
}

func groupKeys(t *Task, field string) []string {
	switch field {
	case "tag":
		if len(t.Tags) == 0 {
			return []string{"(untagged)"}
		}
		return t.Tags
	case "priority":
		return []string{t.Priority}
	case "status":
		return []string{t.Status}
	default:
		return []string{"(all)"}
	}
}

func sortGroupKeys(groups map[string][]*Task, field string) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	switch field {
	case "status":
		sort.SliceStable(keys, func(i, j int) bool {
			return statusIndex(keys[i]) < statusIndex(keys[j])
		})
	case "priority":
		sort.SliceStable(keys, func(i, j int) bool {
			return PriorityRank(keys[i]) < PriorityRank(keys[j])
		})
	default:
		sort.Strings(keys)
	}
	return keys
}

func statusSummary(tasks []*Task) []StatusSummary {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	statuses := make([]StatusSummary, 0, len(Statuses()))
	for _, s := range Statuses() {
		if counts[s] == 0 {
			continue
		}
		statuses = append(statuses, StatusSummary{Status: s, Count: counts[s]})
	}
	return statuses
}

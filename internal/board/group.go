package board

import (
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// Group-by fields.
const (
	GroupQuadrant = "quadrant"
	GroupStatus   = "status"
)

// Group is one bucket of a grouped listing.
type Group struct {
	Key   string       `json:"key"`
	Label string       `json:"label,omitempty"`
	Tasks []*task.Task `json:"tasks"`
	Total int          `json:"total"`
}

// GroupBy buckets tasks by quadrant or status. Every bucket is present,
// in display order, even when empty. Task order within a bucket is kept.
func GroupBy(tasks []*task.Task, field string) ([]Group, error) {
	var groups []Group
	index := make(map[string]int)
	add := func(key, label string) {
		index[key] = len(groups)
		groups = append(groups, Group{Key: key, Label: label, Tasks: []*task.Task{}})
	}

	var keyOf func(*task.Task) string
	switch field {
	case GroupQuadrant:
		for _, q := range task.Quadrants {
			add(string(q), q.Label())
		}
		keyOf = func(t *task.Task) string { return string(t.Quadrant) }
	case GroupStatus:
		add(task.StatusPending, "")
		add(task.StatusCompleted, "")
		keyOf = task.StatusOf
	default:
		return nil, clierr.Newf(clierr.InvalidGroupBy, "invalid group-by field %q", field).
			WithDetails(map[string]any{"field": field, "allowed": ValidGroupByFields()})
	}

	for _, t := range tasks {
		i, ok := index[keyOf(t)]
		if !ok {
			continue
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
		groups[i].Total++
	}
	return groups, nil
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{GroupQuadrant, GroupStatus}
}

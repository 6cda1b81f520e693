package board

import (
	"slices"
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// Sort fields.
const (
	SortID       = "id"
	SortTitle    = "title"
	SortQuadrant = "quadrant"
	SortDeadline = "deadline"
	SortCreated  = "created"
)

// SortFields lists the accepted --sort values.
var SortFields = []string{SortID, SortTitle, SortQuadrant, SortDeadline, SortCreated}

func validSortField(f string) bool {
	return slices.Contains(SortFields, f)
}

// Sort sorts tasks by the given field. Quadrant order is Q1..Q4 with
// the nearest deadline first inside a quadrant.
func Sort(tasks []*task.Task, field string, reverse bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field)
		}
		return compareTasks(tasks[i], tasks[j], field)
	})
}

func compareTasks(a, b *task.Task, field string) bool {
	switch field {
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortQuadrant:
		if a.Quadrant != b.Quadrant {
			return a.Quadrant < b.Quadrant
		}
		return compareDeadline(a, b)
	case SortDeadline:
		return compareDeadline(a, b)
	case SortCreated:
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.ID < b.ID
	}
}

func compareDeadline(a, b *task.Task) bool {
	if a.DeadlineAt == nil && b.DeadlineAt == nil {
		return false
	}
	if a.DeadlineAt == nil {
		return false // nil sorts last
	}
	if b.DeadlineAt == nil {
		return true
	}
	return a.DeadlineAt.Before(*b.DeadlineAt)
}

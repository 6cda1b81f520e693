package board

import (
	"time"

	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// StatusCounts splits tasks by completion state.
type StatusCounts struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Stats is the aggregate board overview.
type Stats struct {
	TotalTasks   int                   `json:"total_tasks"`
	ByQuadrant   map[task.Quadrant]int `json:"by_quadrant"`
	ByStatus     StatusCounts          `json:"by_status"`
	OverdueTasks int                   `json:"overdue_tasks"`
}

// Aggregate computes board statistics from a snapshot. Every quadrant key
// is present even when its count is zero. Overdue is evaluated against now
// rather than the cached urgency flag.
func Aggregate(tasks []*task.Task, now time.Time) Stats {
	s := Stats{
		TotalTasks: len(tasks),
		ByQuadrant: make(map[task.Quadrant]int, len(task.Quadrants)),
	}
	for _, q := range task.Quadrants {
		s.ByQuadrant[q] = 0
	}

	for _, t := range tasks {
		if t.Quadrant.Valid() {
			s.ByQuadrant[t.Quadrant]++
		}
		if t.Completed {
			s.ByStatus.Completed++
		} else {
			s.ByStatus.Pending++
		}
		if t.IsOverdue(now) {
			s.OverdueTasks++
		}
	}
	return s
}

package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/date"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t, now))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, now time.Time) {
	fmt.Fprintln(w, formatTaskLine(t, now))

	ts := "  created:" + t.CreatedAt.UTC().Format(timeFormat)
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.UTC().Format(timeFormat)
	}
	fmt.Fprintln(w, ts)

	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// StatsCompact renders board statistics in compact format.
func StatsCompact(w io.Writer, boardName string, s board.Stats) {
	fmt.Fprintf(w, "%s (%d tasks, %d pending, %d completed, %d overdue)\n",
		boardName, s.TotalTasks, s.ByStatus.Pending, s.ByStatus.Completed, s.OverdueTasks)

	parts := make([]string, 0, len(task.Quadrants))
	for _, q := range task.Quadrants {
		parts = append(parts, string(q)+"="+strconv.Itoa(s.ByQuadrant[q]))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, " "))
}

// GroupedCompact renders grouped tasks, one header line per group.
func GroupedCompact(w io.Writer, groups []board.Group, now time.Time) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s: %d\n", g.Key, g.Total)
		for _, t := range g.Tasks {
			fmt.Fprintln(w, "  "+formatTaskLine(t, now))
		}
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task, now time.Time) string {
	line := "#" + strconv.Itoa(t.ID) + " [" + string(t.Quadrant) + "/" + task.StatusOf(t) + "] " + t.Title

	if t.DeadlineAt != nil {
		line += " deadline:" + date.Format(*t.DeadlineAt)
		if t.IsOverdue(now) {
			line += " overdue"
		}
	}

	return line
}

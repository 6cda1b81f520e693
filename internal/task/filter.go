package task

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
)

// Status tokens accepted by listing operations.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// MinSearchLength is the shortest accepted search query, in characters.
const MinSearchLength = 2

// ParseStatus maps a status token onto the completed flag.
func ParseStatus(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case StatusCompleted:
		return true, nil
	case StatusPending:
		return false, nil
	default:
		return false, clierr.Newf(clierr.InvalidStatus,
			"invalid status %q: must be completed or pending", s).
			WithDetails(map[string]any{
				"status":  s,
				"allowed": []string{StatusCompleted, StatusPending},
			})
	}
}

// StatusOf returns the status token for a task.
func StatusOf(t *Task) string {
	if t.Completed {
		return StatusCompleted
	}
	return StatusPending
}

// ValidateQuery enforces MinSearchLength. The query is matched as given,
// so surrounding spaces count toward the length and the match.
func ValidateQuery(q string) error {
	if utf8.RuneCountInString(q) < MinSearchLength {
		return clierr.Newf(clierr.InvalidQuery,
			"search query must be at least %d characters", MinSearchLength).
			WithDetails(map[string]any{"query": q, "min_length": MinSearchLength})
	}
	return nil
}

// Filter selects tasks. All set criteria must match (AND logic).
type Filter struct {
	Quadrants []Quadrant // empty matches any quadrant
	Completed *bool      // nil matches both states
	Search    string     // case-insensitive substring over title and description
}

// Matches reports whether t satisfies every criterion of f.
func (f Filter) Matches(t *Task) bool {
	if len(f.Quadrants) > 0 && !slices.Contains(f.Quadrants, t.Quadrant) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Search != "" && !MatchesSearch(t, f.Search) {
		return false
	}
	return true
}

// MatchesSearch performs case-insensitive substring matching across title and description.
func MatchesSearch(t *Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description), q)
}

// Apply returns the tasks that match f, preserving order.
func (f Filter) Apply(tasks []*Task) []*Task {
	var out []*Task
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

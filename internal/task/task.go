// Package task defines the task record and the pure classification rules
// that derive urgency and quadrant from it.
package task

import "time"

// Task is a single item on the board. IsUrgent and Quadrant are derived
// from the other fields and are never accepted as input.
type Task struct {
	ID          int        `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	IsImportant bool       `yaml:"is_important" json:"is_important"`
	IsUrgent    bool       `yaml:"is_urgent" json:"is_urgent"`
	Quadrant    Quadrant   `yaml:"quadrant" json:"quadrant"`
	DeadlineAt  *time.Time `yaml:"deadline_at,omitempty" json:"deadline_at"`
	Completed   bool       `yaml:"completed" json:"completed"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty" json:"completed_at"`

	// Description is free text. File-backed storage keeps it as the
	// markdown body below the frontmatter.
	Description string `yaml:"-" json:"description"`
}

// Clone returns a deep copy so callers can mutate without aliasing
// timestamps held by a store.
func (t *Task) Clone() *Task {
	c := *t
	if t.DeadlineAt != nil {
		d := *t.DeadlineAt
		c.DeadlineAt = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return &c
}

// IsOverdue reports whether a pending task's deadline has passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DeadlineAt != nil && t.DeadlineAt.Before(now)
}

package board

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// CreateInput holds the caller-supplied fields of a new task.
type CreateInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"max=500"`
	IsImportant *bool      `json:"is_important" validate:"required"`
	DeadlineAt  *time.Time `json:"deadline_at"`
}

// Patch is a partial update. Nil pointers leave a field untouched; the
// Clear flags remove an optional value. Derived fields cannot be patched.
type Patch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	IsImportant      *bool
	DeadlineAt       *time.Time
	ClearDeadline    bool
	Completed        *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription &&
		p.IsImportant == nil && p.DeadlineAt == nil && !p.ClearDeadline &&
		p.Completed == nil
}

func (p Patch) deadlineTouched() bool {
	return p.DeadlineAt != nil || p.ClearDeadline
}

func (p Patch) validate() error {
	if p.Empty() {
		return clierr.New(clierr.NoChanges, "no fields to update")
	}
	if p.Title != nil {
		if err := task.ValidateField("title", strings.TrimSpace(*p.Title), task.TitleRule); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if p.ClearDescription {
			return conflict("description")
		}
		if err := task.ValidateField("description", *p.Description, task.DescriptionRule); err != nil {
			return err
		}
	}
	if p.DeadlineAt != nil && p.ClearDeadline {
		return conflict("deadline_at")
	}
	return nil
}

func conflict(field string) error {
	return clierr.Newf(clierr.InvalidInput, "%s cannot be set and cleared at once", field).
		WithDetails(map[string]any{"field": field})
}

// apply merges p into t. Urgency is recomputed only when the deadline
// changes, and the quadrant only when importance or the deadline changes.
func (p Patch) apply(t *task.Task, now time.Time) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	switch {
	case p.ClearDescription:
		t.Description = ""
	case p.Description != nil:
		t.Description = *p.Description
	}
	if p.IsImportant != nil {
		t.IsImportant = *p.IsImportant
	}
	switch {
	case p.ClearDeadline:
		t.DeadlineAt = nil
	case p.DeadlineAt != nil:
		d := p.DeadlineAt.UTC()
		t.DeadlineAt = &d
	}

	if p.deadlineTouched() {
		t.IsUrgent = task.DeriveUrgency(t.DeadlineAt, now)
	}
	if p.deadlineTouched() || p.IsImportant != nil {
		t.Quadrant = task.Classify(t.IsImportant, t.IsUrgent)
	}

	if p.Completed != nil {
		if *p.Completed {
			task.MarkCompleted(t, now)
		} else {
			task.MarkPending(t)
		}
	}
}

package task

import "time"

// Reclassify recomputes IsUrgent and Quadrant as of now.
// Returns true if either derived field changed.
func Reclassify(t *Task, now time.Time) bool {
	urgent := DeriveUrgency(t.DeadlineAt, now)
	q := Classify(t.IsImportant, urgent)
	changed := urgent != t.IsUrgent || q != t.Quadrant
	t.IsUrgent = urgent
	t.Quadrant = q
	return changed
}

// MarkCompleted sets the completed flag and stamps CompletedAt.
// Completing a task that is already completed is a no-op and keeps the
// original timestamp. Returns true if the task changed.
func MarkCompleted(t *Task, now time.Time) bool {
	if t.Completed {
		return false
	}
	ts := now.UTC()
	t.Completed = true
	t.CompletedAt = &ts
	return true
}

// MarkPending reopens a completed task and clears CompletedAt.
// Returns true if the task changed.
func MarkPending(t *Task) bool {
	if !t.Completed {
		return false
	}
	t.Completed = false
	t.CompletedAt = nil
	return true
}

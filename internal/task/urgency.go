package task

import "time"

// UrgencyWindow is how close a deadline must be for a task to count as urgent.
const UrgencyWindow = 72 * time.Hour

// DeriveUrgency reports whether a deadline falls within UrgencyWindow of now.
// A missing deadline is never urgent; a deadline already in the past is.
// Both instants are compared in UTC, so zone offsets do not shift the result.
func DeriveUrgency(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	return deadline.UTC().Sub(now.UTC()) < UrgencyWindow
}

// Package store defines the persistence contract for tasks.
//
// Implementations own id assignment and make Update an atomic
// read-modify-write for a single task. Missing ids are reported as a
// TASK_NOT_FOUND error; every other failure is an infrastructure error
// wrapped for context and passed through untouched.
package store

import (
	"context"

	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// MutateFunc edits a task in place inside Store.Update. Returning an error
// aborts the update and leaves the stored task unchanged.
type MutateFunc func(t *task.Task) error

// Store persists tasks.
type Store interface {
	// Insert assigns a fresh id to t, persists it and returns the stored copy.
	Insert(ctx context.Context, t *task.Task) (*task.Task, error)
	// FindByID returns the task with the given id.
	FindByID(ctx context.Context, id int) (*task.Task, error)
	// FindAll returns every task ordered by id.
	FindAll(ctx context.Context) ([]*task.Task, error)
	// FindByFilter returns the tasks matching f ordered by id.
	FindByFilter(ctx context.Context, f task.Filter) ([]*task.Task, error)
	// Update applies mutate to the current state of the task and persists
	// the result. No other writer observes or modifies the task in between.
	Update(ctx context.Context, id int, mutate MutateFunc) (*task.Task, error)
	// Delete removes the task.
	Delete(ctx context.Context, id int) error
	// Close releases resources held by the store.
	Close() error
}

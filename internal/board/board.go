// Package board implements the task lifecycle on top of a store: creation,
// partial updates, completion, deletion, listing and search.
package board

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// Board is the lifecycle controller. It keeps no task state of its own;
// every read and write goes through the store.
type Board struct {
	store  store.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithClock overrides the time source used for derivation and timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithLogger sets the logger for mutation events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// New returns a Board backed by s.
func New(s store.Store, opts ...Option) *Board {
	b := &Board{store: s, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Now returns the board clock in UTC.
func (b *Board) Now() time.Time {
	return b.now().UTC()
}

// Create validates in, derives urgency and quadrant, and persists a new task.
func (b *Board) Create(ctx context.Context, in CreateInput) (*task.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := task.ValidateStruct(in); err != nil {
		return nil, err
	}

	now := b.Now()
	t := &task.Task{
		Title:       in.Title,
		Description: in.Description,
		IsImportant: *in.IsImportant,
		CreatedAt:   now,
	}
	if in.DeadlineAt != nil {
		d := in.DeadlineAt.UTC()
		t.DeadlineAt = &d
	}
	task.Reclassify(t, now)

	created, err := b.store.Insert(ctx, t)
	if err != nil {
		return nil, err
	}
	b.logger.Info("task created", "id", created.ID, "quadrant", created.Quadrant)
	return created, nil
}

// Update applies a partial update atomically.
func (b *Board) Update(ctx context.Context, id int, p Patch) (*task.Task, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	now := b.Now()
	t, err := b.store.Update(ctx, id, func(t *task.Task) error {
		p.apply(t, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("task updated", "id", id, "quadrant", t.Quadrant, "completed", t.Completed)
	return t, nil
}

// Complete marks a task completed. Completing an already completed task
// succeeds without touching its original completion time.
func (b *Board) Complete(ctx context.Context, id int) (*task.Task, error) {
	now := b.Now()
	changed := false
	t, err := b.store.Update(ctx, id, func(t *task.Task) error {
		changed = task.MarkCompleted(t, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		b.logger.Info("task completed", "id", id)
	}
	return t, nil
}

// Reopen returns a completed task to pending and clears its completion time.
func (b *Board) Reopen(ctx context.Context, id int) (*task.Task, error) {
	changed := false
	t, err := b.store.Update(ctx, id, func(t *task.Task) error {
		changed = task.MarkPending(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		b.logger.Info("task reopened", "id", id)
	}
	return t, nil
}

// Deleted describes a removed task.
type Deleted struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Delete removes a task.
func (b *Board) Delete(ctx context.Context, id int) (Deleted, error) {
	t, err := b.store.FindByID(ctx, id)
	if err != nil {
		return Deleted{}, err
	}
	if err := b.store.Delete(ctx, id); err != nil {
		return Deleted{}, err
	}
	b.logger.Info("task deleted", "id", id)
	return Deleted{ID: id, Title: t.Title}, nil
}

// Get returns a single task.
func (b *Board) Get(ctx context.Context, id int) (*task.Task, error) {
	return b.store.FindByID(ctx, id)
}

// ListOptions controls how tasks are listed.
type ListOptions struct {
	Filter  task.Filter
	Overdue bool // only pending tasks whose deadline has passed
	SortBy  string
	Reverse bool
	Limit   int
}

// List returns the tasks matching opts, sorted and truncated.
func (b *Board) List(ctx context.Context, opts ListOptions) ([]*task.Task, error) {
	sortField := opts.SortBy
	if sortField == "" {
		sortField = SortID
	}
	if !validSortField(sortField) {
		return nil, clierr.Newf(clierr.InvalidInput, "invalid sort field %q", sortField).
			WithDetails(map[string]any{"sort": sortField, "allowed": SortFields})
	}
	if opts.Filter.Search != "" {
		if err := task.ValidateQuery(opts.Filter.Search); err != nil {
			return nil, err
		}
	}

	tasks, err := b.store.FindByFilter(ctx, opts.Filter)
	if err != nil {
		return nil, err
	}

	if opts.Overdue {
		now := b.Now()
		kept := tasks[:0]
		for _, t := range tasks {
			if t.IsOverdue(now) {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}

	Sort(tasks, sortField, opts.Reverse)

	if opts.Limit > 0 && len(tasks) > opts.Limit {
		tasks = tasks[:opts.Limit]
	}
	return tasks, nil
}

// ListAll returns every task ordered by id.
func (b *Board) ListAll(ctx context.Context) ([]*task.Task, error) {
	return b.store.FindAll(ctx)
}

// ListByQuadrant returns the tasks in the named quadrant (Q1..Q4).
func (b *Board) ListByQuadrant(ctx context.Context, quadrant string) (task.Quadrant, []*task.Task, error) {
	q, err := task.ParseQuadrant(quadrant)
	if err != nil {
		return "", nil, err
	}
	tasks, err := b.store.FindByFilter(ctx, task.Filter{Quadrants: []task.Quadrant{q}})
	return q, tasks, err
}

// ListByStatus returns completed or pending tasks.
func (b *Board) ListByStatus(ctx context.Context, status string) ([]*task.Task, error) {
	completed, err := task.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return b.store.FindByFilter(ctx, task.Filter{Completed: &completed})
}

// Search returns tasks whose title or description contains q, ignoring case.
func (b *Board) Search(ctx context.Context, q string) ([]*task.Task, error) {
	if err := task.ValidateQuery(q); err != nil {
		return nil, err
	}
	return b.store.FindByFilter(ctx, task.Filter{Search: q})
}

// Refresh re-derives urgency and quadrant for every pending task with a deadline
// as of now and persists the ones that changed. Derived fields otherwise
// reflect the time of the last write that touched the deadline.
func (b *Board) Refresh(ctx context.Context) ([]*task.Task, error) {
	now := b.Now()
	tasks, err := b.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var changed []*task.Task
	for _, t := range tasks {
		if t.Completed || t.DeadlineAt == nil || !task.Reclassify(t.Clone(), now) {
			continue
		}
		updated, err := b.store.Update(ctx, t.ID, func(t *task.Task) error {
			task.Reclassify(t, now)
			return nil
		})
		if clierr.Is(err, clierr.TaskNotFound) {
			continue // deleted concurrently
		}
		if err != nil {
			return changed, err
		}
		changed = append(changed, updated)
	}
	b.logger.Info("derived fields refreshed", "changed", len(changed))
	return changed, nil
}

// Stats aggregates the current snapshot of the board.
func (b *Board) Stats(ctx context.Context) (Stats, error) {
	tasks, err := b.store.FindAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(tasks, b.Now()), nil
}

// ParseIDs splits a comma-separated ID string into deduplicated int IDs.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int]bool, len(parts))
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := ParseID(p)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}

// ParseID parses a single positive task id.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id < 1 {
		return 0, task.ValidateTaskID(s)
	}
	return id, nil
}

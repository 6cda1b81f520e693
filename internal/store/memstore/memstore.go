// Package memstore is an in-process Store backed by a map.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// Store keeps tasks in memory. Copies cross the API boundary in both
// directions so callers never share state with the store.
type Store struct {
	mu     sync.RWMutex
	tasks  map[int]*task.Task
	nextID int
}

var _ store.Store = (*Store)(nil)

// New returns an empty store whose first id is 1.
func New() *Store {
	return &Store{tasks: make(map[int]*task.Task), nextID: 1}
}

// Insert implements store.Store.
func (s *Store) Insert(_ context.Context, t *task.Task) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := t.Clone()
	c.ID = s.nextID
	s.nextID++
	s.tasks[c.ID] = c
	return c.Clone(), nil
}

// FindByID implements store.Store.
func (s *Store) FindByID(_ context.Context, id int) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, task.NotFound(id)
	}
	return t.Clone(), nil
}

// FindAll implements store.Store.
func (s *Store) FindAll(ctx context.Context) ([]*task.Task, error) {
	return s.FindByFilter(ctx, task.Filter{})
}

// FindByFilter implements store.Store.
func (s *Store) FindByFilter(_ context.Context, f task.Filter) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *task.Task) int { return a.ID - b.ID })
	return out, nil
}

// Update implements store.Store.
func (s *Store) Update(_ context.Context, id int, mutate store.MutateFunc) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[id]
	if !ok {
		return nil, task.NotFound(id)
	}
	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	s.tasks[id] = next
	return next.Clone(), nil
}

// Delete implements store.Store.
func (s *Store) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return task.NotFound(id)
	}
	delete(s.tasks, id)
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

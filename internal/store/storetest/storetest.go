// Package storetest holds the behavioral suite every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sample(title string, important bool, deadline *time.Time) *task.Task {
	tk := &task.Task{
		Title:       title,
		IsImportant: important,
		DeadlineAt:  deadline,
		CreatedAt:   now,
	}
	task.Reclassify(tk, now)
	return tk
}

func ptr[T any](v T) *T { return &v }

// Run exercises the full store contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("insert assigns increasing ids", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Insert(ctx, sample("first", true, nil))
		require.NoError(t, err)
		b, err := s.Insert(ctx, sample("second", false, nil))
		require.NoError(t, err)
		assert.Positive(t, a.ID)
		assert.Greater(t, b.ID, a.ID)
	})

	t.Run("round trip keeps every field", func(t *testing.T) {
		s := newStore(t)
		deadline := now.Add(48 * time.Hour)
		in := sample("Write report", true, &deadline)
		in.Description = "\n  quarterly numbers\nwith two lines\n\n"
		created, err := s.Insert(ctx, in)
		require.NoError(t, err)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Write report", got.Title)
		assert.Equal(t, "\n  quarterly numbers\nwith two lines\n\n", got.Description)
		assert.True(t, got.IsImportant)
		assert.True(t, got.IsUrgent)
		assert.Equal(t, task.Q1, got.Quadrant)
		require.NotNil(t, got.DeadlineAt)
		assert.True(t, deadline.Equal(*got.DeadlineAt))
		assert.True(t, now.Equal(got.CreatedAt))
		assert.False(t, got.Completed)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindByID(ctx, 999)
		assert.True(t, clierr.Is(err, clierr.TaskNotFound))

		_, err = s.Update(ctx, 999, func(*task.Task) error { return nil })
		assert.True(t, clierr.Is(err, clierr.TaskNotFound))

		assert.True(t, clierr.Is(s.Delete(ctx, 999), clierr.TaskNotFound))
	})

	t.Run("find by filter", func(t *testing.T) {
		s := newStore(t)
		soon := now.Add(time.Hour)
		_, err := s.Insert(ctx, sample("Fix outage", true, &soon)) // Q1
		require.NoError(t, err)
		_, err = s.Insert(ctx, sample("Plan roadmap", true, nil)) // Q2
		require.NoError(t, err)
		q3, err := s.Insert(ctx, sample("Answer email", false, &soon)) // Q3
		require.NoError(t, err)
		_, err = s.Update(ctx, q3.ID, func(tk *task.Task) error {
			task.MarkCompleted(tk, now)
			return nil
		})
		require.NoError(t, err)

		got, err := s.FindByFilter(ctx, task.Filter{Quadrants: []task.Quadrant{task.Q1, task.Q3}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Fix outage", "Answer email"}, titles(got))

		got, err = s.FindByFilter(ctx, task.Filter{Completed: ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, []string{"Answer email"}, titles(got))

		got, err = s.FindByFilter(ctx, task.Filter{Search: "ROAD"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Plan roadmap"}, titles(got))

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("update applies mutation", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sample("Old title", false, nil))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, func(tk *task.Task) error {
			tk.Title = "New title"
			tk.Description = "details"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, "details", got.Description)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("failed mutation leaves task unchanged", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sample("Keep me", false, nil))
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = s.Update(ctx, created.ID, func(tk *task.Task) error {
			tk.Title = "Changed"
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Keep me", got.Title)
	})

	t.Run("delete removes task and does not reuse id", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Insert(ctx, sample("a", false, nil))
		require.NoError(t, err)
		b, err := s.Insert(ctx, sample("b", false, nil))
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, b.ID))

		_, err = s.FindByID(ctx, b.ID)
		assert.True(t, clierr.Is(err, clierr.TaskNotFound))

		c, err := s.Insert(ctx, sample("c", false, nil))
		require.NoError(t, err)
		assert.Greater(t, c.ID, b.ID)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{a.ID, c.ID}, ids(all))
	})

	t.Run("returned tasks are copies", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sample("Original", false, nil))
		require.NoError(t, err)
		created.Title = "mutated locally"

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Title)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sample("counter", false, nil))
		require.NoError(t, err)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, created.ID, func(tk *task.Task) error {
					tk.Description += "x"
					return nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, got.Description, workers)
	})
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func ids(tasks []*task.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

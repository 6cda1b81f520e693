package board_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/store/memstore"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var start = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func ptr[T any](v T) *T { return &v }

func newBoard(t *testing.T) (*board.Board, *clock) {
	t.Helper()
	c := &clock{t: start}
	return board.New(memstore.New(), board.WithClock(c.now)), c
}

func create(t *testing.T, b *board.Board, title string, important bool, deadline *time.Time) *task.Task {
	t.Helper()
	tk, err := b.Create(context.Background(), board.CreateInput{
		Title:       title,
		IsImportant: ptr(important),
		DeadlineAt:  deadline,
	})
	require.NoError(t, err)
	return tk
}

func in(d time.Duration) *time.Time {
	t := start.Add(d)
	return &t
}

func TestCreateDerivesQuadrant(t *testing.T) {
	b, _ := newBoard(t)

	tk := create(t, b, "Ship release", true, in(48*time.Hour))
	assert.Positive(t, tk.ID)
	assert.True(t, tk.IsUrgent)
	assert.Equal(t, task.Q1, tk.Quadrant)
	assert.False(t, tk.Completed)
	assert.Nil(t, tk.CompletedAt)
	assert.True(t, start.Equal(tk.CreatedAt))

	tk = create(t, b, "Learn Go generics", true, in(5*24*time.Hour))
	assert.False(t, tk.IsUrgent)
	assert.Equal(t, task.Q2, tk.Quadrant)

	tk = create(t, b, "Answer ping", false, in(-time.Hour))
	assert.True(t, tk.IsUrgent)
	assert.Equal(t, task.Q3, tk.Quadrant)

	tk = create(t, b, "Tidy desk", false, nil)
	assert.Equal(t, task.Q4, tk.Quadrant)
}

func TestCreateNormalizesDeadlineToUTC(t *testing.T) {
	b, _ := newBoard(t)
	d := start.Add(time.Hour).In(time.FixedZone("X", -5*3600))
	tk := create(t, b, "zoned", false, &d)
	require.NotNil(t, tk.DeadlineAt)
	assert.Equal(t, time.UTC, tk.DeadlineAt.Location())
	assert.True(t, d.Equal(*tk.DeadlineAt))
}

func TestCreateValidation(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input board.CreateInput
		field string
	}{
		{name: "blank title", input: board.CreateInput{Title: "   ", IsImportant: ptr(true)}, field: "title"},
		{name: "short title", input: board.CreateInput{Title: " ab ", IsImportant: ptr(true)}, field: "title"},
		{name: "long title", input: board.CreateInput{Title: strings.Repeat("t", 201), IsImportant: ptr(true)}, field: "title"},
		{name: "long description", input: board.CreateInput{Title: "Okay", Description: strings.Repeat("d", 501), IsImportant: ptr(true)}, field: "description"},
		{name: "missing importance", input: board.CreateInput{Title: "Okay"}, field: "is_important"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Create(ctx, tt.input)
			require.Error(t, err)
			e := clierr.As(err)
			assert.Equal(t, clierr.InvalidInput, e.Code)
			assert.Contains(t, e.Details["fields"], tt.field)
		})
	}

	all, err := b.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateImportanceKeepsCachedUrgency(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", false, in(5*24*time.Hour)) // Q4

	// Three days later the deadline is close, but only importance changes.
	clk.advance(3 * 24 * time.Hour)
	got, err := b.Update(ctx, tk.ID, board.Patch{IsImportant: ptr(true)})
	require.NoError(t, err)
	assert.False(t, got.IsUrgent)
	assert.Equal(t, task.Q2, got.Quadrant)
}

func TestUpdateDeadlineRecomputesUrgency(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil) // Q2

	got, err := b.Update(ctx, tk.ID, board.Patch{DeadlineAt: in(time.Hour)})
	require.NoError(t, err)
	assert.True(t, got.IsUrgent)
	assert.Equal(t, task.Q1, got.Quadrant)

	got, err = b.Update(ctx, tk.ID, board.Patch{ClearDeadline: true})
	require.NoError(t, err)
	assert.Nil(t, got.DeadlineAt)
	assert.False(t, got.IsUrgent)
	assert.Equal(t, task.Q2, got.Quadrant)
}

func TestUpdateTitleOnlyLeavesDerivedFields(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, in(4*24*time.Hour)) // Q2

	clk.advance(2 * 24 * time.Hour)
	got, err := b.Update(ctx, tk.ID, board.Patch{Title: ptr("  Final report ")})
	require.NoError(t, err)
	assert.Equal(t, "Final report", got.Title)
	assert.False(t, got.IsUrgent)
	assert.Equal(t, task.Q2, got.Quadrant)
}

func TestUpdateDescription(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil)

	got, err := b.Update(ctx, tk.ID, board.Patch{Description: ptr("notes")})
	require.NoError(t, err)
	assert.Equal(t, "notes", got.Description)

	got, err = b.Update(ctx, tk.ID, board.Patch{ClearDescription: true})
	require.NoError(t, err)
	assert.Empty(t, got.Description)
}

func TestUpdateErrors(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil)

	_, err := b.Update(ctx, tk.ID, board.Patch{})
	assert.True(t, clierr.Is(err, clierr.NoChanges))

	_, err = b.Update(ctx, tk.ID, board.Patch{Title: ptr("")})
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	_, err = b.Update(ctx, tk.ID, board.Patch{Description: ptr(strings.Repeat("d", 501))})
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	_, err = b.Update(ctx, tk.ID, board.Patch{DeadlineAt: in(time.Hour), ClearDeadline: true})
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	_, err = b.Update(ctx, 404, board.Patch{Title: ptr("x")})
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))

	got, err := b.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Report", got.Title)
}

func TestUpdateCompletedFlag(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil)

	got, err := b.Update(ctx, tk.ID, board.Patch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	first := *got.CompletedAt

	clk.advance(time.Hour)
	got, err = b.Update(ctx, tk.ID, board.Patch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, first.Equal(*got.CompletedAt))

	got, err = b.Update(ctx, tk.ID, board.Patch{Completed: ptr(false)})
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestCompleteIsIdempotent(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil)

	got, err := b.Complete(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, start.Equal(*got.CompletedAt))

	clk.advance(time.Hour)
	got, err = b.Complete(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, start.Equal(*got.CompletedAt))

	_, err = b.Complete(ctx, 999)
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
}

func TestReopen(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil)

	_, err := b.Complete(ctx, tk.ID)
	require.NoError(t, err)
	got, err := b.Reopen(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestDelete(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Throw away", false, nil)

	del, err := b.Delete(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, board.Deleted{ID: tk.ID, Title: "Throw away"}, del)

	_, err = b.Get(ctx, tk.ID)
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))

	_, err = b.Delete(ctx, tk.ID)
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
}

func TestListings(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	q1 := create(t, b, "Fix outage", true, in(time.Hour))
	q2 := create(t, b, "Plan roadmap", true, nil)
	q3 := create(t, b, "Reply to vendor", false, in(time.Hour))
	_, err := b.Complete(ctx, q3.ID)
	require.NoError(t, err)

	q, tasks, err := b.ListByQuadrant(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, task.Q1, q)
	assert.Equal(t, []int{q1.ID}, ids(tasks))

	_, tasks, err = b.ListByQuadrant(ctx, "Q4")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, _, err = b.ListByQuadrant(ctx, "Q5")
	assert.True(t, clierr.Is(err, clierr.InvalidQuadrant))

	tasks, err = b.ListByStatus(ctx, "completed")
	require.NoError(t, err)
	assert.Equal(t, []int{q3.ID}, ids(tasks))

	tasks, err = b.ListByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, []int{q1.ID, q2.ID}, ids(tasks))

	_, err = b.ListByStatus(ctx, "done")
	assert.True(t, clierr.Is(err, clierr.InvalidStatus))

	tasks, err = b.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestSearch(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	a := create(t, b, "Write Quarterly report", true, nil)
	tk, err := b.Create(ctx, board.CreateInput{
		Title: "Call bank", Description: "ask about the REPORTING fee", IsImportant: ptr(false),
	})
	require.NoError(t, err)
	create(t, b, "Walk dog", false, nil)

	got, err := b.Search(ctx, "report")
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, tk.ID}, ids(got))

	got, err = b.Search(ctx, "zz")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = b.Search(ctx, "r")
	assert.True(t, clierr.Is(err, clierr.InvalidQuery))
	_, err = b.Search(ctx, " ")
	assert.True(t, clierr.Is(err, clierr.InvalidQuery))

	// The query is matched as given, spaces included.
	got, err = b.Search(ctx, " q")
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID}, ids(got))
}

func TestListOptions(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	late := create(t, b, "b late", true, in(-time.Hour))
	soon := create(t, b, "a soon", true, in(2*time.Hour))
	none := create(t, b, "c none", false, nil)

	got, err := b.List(ctx, board.ListOptions{SortBy: board.SortDeadline})
	require.NoError(t, err)
	assert.Equal(t, []int{late.ID, soon.ID, none.ID}, ids(got))

	got, err = b.List(ctx, board.ListOptions{SortBy: board.SortTitle, Reverse: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{none.ID, late.ID}, ids(got))

	got, err = b.List(ctx, board.ListOptions{Overdue: true})
	require.NoError(t, err)
	assert.Equal(t, []int{late.ID}, ids(got))

	got, err = b.List(ctx, board.ListOptions{Filter: task.Filter{Quadrants: []task.Quadrant{task.Q4}}})
	require.NoError(t, err)
	assert.Equal(t, []int{none.ID}, ids(got))

	_, err = b.List(ctx, board.ListOptions{SortBy: "priority"})
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	_, err = b.List(ctx, board.ListOptions{Filter: task.Filter{Search: "x"}})
	assert.True(t, clierr.Is(err, clierr.InvalidQuery))
}

func TestRefreshUpdatesStaleTasks(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()
	stale := create(t, b, "Prepare talk", true, in(5*24*time.Hour)) // Q2 now
	create(t, b, "No deadline", true, nil)

	clk.advance(3 * 24 * time.Hour)
	got, err := b.Get(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Q2, got.Quadrant)

	changed, err := b.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, stale.ID, changed[0].ID)
	assert.Equal(t, task.Q1, changed[0].Quadrant)

	changed, err = b.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestRefreshSkipsCompletedTasks(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Prepare talk", true, in(5*24*time.Hour)) // Q2
	_, err := b.Complete(ctx, tk.ID)
	require.NoError(t, err)

	clk.advance(4 * 24 * time.Hour)
	changed, err := b.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, changed)

	got, err := b.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.False(t, got.IsUrgent)
	assert.Equal(t, task.Q2, got.Quadrant)
}

func TestUpdateRejectsShortTitle(t *testing.T) {
	b, _ := newBoard(t)
	ctx := context.Background()
	tk := create(t, b, "Report", true, nil)

	_, err := b.Update(ctx, tk.ID, board.Patch{Title: ptr("ab")})
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	got, err := b.Update(ctx, tk.ID, board.Patch{Title: ptr("  abc ")})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Title)
}

func TestStats(t *testing.T) {
	b, clk := newBoard(t)
	ctx := context.Background()

	stats, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTasks)
	assert.Equal(t, map[task.Quadrant]int{task.Q1: 0, task.Q2: 0, task.Q3: 0, task.Q4: 0}, stats.ByQuadrant)

	create(t, b, "overdue soon", true, in(time.Hour))
	create(t, b, "future", true, in(10*24*time.Hour))
	done := create(t, b, "done late", false, in(time.Hour))
	_, err = b.Complete(ctx, done.ID)
	require.NoError(t, err)

	// Overdue is evaluated when stats are read, not when tasks were written.
	clk.advance(2 * time.Hour)
	stats, err = b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, map[task.Quadrant]int{task.Q1: 1, task.Q2: 1, task.Q3: 1, task.Q4: 0}, stats.ByQuadrant)
	assert.Equal(t, board.StatusCounts{Completed: 1, Pending: 2}, stats.ByStatus)
	assert.Equal(t, 1, stats.OverdueTasks)
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) FindAll(context.Context) ([]*task.Task, error) { return nil, f.err }

func TestStorageErrorsPassThrough(t *testing.T) {
	boom := errors.New("disk on fire")
	b := board.New(failingStore{Store: memstore.New(), err: boom})

	_, err := b.Stats(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, clierr.InternalError, clierr.As(err).Code)
}

func TestParseIDs(t *testing.T) {
	got, err := board.ParseIDs("3, 1,3,#7")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 7}, got)

	_, err = board.ParseIDs("1,x")
	assert.True(t, clierr.Is(err, clierr.InvalidTaskID))
	_, err = board.ParseIDs(",")
	assert.True(t, clierr.Is(err, clierr.InvalidTaskID))
	_, err = board.ParseIDs("0")
	assert.True(t, clierr.Is(err, clierr.InvalidTaskID))
}

func TestGroupBy(t *testing.T) {
	tasks := []*task.Task{
		{ID: 1, Quadrant: task.Q2},
		{ID: 2, Quadrant: task.Q1, Completed: true},
		{ID: 3, Quadrant: task.Q2},
	}

	groups, err := board.GroupBy(tasks, board.GroupQuadrant)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, "Q1", groups[0].Key)
	assert.Equal(t, "Do first", groups[0].Label)
	assert.Equal(t, 2, groups[1].Total)
	assert.Equal(t, []int{1, 3}, ids(groups[1].Tasks))
	assert.Empty(t, groups[3].Tasks)

	groups, err = board.GroupBy(tasks, board.GroupStatus)
	require.NoError(t, err)
	assert.Equal(t, "pending", groups[0].Key)
	assert.Equal(t, 2, groups[0].Total)
	assert.Equal(t, 1, groups[1].Total)

	_, err = board.GroupBy(tasks, "assignee")
	assert.True(t, clierr.Is(err, clierr.InvalidGroupBy))
}

func ids(tasks []*task.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

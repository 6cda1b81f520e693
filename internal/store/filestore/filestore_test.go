package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/store/storetest"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

func counter() IDSource {
	var n atomic.Int64
	return func() (int, error) { return int(n.Add(1)), nil }
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(filepath.Join(t.TempDir(), "tasks"), WithIDSource(counter()))
		require.NoError(t, err)
		return s
	})
}

func newTask(title string) *task.Task {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tk := &task.Task{Title: title, CreatedAt: now}
	task.Reclassify(tk, now)
	return tk
}

func TestInsertWritesMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	in := newTask("Write the Report!")
	in.Description = "# Notes\n\nsome *markdown*"
	created, err := s.Insert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	data, err := os.ReadFile(filepath.Join(dir, "001-write-the-report.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "---\nid: 1\ntitle: Write the Report!\n")
	assert.Contains(t, content, "quadrant: Q4\n")
	assert.True(t, strings.HasSuffix(content, "---\n\n# Notes\n\nsome *markdown*"), content)
}

func TestUpdateRenamesOnTitleChange(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := s.Insert(ctx, newTask("draft plan"))
	require.NoError(t, err)
	_, err = s.Update(ctx, created.ID, func(tk *task.Task) error {
		tk.Title = "final plan"
		return nil
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "001-draft-plan.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "001-final-plan.md"))
	assert.NoError(t, err)
}

func TestUpdateWithTitleChangeLeavesOneFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := s.Insert(ctx, newTask("draft plan"))
	require.NoError(t, err)
	updated, err := s.Update(ctx, created.ID, func(tk *task.Task) error {
		tk.Title = "final plan"
		tk.Description = "\nsteps\n\n"
		return nil
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	assert.Equal(t, []string{"001-final-plan.md"}, names)

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final plan", got.Title)
	assert.Equal(t, updated.Description, got.Description)
	assert.Equal(t, "\nsteps\n\n", got.Description)
}

func TestUpdateFailedWriteKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := s.Insert(ctx, newTask("draft plan"))
	require.NoError(t, err)
	// A directory squatting on the new name makes the final rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "001-final-plan.md", "x"), 0o700))

	_, err = s.Update(ctx, created.ID, func(tk *task.Task) error {
		tk.Title = "final plan"
		return nil
	})
	require.Error(t, err)

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft plan", got.Title)
	_, err = os.Stat(filepath.Join(dir, "001-draft-plan.md"))
	assert.NoError(t, err)
}

func TestMalformedFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Insert(ctx, newTask("good"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002-broken.md"), []byte("no frontmatter"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].Title)
}

func TestDefaultIDSourceContinuesAfterHighest(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Insert(ctx, newTask("one"))
	require.NoError(t, err)
	require.NoError(t, os.Rename(filepath.Join(dir, "001-one.md"), filepath.Join(dir, "041-one.md")))

	next, err := s.Insert(ctx, newTask("two"))
	require.NoError(t, err)
	assert.Equal(t, 42, next.ID)
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		fm      string
		body    string
		wantErr bool
	}{
		{name: "with body", in: "---\nid: 1\n---\n\nhello\n", fm: "id: 1", body: "hello\n"},
		{name: "body keeps surrounding newlines", in: "---\nid: 1\n---\n\n\nindented\n\n", fm: "id: 1", body: "\nindented\n\n"},
		{name: "body without separator", in: "---\nid: 1\n---\nhello", fm: "id: 1", body: "hello"},
		{name: "no body", in: "---\nid: 1\n---\n", fm: "id: 1", body: ""},
		{name: "closing at eof", in: "---\nid: 1\n---", fm: "id: 1\n", body: ""},
		{name: "missing opener", in: "id: 1\n", wantErr: true},
		{name: "unclosed", in: "---\nid: 1\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := splitFrontmatter([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.fm, string(fm))
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "007-fix-the-bug.md", filename(7, "Fix the bug"))
	assert.Equal(t, "1234-x.md", filename(1234, "x"))
	assert.Equal(t, "003-task.md", filename(3, "!!!"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cafe-resume-v2", slugify("Café résumé (v2)"))
	assert.Equal(t, "reply-to-vendor", slugify("  Reply -- to vendor!  "))

	long := slugify("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda")
	assert.LessOrEqual(t, len(long), maxSlugLength)
	assert.Equal(t, "alpha-beta-gamma-delta-epsilon-zeta-eta-theta-iota", long)
}

package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/config"
	"github.com/twiced-technology-gmbh/eisen/internal/filelock"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/store/filestore"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// run executes the root command with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w

	rootCmd.SetArgs(args)
	_, runErr := rootCmd.ExecuteC()

	require.NoError(t, w.Close())
	os.Stdout = stdout
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), runErr
}

func TestBoardLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "eisen")
	t.Setenv("NO_COLOR", "1")

	_, err := run(t, "init", "--dir", dir, "--name", "home", "--json")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yml"))

	_, err = run(t, "init", "--dir", dir, "--json")
	assert.True(t, clierr.Is(err, clierr.BoardAlreadyExists))

	out, err := run(t, "create", "Ship release", "--important", "--due", "+1d", "--dir", dir, "--json")
	require.NoError(t, err)
	var created task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, task.Q1, created.Quadrant)
	assert.FileExists(t, filepath.Join(dir, "tasks", "001-ship-release.md"))

	out, err = run(t, "create", "Read a book", "--important=false", "--deadline=", "--body", "Fiction", "--dir", dir, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, 2, created.ID)
	assert.Equal(t, task.Q4, created.Quadrant)
	assert.Equal(t, "Fiction", created.Description)

	out, err = run(t, "complete", "2", "--dir", dir, "--json")
	require.NoError(t, err)
	var completed task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &completed))
	assert.True(t, completed.Completed)

	out, err = run(t, "stats", "--dir", dir, "--json")
	require.NoError(t, err)
	var stats board.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.ByStatus.Completed)
	assert.Equal(t, 1, stats.ByQuadrant[task.Q1])

	out, err = run(t, "search", "FICT", "--dir", dir, "--json")
	require.NoError(t, err)
	var list output.TaskList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 1, list.Count)

	_, err = run(t, "search", "x", "--dir", dir, "--json")
	assert.True(t, clierr.Is(err, clierr.InvalidQuery))

	_, err = run(t, "delete", "1,2", "--dir", dir, "--json")
	assert.True(t, clierr.Is(err, clierr.ConfirmationReq))

	out, err = run(t, "delete", "1", "--yes", "--dir", dir, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"deleted","id":1,"title":"Ship release"}`, out)

	out, err = run(t, "list", "--status", "pending", "--dir", dir, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Tasks)

	_, err = run(t, "show", "1", "--dir", dir, "--json")
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
}

func newEditCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "edit"}
	addEditFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestPatchFromFlags(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p, err := patchFromFlags(newEditCommand(t, "--not-important", "--due", "+2h", "--body", ""), now)
	require.NoError(t, err)
	require.NotNil(t, p.IsImportant)
	assert.False(t, *p.IsImportant)
	require.NotNil(t, p.DeadlineAt)
	assert.True(t, now.Add(2*time.Hour).Equal(*p.DeadlineAt))
	require.NotNil(t, p.Description)
	assert.Empty(t, *p.Description)
	assert.Nil(t, p.Title)

	p, err = patchFromFlags(newEditCommand(t, "--clear-deadline", "--clear-body"), now)
	require.NoError(t, err)
	assert.True(t, p.ClearDeadline)
	assert.True(t, p.ClearDescription)
	assert.Nil(t, p.IsImportant)

	_, err = patchFromFlags(newEditCommand(t), now)
	assert.True(t, clierr.Is(err, clierr.NoChanges))

	_, err = patchFromFlags(newEditCommand(t, "--deadline", "someday"), now)
	assert.True(t, clierr.Is(err, clierr.InvalidDate))
}

func TestResolveCreateTitle(t *testing.T) {
	cmd := &cobra.Command{Use: "create"}
	cmd.Flags().String("title", "", "")

	title, err := resolveCreateTitle(cmd, []string{"From arg"})
	require.NoError(t, err)
	assert.Equal(t, "From arg", title)

	_, err = resolveCreateTitle(cmd, nil)
	assert.True(t, clierr.Is(err, clierr.InvalidInput))

	require.NoError(t, cmd.Flags().Set("title", "From flag"))
	_, err = resolveCreateTitle(cmd, []string{"both"})
	assert.True(t, clierr.Is(err, clierr.InvalidInput))
}

func TestYesAnswer(t *testing.T) {
	for in, want := range map[string]bool{"y\n": true, " YES \n": true, "n\n": false, "": false, "yep\n": false} {
		assert.Equal(t, want, yesAnswer(strings.NewReader(in)), "%q", in)
	}
}

func TestConfigSetKeepsConcurrentNextID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "eisen")
	_, err := run(t, "init", "--dir", dir, "--name", "home", "--json")
	require.NoError(t, err)
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	unlock, err := filelock.Lock(context.Background(), filepath.Join(cfg.TasksPath(), filestore.LockFileName))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := run(t, "config", "set", "board.name", "work", "--dir", dir, "--json")
		done <- err
	}()

	// While config set waits for the lock, another writer takes an id.
	time.Sleep(50 * time.Millisecond)
	id, err := cfg.AllocateID()
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.NoError(t, unlock())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("config set did not finish after the lock was released")
	}

	got, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "work", got.Board.Name)
	assert.Equal(t, 2, got.NextID)
}

func TestSettings(t *testing.T) {
	s, err := lookupSetting("tui.title_lines")
	require.NoError(t, err)
	cfg := &config.Config{}
	require.NoError(t, s.set(cfg, "3"))
	assert.Equal(t, 3, s.get(cfg))
	assert.True(t, clierr.Is(s.set(cfg, "three"), clierr.InvalidInput))

	s, err = lookupSetting("next_id")
	require.NoError(t, err)
	assert.Nil(t, s.set)

	_, err = lookupSetting("board.owner")
	assert.True(t, clierr.Is(err, clierr.InvalidInput))
}

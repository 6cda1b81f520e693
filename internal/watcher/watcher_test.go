package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstTriggersOneCallback(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan struct{}, 10)

	w, err := New([]string{dir}, func() { changes <- struct{}{} }, WithDelay(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, nil)

	for i := range 5 {
		name := filepath.Join(dir, fmt.Sprintf("%03d-task.md", i+1))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o600))
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	select {
	case <-changes:
		t.Fatal("burst produced more than one notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIgnored(t *testing.T) {
	for _, name := range []string{".lock", ".tmp-123", "board.db-journal", "board.db-wal", "board.db-shm"} {
		assert.True(t, ignored(filepath.Join("tasks", name)), name)
	}
	for _, name := range []string{"001-fix.md", "board.db"} {
		assert.False(t, ignored(filepath.Join("tasks", name)), name)
	}
}

package filelock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockExcludesSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".lock")

	unlock, err := Lock(context.Background(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = Lock(ctx, path)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock())

	unlock, err = Lock(context.Background(), path)
	require.NoError(t, err)
	assert.NoError(t, unlock())
}

func TestLockWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	unlock, err := Lock(context.Background(), path)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		u, err := Lock(context.Background(), path)
		if err == nil {
			_ = u()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock returned while the first was held")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, unlock())
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock never acquired")
	}
}

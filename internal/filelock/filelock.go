// Package filelock provides the advisory lock that serializes writers to
// a board, whether they live in one process or several.
package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lockFileMode = 0o600
	dirMode      = 0o750
)

// PollInterval is how long Lock waits between attempts while another
// holder owns the lock.
var PollInterval = 5 * time.Millisecond

// Lock acquires an exclusive advisory lock on the file at path, creating
// it if needed. It keeps retrying until the lock is free or ctx is done.
// The returned function releases the lock.
func Lock(ctx context.Context, path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		ok, err := tryLock(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("waiting for %s: %w", filepath.Base(path), ctx.Err())
		case <-ticker.C:
		}
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}

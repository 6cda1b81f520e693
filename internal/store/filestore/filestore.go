// Package filestore persists tasks as markdown files with YAML frontmatter,
// one file per task, named NNN-slug.md.
//
// Writers serialize on a single advisory lock in the tasks directory, so
// several processes can share a board. Files are replaced by rename, so
// readers never need the lock.
package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"github.com/twiced-technology-gmbh/eisen/internal/filelock"
	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

const dirMode = 0o750

// LockFileName is the board lock inside the tasks directory. Writers of
// task files and of next_id hold it.
const LockFileName = ".lock"

// idPrefixRe matches the numeric ID prefix of a task filename.
var idPrefixRe = regexp.MustCompile(`^(\d+)-.*\.md$`)

// IDSource hands out task ids. It is called with the store lock held.
type IDSource func() (int, error)

// Option configures a Store.
type Option func(*Store)

// WithIDSource replaces the default id allocation (highest existing id + 1).
// Use a persistent counter so ids of deleted tasks are never reused.
func WithIDSource(src IDSource) Option {
	return func(s *Store) { s.nextID = src }
}

// WithLogger sets the logger used to report unreadable task files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is a directory of task files.
type Store struct {
	dir    string
	nextID IDSource
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New opens the store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}
	s := &Store{dir: dir, logger: slog.Default()}
	s.nextID = s.scanNextID
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the tasks directory.
func (s *Store) Dir() string { return s.dir }

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, t *task.Task) (*task.Task, error) {
	var out *task.Task
	err := s.locked(ctx, func() error {
		id, err := s.nextID()
		if err != nil {
			return fmt.Errorf("allocating task id: %w", err)
		}
		c := t.Clone()
		c.ID = id
		if err := writeFile(filepath.Join(s.dir, filename(id, c.Title)), c); err != nil {
			return fmt.Errorf("writing task #%d: %w", id, err)
		}
		out = c
		return nil
	})
	return out, err
}

// FindByID implements store.Store.
func (s *Store) FindByID(ctx context.Context, id int) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathOf(id)
	if err != nil {
		return nil, err
	}
	return readFile(path)
}

// FindAll implements store.Store.
func (s *Store) FindAll(ctx context.Context) ([]*task.Task, error) {
	return s.FindByFilter(ctx, task.Filter{})
}

// FindByFilter implements store.Store. Files that fail to parse are
// skipped with a warning so one bad file does not hide the board.
func (s *Store) FindByFilter(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var tasks []*task.Task
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !idPrefixRe.MatchString(entry.Name()) {
			continue
		}
		t, readErr := readFile(filepath.Join(s.dir, entry.Name()))
		if readErr != nil {
			s.logger.Warn("skipping unreadable task file", "file", entry.Name(), "error", readErr)
			continue
		}
		if f.Matches(t) {
			tasks = append(tasks, t)
		}
	}
	slices.SortFunc(tasks, func(a, b *task.Task) int { return a.ID - b.ID })
	return tasks, nil
}

// Update implements store.Store. A title change renames the file before
// rewriting it, so the task is visible under exactly one name throughout.
func (s *Store) Update(ctx context.Context, id int, mutate store.MutateFunc) (*task.Task, error) {
	var out *task.Task
	err := s.locked(ctx, func() error {
		path, err := s.pathOf(id)
		if err != nil {
			return err
		}
		t, err := readFile(path)
		if err != nil {
			return err
		}
		if err := mutate(t); err != nil {
			return err
		}
		t.ID = id

		// The new file lands before the old one goes, so a failed write
		// leaves the task untouched under its old name.
		target := filepath.Join(s.dir, filename(id, t.Title))
		if err := writeFile(target, t); err != nil {
			return fmt.Errorf("writing task #%d: %w", id, err)
		}
		if target != path {
			if err := os.Remove(path); err != nil {
				_ = os.Remove(target)
				return fmt.Errorf("renaming task #%d: %w", id, err)
			}
		}
		out = t
		return nil
	})
	return out, err
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id int) error {
	return s.locked(ctx, func() error {
		path, err := s.pathOf(id)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("deleting task #%d: %w", id, err)
		}
		return nil
	})
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func (s *Store) locked(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := filelock.Lock(ctx, filepath.Join(s.dir, LockFileName))
	if err != nil {
		return fmt.Errorf("acquiring board lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock
	return fn()
}

// pathOf scans the tasks directory for the file holding the given ID.
func (s *Store) pathOf(id int) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("reading tasks directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if n, ok := idFromFilename(entry.Name()); ok && n == id {
			return filepath.Join(s.dir, entry.Name()), nil
		}
	}
	return "", task.NotFound(id)
}

func (s *Store) scanNextID() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading tasks directory: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		if n, ok := idFromFilename(entry.Name()); ok && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func idFromFilename(name string) (int, bool) {
	m := idPrefixRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

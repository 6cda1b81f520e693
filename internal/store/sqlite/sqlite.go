// Package sqlite persists tasks in a SQLite database using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

const (
	dirMode    = 0o750
	timeLayout = time.RFC3339Nano

	// Writes take the database lock up front so the read inside Update
	// cannot race another writer; busy writers wait instead of failing.
	dsnParams = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT    NOT NULL,
	description  TEXT,
	is_important INTEGER NOT NULL DEFAULT 0,
	is_urgent    INTEGER NOT NULL DEFAULT 0,
	quadrant     TEXT    NOT NULL,
	deadline_at  TEXT,
	completed    INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT    NOT NULL,
	completed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_quadrant ON tasks(quadrant);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
`

const columns = `id, title, description, is_important, is_urgent, quadrant,
	deadline_at, completed, created_at, completed_at`

// Store is a SQLite-backed task store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, t *task.Task) (*task.Task, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, is_important, is_urgent, quadrant,
			deadline_at, completed, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, nullString(t.Description), t.IsImportant, t.IsUrgent, string(t.Quadrant),
		nullTime(t.DeadlineAt), t.Completed, t.CreatedAt.UTC().Format(timeLayout), nullTime(t.CompletedAt))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	c := t.Clone()
	c.ID = int(id)
	return c, nil
}

// FindByID implements store.Store.
func (s *Store) FindByID(ctx context.Context, id int) (*task.Task, error) {
	return findByID(ctx, s.db, id)
}

// FindAll implements store.Store.
func (s *Store) FindAll(ctx context.Context) ([]*task.Task, error) {
	return s.FindByFilter(ctx, task.Filter{})
}

// FindByFilter implements store.Store. Quadrant and status criteria are
// evaluated by SQLite; text search runs in Go so case folding covers all
// of Unicode, not just ASCII.
func (s *Store) FindByFilter(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	var where []string
	var args []any
	if len(f.Quadrants) > 0 {
		marks := make([]string, len(f.Quadrants))
		for i, q := range f.Quadrants {
			marks[i] = "?"
			args = append(args, string(q))
		}
		where = append(where, "quadrant IN ("+strings.Join(marks, ", ")+")")
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}

	query := "SELECT " + columns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if f.Search != "" && !task.MatchesSearch(t, f.Search) {
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

// Update implements store.Store. The read and write share one immediate
// transaction.
func (s *Store) Update(ctx context.Context, id int, mutate store.MutateFunc) (*task.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := findByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(t); err != nil {
		return nil, err
	}
	t.ID = id

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, is_important = ?, is_urgent = ?,
			quadrant = ?, deadline_at = ?, completed = ?, created_at = ?, completed_at = ?
		WHERE id = ?`,
		t.Title, nullString(t.Description), t.IsImportant, t.IsUrgent, string(t.Quadrant),
		nullTime(t.DeadlineAt), t.Completed, t.CreatedAt.UTC().Format(timeLayout), nullTime(t.CompletedAt), id)
	if err != nil {
		return nil, fmt.Errorf("update task #%d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return t, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task #%d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task #%d: %w", id, err)
	}
	if n == 0 {
		return task.NotFound(id)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findByID(ctx context.Context, q queryer, id int) (*task.Task, error) {
	row := q.QueryRowContext(ctx, "SELECT "+columns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.NotFound(id)
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*task.Task, error) {
	var (
		t                      task.Task
		description            sql.NullString
		quadrant, createdAt    string
		deadlineAt, completeAt sql.NullString
	)
	err := sc.Scan(&t.ID, &t.Title, &description, &t.IsImportant, &t.IsUrgent, &quadrant,
		&deadlineAt, &t.Completed, &createdAt, &completeAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.Description = description.String
	t.Quadrant = task.Quadrant(quadrant)
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("task #%d created_at: %w", t.ID, err)
	}
	if t.DeadlineAt, err = parseNullTime(deadlineAt); err != nil {
		return nil, fmt.Errorf("task #%d deadline_at: %w", t.ID, err)
	}
	if t.CompletedAt, err = parseNullTime(completeAt); err != nil {
		return nil, fmt.Errorf("task #%d completed_at: %w", t.ID, err)
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

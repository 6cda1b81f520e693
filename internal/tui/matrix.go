// Package tui shows the board as an interactive Eisenhower matrix.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

// tickInterval is how often deadlines are re-read so tasks drift into
// overdue while the TUI is open.
const tickInterval = 30 * time.Second

// Options configures the matrix view.
type Options struct {
	Name          string
	TitleLines    int
	ShowCompleted bool
}

// ReloadMsg asks the model to re-read the board, typically after the
// watcher saw a change on disk.
type ReloadMsg struct{}

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// cell is one quadrant of the grid. Cells are stored in task.Quadrants
// order, so index i sits at grid row i/2 and grid column i%2.
type cell struct {
	quadrant task.Quadrant
	tasks    []*task.Task
	row      int
	offset   int
}

func (c *cell) selected() *task.Task {
	if c.row < 0 || c.row >= len(c.tasks) {
		return nil
	}
	return c.tasks[c.row]
}

// Matrix is the bubbletea model.
type Matrix struct {
	board *board.Board
	opts  Options
	keys  keyMap
	help  help.Model
	now   func() time.Time

	cells  [4]cell
	active int

	total, overdue int
	confirm        *task.Task
	err            error
	width, height  int
}

// NewMatrix loads the board and returns a model ready to run.
func NewMatrix(b *board.Board, opts Options) *Matrix {
	opts.TitleLines = max(opts.TitleLines, 1)
	m := &Matrix{board: b, opts: opts, keys: newKeyMap(), help: help.New(), now: b.Now}
	for i, q := range task.Quadrants {
		m.cells[i].quadrant = q
	}
	m.reload(0)
	return m
}

// SetNow replaces the clock used for deadline labels.
func (m *Matrix) SetNow(fn func() time.Time) { m.now = fn }

func (m *Matrix) Init() tea.Cmd { return tick() }

func (m *Matrix) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case ReloadMsg:
		m.reload(m.selectedID())
	case tickMsg:
		m.reload(m.selectedID())
		return m, tick()
	case tea.MouseMsg:
		m.click(msg)
	case tea.KeyMsg:
		if m.confirm != nil {
			m.confirmKey(msg)
			return m, nil
		}
		return m, m.boardKey(msg)
	}
	return m, nil
}

func (m *Matrix) boardKey(msg tea.KeyMsg) tea.Cmd {
	c := &m.cells[m.active]
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		if c.row > 0 {
			c.row--
		} else if m.active >= 2 {
			m.focus(m.active-2, -1)
		}
	case key.Matches(msg, m.keys.Down):
		if c.row < len(c.tasks)-1 {
			c.row++
		} else if m.active < 2 {
			m.focus(m.active+2, 0)
		}
	case key.Matches(msg, m.keys.Left):
		if m.active%2 == 1 {
			m.focus(m.active-1, c.row)
		}
	case key.Matches(msg, m.keys.Right):
		if m.active%2 == 0 {
			m.focus(m.active+1, c.row)
		}
	case key.Matches(msg, m.keys.Next):
		m.focus((m.active+1)%len(m.cells), -2)
	case key.Matches(msg, m.keys.Prev):
		m.focus((m.active+len(m.cells)-1)%len(m.cells), -2)
	case key.Matches(msg, m.keys.Complete):
		m.toggleComplete()
	case key.Matches(msg, m.keys.Important):
		m.toggleImportant()
	case key.Matches(msg, m.keys.Delete):
		m.confirm = c.selected()
	case key.Matches(msg, m.keys.Refresh):
		if _, err := m.board.Refresh(context.Background()); err != nil {
			m.err = fmt.Errorf("reclassifying: %w", err)
			return nil
		}
		m.reload(m.selectedID())
	case key.Matches(msg, m.keys.ShowDone):
		m.opts.ShowCompleted = !m.opts.ShowCompleted
		m.reload(m.selectedID())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Matrix) confirmKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if _, err := m.board.Delete(context.Background(), m.confirm.ID); err != nil {
			m.err = fmt.Errorf("deleting task #%d: %w", m.confirm.ID, err)
		}
		m.confirm = nil
		m.reload(0)
	case key.Matches(msg, m.keys.Cancel):
		m.confirm = nil
	}
}

// focus activates cell i. row -1 selects its last task, -2 keeps the
// cell's own selection, anything else is clamped.
func (m *Matrix) focus(i, row int) {
	m.active = i
	c := &m.cells[i]
	switch row {
	case -1:
		c.row = len(c.tasks) - 1
	case -2:
	default:
		c.row = row
	}
	c.row = min(max(c.row, 0), max(len(c.tasks)-1, 0))
}

func (m *Matrix) selectedID() int {
	if t := m.cells[m.active].selected(); t != nil {
		return t.ID
	}
	return 0
}

func (m *Matrix) toggleComplete() {
	t := m.cells[m.active].selected()
	if t == nil {
		return
	}
	var err error
	if t.Completed {
		_, err = m.board.Reopen(context.Background(), t.ID)
	} else {
		_, err = m.board.Complete(context.Background(), t.ID)
	}
	if err != nil {
		m.err = fmt.Errorf("updating task #%d: %w", t.ID, err)
		return
	}
	m.reload(t.ID)
}

func (m *Matrix) toggleImportant() {
	t := m.cells[m.active].selected()
	if t == nil {
		return
	}
	important := !t.IsImportant
	if _, err := m.board.Update(context.Background(), t.ID, board.Patch{IsImportant: &important}); err != nil {
		m.err = fmt.Errorf("updating task #%d: %w", t.ID, err)
		return
	}
	m.reload(t.ID)
}

// reload re-reads every task. When follow names a task that is still
// visible, the selection moves to wherever it now lives.
func (m *Matrix) reload(follow int) {
	all, err := m.board.ListAll(context.Background())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil

	now := m.now()
	m.total, m.overdue = len(all), 0
	board.Sort(all, board.SortDeadline, false)
	for i := range m.cells {
		m.cells[i].tasks = m.cells[i].tasks[:0]
	}
	for _, t := range all {
		if t.IsOverdue(now) {
			m.overdue++
		}
		if t.Completed && !m.opts.ShowCompleted {
			continue
		}
		if i := slices.Index(task.Quadrants, t.Quadrant); i >= 0 {
			m.cells[i].tasks = append(m.cells[i].tasks, t)
		}
	}

	for i := range m.cells {
		c := &m.cells[i]
		// Stable partition keeps deadline order inside each half.
		slices.SortStableFunc(c.tasks, func(a, b *task.Task) int {
			return boolRank(a.Completed) - boolRank(b.Completed)
		})
		c.row = min(c.row, max(len(c.tasks)-1, 0))
		if follow == 0 {
			continue
		}
		if j := slices.IndexFunc(c.tasks, func(t *task.Task) bool { return t.ID == follow }); j >= 0 {
			m.active, c.row = i, j
		}
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

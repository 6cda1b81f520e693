package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/eisen/internal/date"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var (
	quadrantColors = map[task.Quadrant]lipgloss.Color{
		task.Q1: "196",
		task.Q2: "33",
		task.Q3: "214",
		task.Q4: "245",
	}

	cellStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cursor     = lipgloss.NewStyle().Reverse(true)
	dim        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	done       = dim.Strikethrough(true)
	alert      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dialog     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("196")).Padding(1, 2)
	statusLine = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// cellChrome is the border plus padding around a cell's content.
const (
	cellChromeX = 4
	cellChromeY = 2
)

func (m *Matrix) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.confirm != nil {
		box := dialog.Render(alert.Render("Delete task?") + "\n\n" +
			fmt.Sprintf("#%d %s", m.confirm.ID, m.confirm.Title) + "\n\n" +
			dim.Render("y: delete   n: keep"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	footer := m.footer()
	cw, ch := m.cellSize(lipgloss.Height(footer))
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCell(0, cw, ch), m.renderCell(1, cw, ch))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCell(2, cw, ch), m.renderCell(3, cw, ch))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, footer)
}

// cellSize splits the space above the footer into a 2x2 grid.
func (m *Matrix) cellSize(footerHeight int) (width, height int) {
	width = max(m.width/2, cellChromeX+8) //nolint:mnd // room for "#id" and a word
	height = max((m.height-footerHeight)/2, cellChromeY+2)
	return width, height
}

func (m *Matrix) footer() string {
	status := fmt.Sprintf(" %s │ %d tasks, %d overdue", m.opts.Name, m.total, m.overdue)
	if !m.opts.ShowCompleted {
		status += " │ done hidden"
	}
	lines := []string{statusLine.Render(truncate(status, m.width)), m.help.View(m.keys)}
	if m.err != nil {
		lines = append([]string{alert.Render(truncate("Error: "+m.err.Error(), m.width))}, lines...)
	}
	return strings.Join(lines, "\n")
}

func (m *Matrix) renderCell(i, width, height int) string {
	c := &m.cells[i]
	inner := width - cellChromeX
	avail := height - cellChromeY - 1 // header line

	items := make([][]string, len(c.tasks))
	heights := make([]int, len(c.tasks))
	for j, t := range c.tasks {
		items[j] = m.itemLines(t, inner, i == m.active && j == c.row)
		heights[j] = len(items[j])
	}
	c.offset = scroll(heights, c.row, c.offset, avail)
	end := fit(heights, c.offset, avail)

	header := fmt.Sprintf("%s %s (%d)", c.quadrant, c.quadrant.Label(), len(c.tasks))
	if c.offset > 0 {
		header += fmt.Sprintf(" ↑%d", c.offset)
	}
	if end < len(c.tasks) {
		header += fmt.Sprintf(" ↓%d", len(c.tasks)-end)
	}
	color := quadrantColors[c.quadrant]
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	if i == m.active {
		headerStyle = headerStyle.Reverse(true)
	}

	lines := []string{headerStyle.Render(truncate(header, inner))}
	if len(c.tasks) == 0 {
		lines = append(lines, dim.Render("(empty)"))
	}
	for _, item := range items[c.offset:end] {
		lines = append(lines, item...)
	}

	style := cellStyle.BorderForeground(color)
	if i != m.active {
		style = style.BorderForeground(lipgloss.Color("238"))
	}
	return style.Width(width - 2).Height(height - cellChromeY).Render(strings.Join(lines, "\n")) //nolint:mnd // border
}

// itemLines renders a task as its wrapped title plus a deadline line.
func (m *Matrix) itemLines(t *task.Task, width int, selected bool) []string {
	prefix := fmt.Sprintf("#%d ", t.ID)
	title := wrapTitle(t.Title, width-len(prefix), m.opts.TitleLines)

	titleStyle := lipgloss.NewStyle()
	if t.Completed {
		titleStyle = done
	}
	if selected {
		titleStyle = titleStyle.Inherit(cursor)
	}

	lines := make([]string, 0, len(title)+1)
	for k, l := range title {
		if k == 0 {
			l = prefix + l
		} else {
			l = strings.Repeat(" ", len(prefix)) + l
		}
		lines = append(lines, titleStyle.Render(l))
	}

	if t.DeadlineAt != nil {
		now := m.now()
		label, style := "due "+date.Relative(*t.DeadlineAt, now), dim
		if t.IsOverdue(now) {
			label, style = "overdue "+date.Relative(*t.DeadlineAt, now), alert
		}
		lines = append(lines, style.Render(truncate(strings.Repeat(" ", len(prefix))+label, width)))
	}
	return lines
}

// scroll returns the first index to draw so that selected fits in avail
// lines, moving as little as possible from offset.
func scroll(heights []int, selected, offset, avail int) int {
	if len(heights) == 0 {
		return 0
	}
	selected = min(selected, len(heights)-1)
	offset = min(offset, selected)
	for offset < selected && sum(heights[offset:selected+1]) > avail {
		offset++
	}
	return offset
}

// fit returns the end index of the items that fit from offset. At least
// one item is always shown.
func fit(heights []int, offset, avail int) int {
	end, used := offset, 0
	for end < len(heights) && (end == offset || used+heights[end] <= avail) {
		used += heights[end]
		end++
	}
	return end
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

// click selects the task under the mouse.
func (m *Matrix) click(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.confirm != nil {
		return
	}
	cw, ch := m.cellSize(lipgloss.Height(m.footer()))
	gx, gy := msg.X/cw, msg.Y/ch
	if gx > 1 || gy > 1 {
		return
	}
	i := gy*2 + gx
	m.active = i

	c := &m.cells[i]
	line := msg.Y - gy*ch - 2 //nolint:mnd // top border and header
	for j := c.offset; j < len(c.tasks) && line >= 0; j++ {
		h := len(m.itemLines(c.tasks[j], cw-cellChromeX, false))
		if line < h {
			c.row = j
			return
		}
		line -= h
	}
}

package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/date"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

const (
	timeFormat    = "2006-01-02 15:04"
	markdownWidth = 80
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	// Quadrant colors aligned with the TUI column headers.
	quadrantStyles = map[string]lipgloss.Style{
		string(task.Q1): lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		string(task.Q2): lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		string(task.Q3): lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		string(task.Q4): lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	markdownStyle = "auto"
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	overdueStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	quadrantStyles = map[string]lipgloss.Style{}
	markdownStyle = "notty"
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, quadW, statusW, titleW := 4, 10, 9, 5
	for _, t := range tasks {
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		titleW = max(titleW, min(lipgloss.Width(t.Title)+pad, 50)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		idW, "ID", quadW, "QUADRANT", statusW, "STATUS", titleW, "TITLE", "DEADLINE")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, t := range tasks {
		row := fmt.Sprintf("%-*d %s %s %s %s",
			idW, t.ID,
			padRight(styledValue(string(t.Quadrant), quadrantStyles), quadW),
			padRight(statusDisplay(t), statusW),
			padRight(truncate(t.Title, titleW-pad), titleW),
			deadlineDisplay(t, now))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// DetailOptions controls TaskDetail rendering.
type DetailOptions struct {
	Now      time.Time
	Markdown bool // render the description as markdown for a terminal
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task, opts DetailOptions) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ID, t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Quadrant", styledValue(string(t.Quadrant), quadrantStyles)+" "+dimStyle.Render(t.Quadrant.Label()))
	printField(w, "Important", yesNo(t.IsImportant))
	printField(w, "Urgent", yesNo(t.IsUrgent))
	printField(w, "Deadline", deadlineDisplay(t, opts.Now))
	printField(w, "Status", statusDisplay(t))
	printField(w, "Created", t.CreatedAt.UTC().Format(timeFormat))
	if t.CompletedAt != nil {
		printField(w, "Completed", t.CompletedAt.UTC().Format(timeFormat))
		printField(w, "Lead time", FormatDuration(t.CompletedAt.Sub(t.CreatedAt)))
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderDescription(t.Description, opts.Markdown))
	}
}

func renderDescription(md string, asMarkdown bool) string {
	if !asMarkdown {
		return md
	}
	styleOpt := glamour.WithAutoStyle()
	if markdownStyle != "auto" {
		styleOpt = glamour.WithStandardStyle(markdownStyle)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(markdownWidth))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// StatsTable renders board statistics as a formatted dashboard.
func StatsTable(w io.Writer, boardName string, s board.Stats) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(boardName))
	fmt.Fprintf(w, "Total: %d tasks (%d pending, %d completed)\n",
		s.TotalTasks, s.ByStatus.Pending, s.ByStatus.Completed)
	overdue := strconv.Itoa(s.OverdueTasks)
	if s.OverdueTasks > 0 {
		overdue = overdueStyle.Render(overdue)
	}
	fmt.Fprintf(w, "Overdue: %s\n\n", overdue)

	const quadColW, labelColW = 10, 12
	header := fmt.Sprintf("%-*s %-*s %6s", quadColW, "QUADRANT", labelColW, "ACTION", "COUNT")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, q := range task.Quadrants {
		fmt.Fprintf(w, "%s %-*s %6d\n",
			padRight(styledValue(string(q), quadrantStyles), quadColW),
			labelColW, q.Label(), s.ByQuadrant[q])
	}
}

// GroupedTable renders tasks bucketed by quadrant or status.
func GroupedTable(w io.Writer, groups []board.Group, now time.Time) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d tasks)", styledValue(g.Key, quadrantStyles), g.Total)
		if g.Label != "" {
			title = fmt.Sprintf("%s %s (%d tasks)", styledValue(g.Key, quadrantStyles), g.Label, g.Total)
		}
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))
		for _, t := range g.Tasks {
			fmt.Fprintf(w, "  #%-4d %s  %s\n", t.ID, truncate(t.Title, 48), deadlineDisplay(t, now)) //nolint:mnd // title width
		}
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, maxWidth int) string {
	r := []rune(s)
	if len(r) <= maxWidth {
		return s
	}
	if maxWidth <= 3 { //nolint:mnd // room for ellipsis
		return string(r[:maxWidth])
	}
	return string(r[:maxWidth-3]) + "..."
}

func statusDisplay(t *task.Task) string {
	if t.Completed {
		return doneStyle.Render(task.StatusCompleted)
	}
	return task.StatusPending
}

func deadlineDisplay(t *task.Task, now time.Time) string {
	if t.DeadlineAt == nil {
		return dimStyle.Render("--")
	}
	s := date.Format(*t.DeadlineAt) + " (" + date.Relative(*t.DeadlineAt, now) + ")"
	if t.IsOverdue(now) {
		return overdueStyle.Render(s + " overdue")
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return dimStyle.Render("no")
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}

package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, grouping and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringP("quadrant", "q", "", "filter by quadrant (comma-separated, Q1..Q4)")
	listCmd.Flags().String("status", "", "filter by status (completed, pending)")
	listCmd.Flags().StringP("search", "s", "", "search title and description (case-insensitive, min 2 characters)")
	listCmd.Flags().Bool("overdue", false, "show only pending tasks past their deadline")
	listCmd.Flags().String("sort", board.SortID, "sort field ("+strings.Join(board.SortFields, ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	quadrants, _ := cmd.Flags().GetString("quadrant")
	status, _ := cmd.Flags().GetString("status")
	search, _ := cmd.Flags().GetString("search")
	overdue, _ := cmd.Flags().GetBool("overdue")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	groupBy, _ := cmd.Flags().GetString("group-by")

	var filter task.Filter
	if quadrants != "" {
		qs, err := task.ParseQuadrants(quadrants)
		if err != nil {
			return err
		}
		filter.Quadrants = qs
	}
	if status != "" {
		completed, err := task.ParseStatus(status)
		if err != nil {
			return err
		}
		filter.Completed = &completed
	}
	filter.Search = search

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	tasks, err := sess.board.List(cmd.Context(), board.ListOptions{
		Filter:  filter,
		Overdue: overdue,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	if groupBy != "" {
		return outputGroupedList(sess, tasks, groupBy)
	}
	return outputTaskList(sess, output.NewTaskList(tasks))
}

func outputGroupedList(sess *session, tasks []*task.Task, groupBy string) error {
	groups, err := board.GroupBy(tasks, groupBy)
	if err != nil {
		return err
	}
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, groups)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, groups, sess.board.Now())
	default:
		output.GroupedTable(os.Stdout, groups, sess.board.Now())
	}
	return nil
}

func outputTaskList(sess *session, list output.TaskList) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, list)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, list.Tasks, sess.board.Now())
	default:
		output.TaskTable(os.Stdout, list.Tasks, sess.board.Now())
	}
	return nil
}

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/output"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search tasks by title or description",
	Long: `Finds tasks whose title or description contains QUERY, ignoring case.
The query must be at least 2 characters after trimming.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	tasks, err := sess.board.Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	list := output.NewTaskList(tasks)
	list.Query = query
	return outputTaskList(sess, list)
}

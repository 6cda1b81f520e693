package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var completeCmd = &cobra.Command{
	Use:     "complete ID[,ID,...]",
	Aliases: []string{"done"},
	Short:   "Mark tasks as completed",
	Long: `Marks tasks as completed and records the completion time. Completing a
task that is already completed keeps its original completion time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], "Completed", (*board.Board).Complete)
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen ID[,ID,...]",
	Short: "Return completed tasks to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], "Reopened", (*board.Board).Reopen)
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reopenCmd)
}

type transition func(*board.Board, context.Context, int) (*task.Task, error)

func runTransition(cmd *cobra.Command, arg, verb string, fn transition) error {
	ids, err := board.ParseIDs(arg)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if len(ids) == 1 {
		t, err := fn(sess.board, cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		return outputTaskResult(verb, t)
	}

	return runBatch(ids, func(id int) error {
		_, err := fn(sess.board, cmd.Context(), id)
		return err
	})
}

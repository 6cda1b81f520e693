package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/output"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompute urgency and quadrant as of now",
	Long: `Urgency is derived when a task is created or its deadline changes, so a
task can drift into the 72 hour window without its quadrant changing.
refresh re-derives every task with a deadline and saves the ones that moved.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	changed, err := sess.board.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewTaskList(changed))
	}
	if len(changed) == 0 {
		output.Messagef(os.Stdout, "All tasks are up to date")
		return nil
	}
	output.Messagef(os.Stdout, "Reclassified %d task(s):", len(changed))
	return outputTaskList(sess, output.NewTaskList(changed))
}

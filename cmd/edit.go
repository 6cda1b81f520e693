package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/date"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID[,ID,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
Changing the deadline recomputes urgency; changing importance or the
deadline recomputes the quadrant. Multiple IDs can be provided as a
comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	addEditFlags(editCmd)
	rootCmd.AddCommand(editCmd)
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("description", "", "new description (replaces the old one)")
	cmd.Flags().Bool("clear-description", false, "remove the description")
	cmd.Flags().Bool("important", false, "mark the task as important")
	cmd.Flags().Bool("not-important", false, "mark the task as not important")
	cmd.Flags().String("deadline", "", "new deadline")
	cmd.Flags().Bool("clear-deadline", false, "remove the deadline")
	cmd.MarkFlagsMutuallyExclusive("important", "not-important")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	cmd.MarkFlagsMutuallyExclusive("deadline", "clear-deadline")
	cmd.Flags().SetNormalizeFunc(descriptionAlias)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ids, err := board.ParseIDs(args[0])
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	p, err := patchFromFlags(cmd, sess.board.Now())
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		t, err := sess.board.Update(cmd.Context(), ids[0], p)
		if err != nil {
			return err
		}
		return outputTaskResult("Updated", t)
	}

	return runBatch(ids, func(id int) error {
		_, err := sess.board.Update(cmd.Context(), id, p)
		return err
	})
}

// patchFromFlags builds a partial update from the flags the user set.
func patchFromFlags(cmd *cobra.Command, now time.Time) (board.Patch, error) {
	var p board.Patch
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		p.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		p.Description = &v
	}
	p.ClearDescription, _ = flags.GetBool("clear-description")

	if flags.Changed("important") {
		v, _ := flags.GetBool("important")
		p.IsImportant = &v
	}
	if flags.Changed("not-important") {
		v, _ := flags.GetBool("not-important")
		v = !v
		p.IsImportant = &v
	}

	if flags.Changed("deadline") {
		v, _ := flags.GetString("deadline")
		d, err := date.Parse(v, now)
		if err != nil {
			return p, task.ValidateDate("deadline", v, err)
		}
		p.DeadlineAt = &d
	}
	p.ClearDeadline, _ = flags.GetBool("clear-deadline")

	if p.Empty() {
		return p, clierr.New(clierr.NoChanges,
			"no changes specified; use --title, --description, --important, --deadline or a --clear flag")
	}
	return p, nil
}

// outputTaskResult prints a single mutated task.
func outputTaskResult(verb string, t *task.Task) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "%s task #%d: %s [%s]", verb, t.ID, t.Title, t.Quadrant)
	return nil
}

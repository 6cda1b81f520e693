package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete tasks permanently",
	Long: `Removes tasks from the board. A single delete asks for confirmation when
stdin is a terminal; several IDs or a non-interactive shell need --yes.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "delete without asking")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := board.ParseIDs(args[0])
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")
	if len(ids) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "deleting several tasks requires --yes")
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	ctx := cmd.Context()

	if len(ids) > 1 {
		return runBatch(ids, func(id int) error {
			_, err := sess.board.Delete(ctx, id)
			return err
		})
	}

	if !yes {
		t, err := sess.board.Get(ctx, ids[0])
		if err != nil {
			return err
		}
		ok, err := confirmDelete(t)
		if err != nil || !ok {
			return err
		}
	}

	del, err := sess.board.Delete(ctx, ids[0])
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "deleted", "id": del.ID, "title": del.Title})
	}
	output.Messagef(os.Stdout, "Deleted task #%d: %s", del.ID, del.Title)
	return nil
}

// confirmDelete asks on stderr and reads the answer from stdin.
func confirmDelete(t *task.Task) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq, "stdin is not a terminal; pass --yes to delete")
	}
	fmt.Fprintf(os.Stderr, "Delete task #%d %q? [y/N] ", t.ID, t.Title)
	if yesAnswer(os.Stdin) {
		return true, nil
	}
	fmt.Fprintln(os.Stderr, "Kept.")
	return false, nil
}

func yesAnswer(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/date"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TITLE]",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a new task. Urgency and quadrant are derived from --important
and --deadline; a deadline less than 72 hours away makes the task urgent.

Title can be provided as a positional argument or via --title flag.
Deadlines accept RFC 3339, YYYY-MM-DD, "YYYY-MM-DD HH:MM", today, tomorrow
or an offset such as +3d or +12h. Times without a zone are UTC.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	createCmd.Flags().String("description", "", "task description (markdown)")
	createCmd.Flags().BoolP("important", "i", false, "mark the task as important")
	createCmd.Flags().StringP("deadline", "d", "", "deadline (e.g. 2025-03-01, +3d)")
	createCmd.Flags().SetNormalizeFunc(descriptionAlias)
	rootCmd.AddCommand(createCmd)
}

// descriptionAlias accepts --body and --due as aliases.
func descriptionAlias(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "body":
		name = "description"
	case "due":
		name = "deadline"
	case "clear-body":
		name = "clear-description"
	case "clear-due":
		name = "clear-deadline"
	}
	return pflag.NormalizedName(name)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	important, _ := cmd.Flags().GetBool("important")
	description, _ := cmd.Flags().GetString("description")
	in := board.CreateInput{
		Title:       title,
		Description: description,
		IsImportant: &important,
	}
	if v, _ := cmd.Flags().GetString("deadline"); v != "" {
		d, err := date.Parse(v, sess.board.Now())
		if err != nil {
			return task.ValidateDate("deadline", v, err)
		}
		in.DeadlineAt = &d
	}

	t, err := sess.board.Create(cmd.Context(), in)
	if err != nil {
		return err
	}
	return outputCreateResult(t, sess)
}

func outputCreateResult(t *task.Task, sess *session) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Created task #%d: %s", t.ID, t.Title)
	output.Messagef(os.Stdout, "  Quadrant: %s (%s)", t.Quadrant, t.Quadrant.Label())
	if t.DeadlineAt != nil {
		output.Messagef(os.Stdout, "  Deadline: %s (%s)",
			date.Format(*t.DeadlineAt), date.Relative(*t.DeadlineAt, sess.board.Now()))
	}
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", clierr.New(clierr.InvalidInput,
			"title is required: provide it as an argument or with --title").
			WithDetails(map[string]any{"fields": map[string]string{"title": "title is required"}})
	}
}

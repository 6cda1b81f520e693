package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/config"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/watcher"
)

var flagWatch bool

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"board", "summary"},
	Short:   "Show board statistics",
	Long: `Displays task counts per quadrant and status, and the number of overdue
tasks. Overdue is computed against the current time on every run.

Use --watch to keep the display live-updating. The summary re-renders
whenever the store changes on disk (e.g., from another terminal).
Press Ctrl+C to stop.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update on store changes")
	statsCmd.Flags().String("group-by", "", "list tasks grouped by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	groupBy, _ := cmd.Flags().GetString("group-by")

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := renderStats(cmd.Context(), sess, groupBy); err != nil {
		return err
	}
	if !flagWatch {
		return nil
	}
	return watchStats(sess, groupBy)
}

func renderStats(ctx context.Context, sess *session, groupBy string) error {
	if groupBy != "" {
		tasks, err := sess.board.ListAll(ctx)
		if err != nil {
			return err
		}
		return outputGroupedList(sess, tasks, groupBy)
	}

	stats, err := sess.board.Stats(ctx)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, stats)
	case output.FormatCompact:
		output.StatsCompact(os.Stdout, sess.cfg.Board.Name, stats)
	default:
		output.StatsTable(os.Stdout, sess.cfg.Board.Name, stats)
	}
	return nil
}

func watchStats(sess *session, groupBy string) error {
	if sess.cfg.Storage.Driver == config.DriverMemory {
		return fmt.Errorf("--watch needs a persistent storage driver, not %q", config.DriverMemory)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{sess.cfg.WatchPath()}, func() {
		clearScreen()
		if renderErr := renderStats(ctx, sess, groupBy); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering stats: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})
	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}

package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/config"
	"github.com/twiced-technology-gmbh/eisen/internal/tui"
	"github.com/twiced-technology-gmbh/eisen/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the board TUI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	model := tui.NewMatrix(sess.board, tui.Options{
		Name:          sess.cfg.Board.Name,
		TitleLines:    sess.cfg.TitleLines(),
		ShowCompleted: sess.cfg.TUI.ShowCompleted,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sess.cfg.Storage.Driver != config.DriverMemory {
		go startTUIWatcher(ctx, sess.cfg.WatchPath(), p)
	}

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, path string, p *tea.Program) {
	w, err := watcher.New([]string{path}, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}

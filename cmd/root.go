// Package cmd implements the eisen CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/config"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/store"
	"github.com/twiced-technology-gmbh/eisen/internal/store/filestore"
	"github.com/twiced-technology-gmbh/eisen/internal/store/memstore"
	"github.com/twiced-technology-gmbh/eisen/internal/store/sqlite"
	"github.com/twiced-technology-gmbh/eisen/internal/telemetry"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "EISEN"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "eisen",
	Short: "Eisenhower matrix task board",
	Long: `eisen sorts tasks into the four quadrants of the Eisenhower matrix.

A task is urgent when its deadline is less than 72 hours away and important
when you say so. Run eisen without arguments to open the board TUI.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	cobra.OnInitialize(initSettings)

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagJSON, "json", false, "output as JSON")
	pf.BoolVar(&flagTable, "table", false, "output as table")
	pf.BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	pf.BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	pf.String("output", "", "default output format (json, table, compact)")
	pf.String("dir", "", "path to the board directory")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable color output")

	for _, name := range []string{"output", "dir", "log-level"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initSettings loads .env and binds EISEN_* environment variables.
func initSettings() {
	_ = godotenv.Load() // a missing .env is fine

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	cliErr := clierr.As(err)
	if outputFormat() == output.FormatJSON {
		output.JSONError(os.Stdout, cliErr)
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cliErr.ExitCode())
}

// outputFormat resolves the format flags against --output / EISEN_OUTPUT.
func outputFormat() output.Format {
	sel := output.Selection{JSON: flagJSON, Table: flagTable, Compact: flagCompact}
	return sel.Resolve(viper.GetString("output"))
}

func newLogger() *slog.Logger {
	return telemetry.NewLogger(os.Stderr, viper.GetString("log-level"))
}

// resolveDir returns the board directory from --dir / EISEN_DIR, or the
// nearest eisen/ directory above the working directory.
func resolveDir() (string, error) {
	if dir := viper.GetString("dir"); dir != "" {
		return dir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the board config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.Newf(clierr.BoardNotFound, "no board found in %s (run 'eisen init' to create one)", dir)
	}
	return cfg, err
}

// openStore opens the task store selected by storage.driver.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return filestore.New(cfg.TasksPath(),
			filestore.WithIDSource(cfg.AllocateID),
			filestore.WithLogger(logger))
	case config.DriverSQLite:
		return sqlite.Open(cfg.DatabasePath())
	case config.DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalid, cfg.Storage.Driver)
	}
}

// session bundles what a command needs to talk to the board.
type session struct {
	cfg    *config.Config
	board  *board.Board
	store  store.Store
	logger *slog.Logger
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
}

// openSession loads the config and opens the board over its store.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openSessionFor(cfg)
}

func openSessionFor(cfg *config.Config) (*session, error) {
	logger := newLogger()
	s, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		board:  board.New(s, board.WithLogger(logger)),
		store:  s,
		logger: logger,
	}, nil
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []int, fn func(int) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		if err := fn(id); err != nil {
			anyFailed = true
			e := clierr.As(err)
			results = append(results, output.BatchResult{ID: id, OK: false, Error: e.Message, Code: string(e.Code)})
			continue
		}
		results = append(results, output.BatchResult{ID: id, OK: true})
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%d: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/config"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a board",
	Long: `Creates the board directory (./eisen unless --dir is given) with its
config.yml. The file driver also gets a tasks/ directory with one
markdown file per task; the sqlite driver creates its database on first use.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	f := initCmd.Flags()
	f.String("name", "", "board name (defaults to the current directory name)")
	f.String("description", "", "board description")
	f.String("storage", config.DriverFile, "storage driver ("+strings.Join(config.Drivers, ", ")+")")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := viper.GetString("dir")
	if dir == "" {
		dir = config.DefaultDir
	}

	driver, _ := cmd.Flags().GetString("storage")
	if !slices.Contains(config.Drivers, driver) {
		return clierr.Newf(clierr.InvalidInput, "invalid storage driver %q; allowed: %s",
			driver, strings.Join(config.Drivers, ", "))
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}
	desc, _ := cmd.Flags().GetString("description")

	cfg, err := config.Init(dir, name, config.WithDescription(desc), config.WithDriver(driver))
	if errors.Is(err, config.ErrExists) {
		abs, _ := filepath.Abs(dir)
		return clierr.Newf(clierr.BoardAlreadyExists, "board already initialized in %s", abs).
			WithDetails(map[string]any{"dir": abs})
	}
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     cfg.Dir(),
			"name":    cfg.Board.Name,
			"config":  cfg.ConfigPath(),
			"storage": driver,
			"path":    storageLocation(cfg),
		})
	}
	output.Messagef(os.Stdout, "Initialized board %q in %s", cfg.Board.Name, cfg.Dir())
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Storage: %s %s", driver, storageLocation(cfg))
	return nil
}

// storageLocation is where the driver keeps tasks, empty for memory.
func storageLocation(cfg *config.Config) string {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return cfg.TasksPath()
	case config.DriverSQLite:
		return cfg.DatabasePath()
	default:
		return ""
	}
}

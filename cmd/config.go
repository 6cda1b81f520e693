package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
	"github.com/twiced-technology-gmbh/eisen/internal/config"
	"github.com/twiced-technology-gmbh/eisen/internal/filelock"
	"github.com/twiced-technology-gmbh/eisen/internal/output"
	"github.com/twiced-technology-gmbh/eisen/internal/store/filestore"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change board settings",
	Long: `Without a subcommand, prints every setting. Keys use dotted paths
such as board.name or tui.title_lines.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the board's config file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]string{"path": cfg.ConfigPath()})
		}
		fmt.Fprintln(os.Stdout, cfg.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// setting is one addressable config key. A nil set makes it read-only.
type setting struct {
	key string
	get func(*config.Config) any
	set func(*config.Config, string) error
}

func stringSetting(key string, field func(*config.Config) *string) setting {
	return setting{
		key: key,
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error { *field(c) = v; return nil },
	}
}

func intSetting(key string, field func(*config.Config) *int) setting {
	return setting{
		key: key,
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "%s must be an integer, got %q", key, v)
			}
			*field(c) = n
			return nil
		},
	}
}

func boolSetting(key string, field func(*config.Config) *bool) setting {
	return setting{
		key: key,
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "%s must be true or false, got %q", key, v)
			}
			*field(c) = b
			return nil
		},
	}
}

func readOnly(s setting) setting {
	s.set = nil
	return s
}

// settings lists every key in display order.
var settings = []setting{
	readOnly(intSetting("version", func(c *config.Config) *int { return &c.Version })),
	stringSetting("board.name", func(c *config.Config) *string { return &c.Board.Name }),
	stringSetting("board.description", func(c *config.Config) *string { return &c.Board.Description }),
	stringSetting("storage.driver", func(c *config.Config) *string { return &c.Storage.Driver }),
	readOnly(stringSetting("storage.tasks_dir", func(c *config.Config) *string { return &c.Storage.TasksDir })),
	stringSetting("storage.database", func(c *config.Config) *string { return &c.Storage.Database }),
	stringSetting("server.addr", func(c *config.Config) *string { return &c.Server.Addr }),
	intSetting("tui.title_lines", func(c *config.Config) *int { return &c.TUI.TitleLines }),
	boolSetting("tui.show_completed", func(c *config.Config) *bool { return &c.TUI.ShowCompleted }),
	readOnly(intSetting("next_id", func(c *config.Config) *int { return &c.NextID })),
}

func lookupSetting(key string) (setting, error) {
	for _, s := range settings {
		if s.key == key {
			return s, nil
		}
	}
	return setting{}, clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(settings))
		for _, s := range settings {
			m[s.key] = s.get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0) //nolint:mnd // padding
	for _, s := range settings {
		fmt.Fprintf(tw, "%s\t%v\n", s.key, s.get(cfg))
	}
	return tw.Flush()
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := lookupSetting(args[0])
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, s.get(cfg))
	}
	fmt.Fprintln(os.Stdout, s.get(cfg))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	key, value := args[0], args[1]
	s, err := lookupSetting(key)
	if err != nil {
		return err
	}
	if s.set == nil {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	unlock, err := lockBoard(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer unlock() //nolint:errcheck // best-effort unlock

	// Reread under the lock so a next_id bumped by another writer survives.
	if cfg, err = config.Load(cfg.Dir()); err != nil {
		return err
	}
	if err := s.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error()).
			WithDetails(map[string]any{"key": key, "value": value})
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": s.get(cfg)})
	}
	output.Messagef(os.Stdout, "Set %s = %v", key, s.get(cfg))
	return nil
}

// lockBoard takes the lock the file store holds while it allocates ids.
// Other drivers never write next_id, so they need no lock.
func lockBoard(ctx context.Context, cfg *config.Config) (func() error, error) {
	if cfg.Storage.Driver != config.DriverFile {
		return func() error { return nil }, nil
	}
	unlock, err := filelock.Lock(ctx, filepath.Join(cfg.TasksPath(), filestore.LockFileName))
	if err != nil {
		return nil, fmt.Errorf("acquiring board lock: %w", err)
	}
	return unlock, nil
}

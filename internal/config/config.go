package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/eisen/internal/clierr"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no board found (run 'eisen init' to create one)")
	ErrInvalid  = errors.New("invalid config")
	ErrExists   = errors.New("board already initialized")
)

// Config is the contents of a board's config.yml.
type Config struct {
	Version int           `yaml:"version"`
	Board   BoardConfig   `yaml:"board"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	TUI     TUIConfig     `yaml:"tui"`
	NextID  int           `yaml:"next_id" validate:"min=1"`

	// LegacyTasksDir is the top-level tasks_dir of version 1 configs.
	LegacyTasksDir string `yaml:"tasks_dir,omitempty"`

	dir string
}

type BoardConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// StorageConfig selects and locates the task store. Relative paths are
// resolved against the board directory.
type StorageConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=file sqlite memory"`
	TasksDir string `yaml:"tasks_dir,omitempty" validate:"required_if=Driver file"`
	Database string `yaml:"database,omitempty" validate:"required_if=Driver sqlite"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"hostname_port"`
}

type TUIConfig struct {
	TitleLines    int  `yaml:"title_lines,omitempty" validate:"min=1,max=3"`
	ShowCompleted bool `yaml:"show_completed"`
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		return name
	})
	return v
}()

// NewDefault returns the config written by eisen init.
func NewDefault(name string) *Config {
	return &Config{
		Version: CurrentVersion,
		Board:   BoardConfig{Name: name},
		Storage: StorageConfig{
			Driver:   DriverFile,
			TasksDir: DefaultTasksDir,
			Database: DefaultDatabase,
		},
		Server: ServerConfig{Addr: DefaultAddr},
		TUI:    TUIConfig{TitleLines: DefaultTitleLines},
		NextID: 1,
	}
}

// Dir returns the absolute path to the board directory.
func (c *Config) Dir() string { return c.dir }

// SetDir points the config at a board directory.
func (c *Config) SetDir(dir string) { c.dir = dir }

func (c *Config) ConfigPath() string { return filepath.Join(c.dir, ConfigFileName) }

func (c *Config) TasksPath() string { return c.resolve(c.Storage.TasksDir) }

func (c *Config) DatabasePath() string { return c.resolve(c.Storage.Database) }

// WatchPath returns the directory whose changes signal a board update.
func (c *Config) WatchPath() string {
	if c.Storage.Driver == DriverSQLite {
		return filepath.Dir(c.DatabasePath())
	}
	return c.TasksPath()
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// TitleLines returns tui.title_lines, or the default when unset.
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// Validate reports every invalid field as a single ErrInvalid error.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}

	var verrs validator.ValidationErrors
	if err := validate.Struct(c); !errors.As(err, &verrs) {
		return err
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.storage.driver"; drop the type name.
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required", "required_if":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s %q must be one of %s", key, fe.Value(), fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s %q must be host:port", key, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be >= %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be <= %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
}

// InitOption adjusts a new board's config before it is written.
type InitOption func(*Config)

func WithDescription(desc string) InitOption {
	return func(c *Config) { c.Board.Description = desc }
}

func WithDriver(driver string) InitOption {
	return func(c *Config) { c.Storage.Driver = driver }
}

// Init creates a board in dir. It fails with ErrExists when dir already
// holds a config.yml.
func Init(dir, name string, opts ...InitOption) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if isFile(filepath.Join(absDir, ConfigFileName)) {
		return nil, ErrExists
	}

	cfg := NewDefault(name)
	cfg.dir = absDir
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == DriverFile {
		if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
			return nil, fmt.Errorf("creating tasks directory: %w", err)
		}
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return cfg, nil
}

// Save replaces config.yml atomically.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(c.dir, dirMode); err != nil {
		return fmt.Errorf("creating board directory: %w", err)
	}

	f, err := os.CreateTemp(c.dir, ".tmp-config-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(fileMode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), c.ConfigPath())
}

// AllocateID reserves the next task id. next_id is reread from disk so
// ids stay unique across processes; callers must hold the board lock.
func (c *Config) AllocateID() (int, error) {
	fresh, err := Load(c.dir)
	if err != nil {
		return 0, err
	}
	id := fresh.NextID
	fresh.NextID++
	if err := fresh.Save(); err != nil {
		return 0, fmt.Errorf("saving next_id: %w", err)
	}
	c.NextID = fresh.NextID
	return id, nil
}

// Load reads config.yml from dir, upgrading and rewriting it when it was
// written by an older eisen.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(absDir, ConfigFileName)) //nolint:gosec // config path from trusted source
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{dir: absDir}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalid, ConfigFileName, err)
	}

	upgraded, err := upgrade(cfg)
	if err != nil {
		return nil, err
	}
	if upgraded {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving upgraded config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindDir returns the board directory for start: either start itself, an
// ancestor holding config.yml, or the eisen/ directory of an ancestor.
func FindDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		for _, candidate := range []string{filepath.Join(dir, DefaultDir), dir} {
			if isFile(filepath.Join(candidate, ConfigFileName)) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.BoardNotFound, ErrNotFound.Error())
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

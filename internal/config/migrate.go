package config

import "fmt"

// upgraders[v] turns a version v config into version v+1.
var upgraders = map[int]func(*Config){
	1: func(c *Config) {
		// v1 boards kept tasks_dir at the top level and only had files.
		c.Storage.Driver = fallback(c.Storage.Driver, DriverFile)
		c.Storage.TasksDir = fallback(c.Storage.TasksDir, c.LegacyTasksDir, DefaultTasksDir)
		c.Storage.Database = fallback(c.Storage.Database, DefaultDatabase)
		c.LegacyTasksDir = ""
	},
	2: func(c *Config) {
		c.Server.Addr = fallback(c.Server.Addr, DefaultAddr)
		if c.TUI.TitleLines == 0 {
			c.TUI.TitleLines = DefaultTitleLines
		}
	},
}

// upgrade brings cfg to CurrentVersion and reports whether anything changed.
func upgrade(cfg *Config) (bool, error) {
	switch {
	case cfg.Version > CurrentVersion:
		return false, fmt.Errorf("%w: config version %d is newer than this eisen supports (%d)",
			ErrInvalid, cfg.Version, CurrentVersion)
	case cfg.Version < 1:
		return false, fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	from := cfg.Version
	for cfg.Version < CurrentVersion {
		up, ok := upgraders[cfg.Version]
		if !ok {
			return false, fmt.Errorf("%w: cannot upgrade config from version %d", ErrInvalid, cfg.Version)
		}
		up(cfg)
		cfg.Version++
	}
	return cfg.Version != from, nil
}

// fallback returns the first non-empty value.
func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package config handles board configuration.
package config

const (
	// DefaultDir is the default board directory name.
	DefaultDir = "eisen"
	// DefaultTasksDir is the default tasks subdirectory name for the file driver.
	DefaultTasksDir = "tasks"
	// DefaultDatabase is the default database file name for the sqlite driver.
	DefaultDatabase = "eisen.db"
	// DefaultAddr is the default listen address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"
	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2

	// ConfigFileName is the name of the config file within the board directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Drivers lists the accepted storage.driver values.
var Drivers = []string{DriverFile, DriverSQLite, DriverMemory}

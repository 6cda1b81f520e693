// Package output renders tasks, stats and errors for the CLI.
package output

import "strings"

// Format selects a renderer.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatCompact
)

var formatNames = map[Format]string{
	FormatTable:   "table",
	FormatJSON:    "json",
	FormatCompact: "compact",
}

func (f Format) String() string { return formatNames[f] }

// Selection holds the format flags a command line may carry.
type Selection struct {
	JSON, Table, Compact bool
}

// Resolve picks the format for a command. An explicit flag wins, JSON
// before compact before table. Otherwise fallback (config or
// environment) is parsed.
func (s Selection) Resolve(fallback string) Format {
	switch {
	case s.JSON:
		return FormatJSON
	case s.Compact:
		return FormatCompact
	case s.Table:
		return FormatTable
	}
	return Parse(fallback)
}

// Parse maps a format name onto a Format. Unknown names mean table.
func Parse(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	default:
		return FormatTable
	}
}

// Package terminal renders race summaries for the console: headers, lap bars
// and colour coding of gaps.
package terminal

import (
	"os"
	"strconv"
)

// Default width constants.
const (
	DefaultWidth = 80
	MinWidth     = 60
	MaxWidth     = 160
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig creates a Config from the environment.
func NewConfig() Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// DetectWidth returns the terminal width from the COLUMNS environment
// variable clamped to [MinWidth, MaxWidth], or DefaultWidth if unset or invalid.
func DetectWidth() int {
	columnsEnv := os.Getenv("COLUMNS")
	if columnsEnv == "" {
		return DefaultWidth
	}

	width, err := strconv.Atoi(columnsEnv)
	if err != nil {
		return DefaultWidth
	}

	return min(max(width, MinWidth), MaxWidth)
}

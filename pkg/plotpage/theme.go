package plotpage

import (
	"errors"
	"fmt"
	"strings"
)

// Theme represents a color theme for report pages.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ErrUnknownTheme is returned by ParseTheme for an unsupported name.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme converts a configured theme name.
func ParseTheme(name string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(name))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds all theme-specific styling values.
type ThemeConfig struct {
	Background  string
	Surface     string
	Border      string
	TextPrimary string
	TextMuted   string
	Accent      string

	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// ECharts theme name.
	EChartsTheme string
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

var lightTheme = ThemeConfig{
	Background:  "#fafaf9", // stone-50.
	Surface:     "#ffffff",
	Border:      "#e7e5e4", // stone-200.
	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.
	Accent:      "#a16207", // amber-700.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4", // stone-200.
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c", // stone-700.
	ChartTextMuted:  "#78716c", // stone-500.
}

var darkTheme = ThemeConfig{
	Background:  "#0c0a09", // stone-950.
	Surface:     "#1c1917", // stone-900.
	Border:      "#44403c", // stone-700.
	TextPrimary: "#fafaf9", // stone-50.
	TextMuted:   "#a8a29e", // stone-400.
	Accent:      "#d97706", // amber-600.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c", // stone-700.
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1", // stone-300.
	ChartTextMuted:  "#a8a29e", // stone-400.
}

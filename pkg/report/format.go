package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/kartlytics/pkg/plotpage"
	"github.com/Sumatoshi-tech/kartlytics/pkg/terminal"
)

// Format is an output encoding of a bundle.
type Format string

// Output formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatPlot Format = "plot"
)

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat converts a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatText, FormatPlot:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "html":
		return FormatPlot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return NewJSONCodec().Extension()
	case FormatYAML:
		return NewYAMLCodec().Extension()
	case FormatPlot:
		return ".html"
	default:
		return ".txt"
	}
}

// ContentType returns the HTTP content type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatPlot:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// RenderOptions tunes the text and plot renderers.
type RenderOptions struct {
	Title    string
	Theme    plotpage.Theme
	Terminal terminal.Config
}

// DefaultRenderOptions returns options for the dark theme and the current terminal.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Title:    "Race analysis",
		Theme:    plotpage.ThemeDark,
		Terminal: terminal.NewConfig(),
	}
}

// Render writes the bundle to w in the requested format.
func Render(w io.Writer, b *Bundle, format Format, opts RenderOptions) error {
	switch format {
	case FormatJSON:
		return NewJSONCodec().Encode(w, b)
	case FormatYAML:
		return NewYAMLCodec().Encode(w, b)
	case FormatText:
		return writeText(w, b, opts.Terminal)
	case FormatPlot:
		return writePlot(w, b, opts)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

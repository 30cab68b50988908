package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/kartlytics/pkg/observability"
	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
	"github.com/Sumatoshi-tech/kartlytics/pkg/report"
)

// AnalyzeCommand holds the flags of the analyze command.
type AnalyzeCommand struct {
	globals *Globals
	output  string
	format  string
	theme   string
	title   string
	noColor bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(globals *Globals) *cobra.Command {
	ac := &AnalyzeCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "analyze <race.yaml>",
		Short: "Align lap times on a shared time axis and report the race",
		Long: `Analyze loads a race result, interpolates every team and driver onto a
shared time axis and writes progress, running average pace, distance to the
winner and leader, and deviation from the field average.

The output format defaults to report.format from the configuration, or is
inferred from the --output file extension.`,
		Args: cobra.ExactArgs(1),
		RunE: ac.run,
	}

	cmd.Flags().StringVarP(&ac.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVarP(&ac.format, "format", "f", "", "Output format: json, yaml, text, plot")
	cmd.Flags().StringVar(&ac.theme, "theme", "", "Plot theme: dark, light")
	cmd.Flags().StringVar(&ac.title, "title", "", "Plot page title")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", false, "Disable colored text output")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) error {
	rt, err := ac.globals.setup(observability.ModeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.shutdown()

	format, err := ac.resolveFormat(rt.cfg.Report.Format)
	if err != nil {
		return err
	}

	renderOpts, err := rt.renderOptions(ac.theme, ac.title, ac.noColor || ac.output != "")
	if err != nil {
		return err
	}

	res, err := race.Load(args[0])
	if err != nil {
		return err
	}

	bundle, err := report.Build(cmd.Context(), res, rt.reportOptions())
	if err != nil {
		return err
	}

	if ac.output == "" {
		return report.Render(cmd.OutOrStdout(), bundle, format, renderOpts)
	}

	err = writeFile(ac.output, func(w io.Writer) error {
		return report.Render(w, bundle, format, renderOpts)
	})
	if err != nil {
		return err
	}

	rt.logger.InfoContext(cmd.Context(), "report written", "path", ac.output, "format", format)

	return nil
}

// resolveFormat picks the explicit flag, then the output extension, then the
// configured default.
func (ac *AnalyzeCommand) resolveFormat(configured string) (report.Format, error) {
	if ac.format != "" {
		return report.ParseFormat(ac.format)
	}

	if ext := strings.TrimPrefix(filepath.Ext(ac.output), "."); ext != "" {
		format, err := report.ParseFormat(ext)
		if err == nil {
			return format, nil
		}
	}

	return report.ParseFormat(configured)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	buffered := bufio.NewWriter(f)

	writeErr := write(buffered)
	if writeErr != nil {
		f.Close()

		return writeErr
	}

	flushErr := buffered.Flush()
	if flushErr != nil {
		f.Close()

		return fmt.Errorf("write output: %w", flushErr)
	}

	closeErr := f.Close()
	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	return nil
}

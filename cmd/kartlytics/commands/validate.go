package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
)

// ErrValidationFailed is returned when a race document has problems.
var ErrValidationFailed = errors.New("validation failed")

const stdinPath = "-"

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var inputFormat string

	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <race.yaml|->",
		Short: "Check a race result against the schema and the data rules",
		Long: `Validate checks a race result document in two passes: the JSON schema
(field names and types) and the semantic rules the analysis relies on
(positive lap times, unique teams and drivers, pit laps).

Examples:
  kartlytics validate race.yaml
  kartlytics validate --input-format json - < race.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return runValidate(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], inputFormat)
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input format: yaml, json (default: from extension)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(stdin io.Reader, out io.Writer, path, inputFormat string) error {
	format := race.FormatFromPath(path)

	if inputFormat != "" {
		parsed, err := race.ParseFormat(inputFormat)
		if err != nil {
			return err
		}

		format = parsed
	}

	data, label, err := readInput(stdin, path)
	if err != nil {
		return err
	}

	doc, err := race.DecodeDocument(data, format)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "Invalid %s in %s: %v\n", format, label, err)

		return fmt.Errorf("%w: %s", ErrValidationFailed, label)
	}

	issues, err := race.CheckSchema(doc)
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		color.New(color.FgRed).Fprintf(out, "Schema validation failed (%s)\n", label)

		for _, issue := range issues {
			color.New(color.FgRed).Fprintf(out, "  - %s\n", issue)
		}

		return fmt.Errorf("%w: %s: %d schema issues", ErrValidationFailed, label, len(issues))
	}

	res, err := race.Decode(bytes.NewReader(data), format)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "Race data validation failed (%s)\n", label)

		for _, line := range strings.Split(err.Error(), "\n") {
			color.New(color.FgRed).Fprintf(out, "  - %s\n", line)
		}

		return fmt.Errorf("%w: %s", ErrValidationFailed, label)
	}

	var laps int
	for _, team := range res.Results {
		laps += len(team.Laps)
	}

	color.New(color.FgGreen).Fprintf(out, "Race data is valid (%s)\n", label)
	fmt.Fprintf(out, "  Race:    %s\n", res.RaceName)
	fmt.Fprintf(out, "  Teams:   %d\n", len(res.Results))
	fmt.Fprintf(out, "  Drivers: %d\n", len(res.Drivers()))
	fmt.Fprintf(out, "  Laps:    %d\n", laps)

	if winner, ok := res.Winner(); ok {
		fmt.Fprintf(out, "  Winner:  %s (kart %d)\n", winner.TeamName, winner.KartNumber)
	}

	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read race data: %w", err)
	}

	return data, path, nil
}

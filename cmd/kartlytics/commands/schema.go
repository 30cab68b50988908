package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/kartlytics/pkg/race"
	"github.com/Sumatoshi-tech/kartlytics/pkg/report"
)

// ErrUnknownSchema is returned for a schema name other than input or report.
var ErrUnknownSchema = errors.New("unknown schema")

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [input|report]",
		Short: "Print the JSON schema of race input or report output",
		Long: `Schema prints a JSON schema:

  input   the race result document accepted by analyze, validate and serve
  report  the json/yaml report produced by analyze and serve`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"input", "report"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "input"
			if len(args) == 1 {
				name = args[0]
			}

			data, err := schemaFor(name)
			if err != nil {
				return err
			}

			_, writeErr := fmt.Fprintln(cmd.OutOrStdout(), string(data))
			if writeErr != nil {
				return fmt.Errorf("write schema: %w", writeErr)
			}

			return nil
		},
	}
}

func schemaFor(name string) ([]byte, error) {
	switch name {
	case "input":
		return race.Schema(), nil
	case "report":
		return report.OutputSchemaJSON()
	default:
		return nil, fmt.Errorf("%w: %q (want input or report)", ErrUnknownSchema, name)
	}
}

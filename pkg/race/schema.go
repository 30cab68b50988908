package race

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// ErrSchemaViolation indicates the document does not match the race result schema.
// It always wraps ErrMalformedRaceData as well.
var ErrSchemaViolation = errors.New("schema violation")

// SchemaIssue is a single schema violation.
type SchemaIssue struct {
	Field       string
	Description string
}

func (i SchemaIssue) String() string {
	return i.Field + ": " + i.Description
}

// Schema returns the embedded JSON schema of a race result document.
func Schema() []byte {
	return schemaJSON
}

// CheckSchema validates a generic decoded document (maps, slices, scalars)
// against the embedded schema and returns every violation found.
func CheckSchema(doc any) ([]SchemaIssue, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("run schema validation: %w", err)
	}

	issues := make([]SchemaIssue, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		issues = append(issues, SchemaIssue{Field: verr.Field(), Description: verr.Description()})
	}

	return issues, nil
}

// ValidateSchema is CheckSchema folded into a single error.
func ValidateSchema(doc any) error {
	issues, err := CheckSchema(doc)
	if err != nil {
		return err
	}

	if len(issues) == 0 {
		return nil
	}

	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}

	return fmt.Errorf("%w: %w: %s", ErrMalformedRaceData, ErrSchemaViolation, strings.Join(parts, "; "))
}

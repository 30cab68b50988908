package race

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a race result document.
type Format string

const (
	// FormatYAML is the native race data format.
	FormatYAML Format = "yaml"
	// FormatJSON is accepted for results exported by other tools.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for an unsupported document format.
var ErrUnknownFormat = errors.New("unknown race data format")

// FormatFromPath guesses the document format from the file extension.
// Anything that is not .json is read as YAML, which is a superset of JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// ParseFormat converts a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Load reads, schema-checks and validates the race result stored at path.
func Load(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open race data: %w", err)
	}
	defer f.Close()

	res, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return res, nil
}

// Decode reads a race result document. The document is checked against the
// schema first and the decoded result is validated; on any failure no result
// is returned.
func Decode(r io.Reader, format Format) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read race data: %w", err)
	}

	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, err
	}

	schemaErr := ValidateSchema(doc)
	if schemaErr != nil {
		return nil, schemaErr
	}

	var res Result

	unmarshalErr := unmarshal(data, format, &res)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRaceData, unmarshalErr)
	}

	validateErr := res.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return &res, nil
}

// DecodeDocument decodes data into generic maps and slices suitable for
// schema validation.
func DecodeDocument(data []byte, format Format) (any, error) {
	var doc any

	err := unmarshal(data, format, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRaceData, err)
	}

	return doc, nil
}

func unmarshal(data []byte, format Format, out any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))

		err := dec.Decode(out)
		if err != nil {
			return fmt.Errorf("decode json: %w", err)
		}

		return nil
	case FormatYAML:
		err := yaml.Unmarshal(data, out)
		if err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

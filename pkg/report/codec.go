package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Default indentation for pretty-printed output.
const (
	defaultJSONIndent = "  "
	defaultYAMLIndent = 2
)

// Codec serialises a bundle.
type Codec interface {
	// Encode writes v to the writer.
	Encode(w io.Writer, v any) error
	// Extension returns the file extension for this codec (e.g., ".json").
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultJSONIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return ".json"
}

// YAMLCodec implements Codec using YAML encoding.
type YAMLCodec struct {
	Indent int
}

// NewYAMLCodec creates a YAML codec with 2-space indentation.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{Indent: defaultYAMLIndent}
}

// Encode implements Codec.Encode using YAML encoding.
func (c *YAMLCodec) Encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(c.Indent)

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	closeErr := encoder.Close()
	if closeErr != nil {
		return fmt.Errorf("yaml flush: %w", closeErr)
	}

	return nil
}

// Extension implements Codec.Extension for YAML files.
func (c *YAMLCodec) Extension() string {
	return ".yaml"
}

package report

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

const jsonSchemaDraft = "http://json-schema.org/draft-07/schema#"

// Schema is the subset of JSON Schema produced for report documents.
type Schema struct {
	Schema      string             `json:"$schema,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Type        any                `json:"type,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	AnyOf       []*Schema          `json:"anyOf,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`
}

// OutputSchema derives the JSON schema of a serialised Bundle from its
// struct tags. Slices and pointers may be null, matching encoding/json.
func OutputSchema() *Schema {
	defs := make(map[string]*Schema)
	props, required := structToProperties(reflect.TypeFor[Bundle](), defs)

	return &Schema{
		Schema:      jsonSchemaDraft,
		Title:       "Race Analysis Report",
		Description: "Aligned team and driver timelines with per-entity summaries",
		Type:        "object",
		Properties:  props,
		Required:    required,
		Definitions: defs,
	}
}

// OutputSchemaJSON returns OutputSchema as indented JSON.
func OutputSchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(OutputSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report schema: %w", err)
	}

	return data, nil
}

func structToProperties(t reflect.Type, defs map[string]*Schema) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for i := range t.NumField() {
		field := t.Field(i)

		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		props[name] = typeToSchema(field.Type, defs)

		if opts != "omitempty" {
			required = append(required, name)
		}
	}

	return props, required
}

func typeToSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Slice:
		return &Schema{Type: []string{"array", "null"}, Items: typeToSchema(t.Elem(), defs)}
	case reflect.Pointer:
		return &Schema{AnyOf: []*Schema{typeToSchema(t.Elem(), defs), {Type: "null"}}}
	case reflect.Struct:
		name := t.Name()
		if _, ok := defs[name]; !ok {
			// Reserve the name before recursing so self references terminate.
			defs[name] = &Schema{}
			props, required := structToProperties(t, defs)
			*defs[name] = Schema{Type: "object", Properties: props, Required: required}
		}

		return &Schema{Ref: "#/definitions/" + name}
	default:
		return &Schema{}
	}
}

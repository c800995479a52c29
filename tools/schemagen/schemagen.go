// Package main generates JSON schemas for the payloads exprc and the MCP
// tools emit: compiled artifacts, validation results and the operation
// catalog.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Sumatoshi-tech/exprgraph/pkg/compiler"
	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
	"github.com/Sumatoshi-tech/exprgraph/pkg/mcp"
)

const (
	schemaDirPerm  = 0o750
	schemaFilePerm = 0o600
	draft07        = "http://json-schema.org/draft-07/schema#"
)

// Schema represents a JSON Schema.
type Schema struct {
	Schema      string             `json:"$schema,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`
}

// payloads maps output file names to a sample value of each payload type.
func payloads() map[string]any {
	return map[string]any{
		"artifact":  &compiler.Artifact{},
		"validate":  &mcp.ValidateResult{},
		"operation": &expr.Operation{},
	}
}

func main() {
	outputDir := flag.String("o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	err := generateAll(*outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func generateAll(outputDir string) error {
	err := os.MkdirAll(outputDir, schemaDirPerm)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	all := payloads()

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		err = writeSchema(filepath.Join(outputDir, name+".json"), generateSchema(name, all[name]))
		if err != nil {
			return fmt.Errorf("write schema for %s: %w", name, err)
		}

		fmt.Fprintf(os.Stdout, "Generated schema for %s\n", name)
	}

	return nil
}

func generateSchema(name string, value any) *Schema {
	typ := reflect.TypeOf(value)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	defs := make(map[string]*Schema)
	props, required := structToProperties(typ, defs)

	schema := &Schema{
		Schema:      draft07,
		Title:       cases.Title(language.English).String(name) + " Payload",
		Description: fmt.Sprintf("JSON schema for the exprgraph %s payload", name),
		Type:        "object",
		Properties:  props,
		Required:    required,
	}

	if len(defs) > 0 {
		schema.Definitions = defs
	}

	return schema
}

func structToProperties(typ reflect.Type, defs map[string]*Schema) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for idx := range typ.NumField() {
		field := typ.Field(idx)
		jsonTag := field.Tag.Get("json")

		if jsonTag == "-" || jsonTag == "" {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		jsonName := parts[0]
		isOmitempty := len(parts) > 1 && parts[1] == "omitempty"

		props[jsonName] = typeToSchema(field.Type, defs)

		if !isOmitempty {
			required = append(required, jsonName)
		}
	}

	return props, required
}

func typeToSchema(typ reflect.Type, defs map[string]*Schema) *Schema {
	switch typ.Kind() {
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
		return &Schema{Type: "array", Items: typeToSchema(typ.Elem(), defs)}

	case reflect.Struct:
		defName := typ.Name()
		if defName == "" {
			props, required := structToProperties(typ, defs)

			return &Schema{Type: "object", Properties: props, Required: required}
		}

		if _, exists := defs[defName]; !exists {
			// Reserve the name first so recursive types terminate.
			defs[defName] = &Schema{Type: "object"}
			props, required := structToProperties(typ, defs)
			defs[defName] = &Schema{Type: "object", Properties: props, Required: required}
		}

		return &Schema{Ref: "#/definitions/" + defName}

	case reflect.Ptr:
		return typeToSchema(typ.Elem(), defs)

	default:
		return &Schema{}
	}
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), schemaFilePerm)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

package document

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// schemaJSON is the JSON schema of expression documents.
//
//go:embed schema.json
var schemaJSON []byte

// Schema returns a copy of the embedded document schema.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)

	return out
}

// ValidationError is one schema violation.
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (validationErr ValidationError) String() string {
	return validationErr.Field + ": " + validationErr.Description
}

// Validate checks data against the document schema and returns every
// violation. A nil slice means the document is structurally valid; input
// that is not YAML or JSON at all returns an error.
func Validate(data []byte) ([]ValidationError, error) {
	value, err := DecodeGeneric(data)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]ValidationError, 0, len(result.Errors()))

	for _, resultErr := range result.Errors() {
		violations = append(violations, ValidationError{
			Field:       resultErr.Field(),
			Description: resultErr.Description(),
		})
	}

	return violations, nil
}

// DecodeGeneric decodes YAML or JSON into plain maps, slices and scalars
// with string map keys, the form gojsonschema and encoding/json expect.
func DecodeGeneric(data []byte) (any, error) {
	var value any

	err := yaml.Unmarshal(data, &value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if value == nil {
		return nil, ErrEmptyDocument
	}

	return normalize(value), nil
}

func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			typed[key] = normalize(item)
		}

		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalize(item)
		}

		return out
	case []any:
		for i, item := range typed {
			typed[i] = normalize(item)
		}

		return typed
	default:
		return value
	}
}

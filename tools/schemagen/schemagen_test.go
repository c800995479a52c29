package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/exprgraph/pkg/compiler"
	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
)

const fadeDocument = `
name: fade
objects:
  card: {type: Windows.UI.Composition.SpriteVisual}
constants:
  floor: {scalar: 0}
expression:
  fn: clamp
  args:
    - {get: Opacity, from: {ref: card}}
    - {param: floor, shape: scalar}
    - 1
`

func TestGenerateArtifactSchema(t *testing.T) {
	t.Parallel()

	schema := generateSchema("artifact", &compiler.Artifact{})

	assert.Equal(t, "Artifact Payload", schema.Title)
	assert.Contains(t, schema.Properties, "expression")
	assert.Equal(t, "array", schema.Properties["references"].Type)
	assert.Equal(t, "#/definitions/CompiledReference", schema.Properties["references"].Items.Ref)
	assert.Contains(t, schema.Definitions, "CompiledConstant")
	assert.ElementsMatch(t,
		[]string{"name", "source_hash", "expression", "references", "constants", "node_count"},
		schema.Required)
	assert.NotContains(t, schema.Definitions["CompiledReference"].Required, "object_type")
}

func TestCompiledArtifactMatchesSchema(t *testing.T) {
	t.Parallel()

	artifact, err := compiler.NewService(compiler.Options{}).Compile(context.Background(), "", []byte(fadeDocument))
	require.NoError(t, err)

	schemaJSON, err := json.Marshal(generateSchema("artifact", &compiler.Artifact{}))
	require.NoError(t, err)

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(artifact))
	require.NoError(t, err)
	assert.True(t, result.Valid(), "%v", result.Errors())
}

func TestCatalogMatchesSchema(t *testing.T) {
	t.Parallel()

	schemaJSON, err := json.Marshal(generateSchema("operation", &expr.Operation{}))
	require.NoError(t, err)

	loader := gojsonschema.NewBytesLoader(schemaJSON)

	for _, operation := range expr.Catalog() {
		result, validateErr := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(operation))
		require.NoError(t, validateErr)
		assert.True(t, result.Valid(), operation.Name)
	}
}

func TestGenerateAllWritesFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "schemas")
	require.NoError(t, generateAll(dir))

	for name := range payloads() {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		require.NoError(t, err)

		var decoded Schema

		require.NoError(t, json.Unmarshal(data, &decoded), name)
		assert.Equal(t, draft07, decoded.Schema)
	}
}

package commands_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/exprgraph/cmd/exprc/commands"
	"github.com/Sumatoshi-tech/exprgraph/pkg/compiler"
	"github.com/Sumatoshi-tech/exprgraph/pkg/persist"
)

const parallaxDocument = `
name: parallax
objects:
  scroller:
    type: Windows.UI.Composition.CompositionPropertySet
    kind: manipulation_property_set
constants:
  ratio: {scalar: 0.5}
expression:
  fn: mul
  args:
    - {get: Translation, from: {ref: scroller}}
    - {param: ratio, shape: scalar}
`

const parallaxTunedDocument = `
name: parallax
objects:
  scroller:
    type: Windows.UI.Composition.CompositionPropertySet
    kind: manipulation_property_set
constants:
  ratio: {scalar: 0.25}
expression:
  fn: mul
  args:
    - {get: Translation, from: {ref: scroller}}
    - {param: ratio, shape: scalar}
`

const fadeDocument = `
name: fade
objects:
  card: {type: Windows.UI.Composition.SpriteVisual}
expression:
  fn: clamp
  args:
    - {get: Opacity, from: {ref: card}}
    - 0
    - 1
`

const brokenArityDocument = `
expression:
  fn: add
  args:
    - 1
`

// harness runs the root command against files in a temp directory.
type harness struct {
	t      *testing.T
	dir    string
	config string
	stdin  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{t: t, dir: dir}
	h.config = h.write("exprgraph.yaml", "logging:\n  level: error\n")

	return h
}

func (h *harness) write(name, content string) string {
	h.t.Helper()

	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	root := commands.NewRootCommand()

	var out, errOut bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(h.stdin))
	root.SetArgs(append([]string{"--config", h.config}, args...))

	err := root.Execute()

	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var exitErr *commands.ExitError

	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)

	return exitErr.Code
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "exprc "), out)
	assert.Contains(t, out, "commit:")
}

func TestCompileText(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("parallax.yaml", parallaxDocument)

	out, err := h.run("compile", path)
	require.NoError(t, err)

	assert.Contains(t, out, "parallax")
	assert.Contains(t, out, "(CompositionPropertySet_1.Translation * ratio)")
	assert.Contains(t, out, "CompositionPropertySet_1")
	assert.Contains(t, out, "4 nodes, 1 reference, 1 constant")
}

func TestCompileJSONSingle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("fade.yaml", fadeDocument)

	out, err := h.run("compile", "-f", "json", path)
	require.NoError(t, err)

	var artifact compiler.Artifact

	require.NoError(t, json.Unmarshal([]byte(out), &artifact))
	assert.Equal(t, "fade", artifact.Name)
	assert.Equal(t, "Clamp(SpriteVisual_1.Opacity,0,1)", artifact.Expression)
}

func TestCompileJSONBatchKeepsOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	first := h.write("fade.yaml", fadeDocument)
	second := h.write("parallax.yaml", parallaxDocument)

	out, err := h.run("compile", "--format", "json", first, second)
	require.NoError(t, err)

	var artifacts []compiler.Artifact

	require.NoError(t, json.Unmarshal([]byte(out), &artifacts))
	require.Len(t, artifacts, 2)
	assert.Equal(t, "fade", artifacts[0].Name)
	assert.Equal(t, "parallax", artifacts[1].Name)
}

func TestCompileFromStdinWithName(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.stdin = parallaxDocument

	out, err := h.run("compile", "-f", "json", "--name", "hero", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "hero"`)
}

func TestCompileSavesArtifacts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("parallax.yaml", parallaxDocument)
	outDir := filepath.Join(h.dir, "build")

	out, err := h.run("compile", "-o", outDir, "--artifact-format", "lz4", path)
	require.NoError(t, err)
	assert.Contains(t, out, "saved ")

	codec, err := persist.CodecFor("lz4")
	require.NoError(t, err)

	loaded, err := persist.NewStore[compiler.Artifact](outDir, codec).Load("parallax")
	require.NoError(t, err)
	assert.Equal(t, "(CompositionPropertySet_1.Translation * ratio)", loaded.Expression)
}

func TestCompileRejectsDuplicateArtifactNames(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	first := h.write("a.yaml", parallaxDocument)
	second := h.write("b.yaml", parallaxTunedDocument)

	_, err := h.run("compile", "-o", filepath.Join(h.dir, "build"), first, second)
	require.ErrorIs(t, err, commands.ErrDuplicateArtifact)
}

func TestCompileArgumentErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("parallax.yaml", parallaxDocument)

	_, err := h.run("compile", "--name", "x", path, path)
	require.ErrorIs(t, err, commands.ErrNameWithMultipleDocuments)

	_, err = h.run("compile", "-", path)
	require.ErrorIs(t, err, commands.ErrStdinWithMultipleDocuments)

	_, err = h.run("compile", h.dir)
	require.ErrorIs(t, err, commands.ErrDirectoryPath)

	_, err = h.run("compile", "-f", "xml", path)
	require.Error(t, err)
}

func TestCompileFailureNamesDocument(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("broken.yaml", brokenArityDocument)

	_, err := h.run("compile", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestValidateValid(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("parallax.yaml", parallaxDocument)

	out, err := h.run("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "document is valid")
}

func TestValidateSchemaFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("orphan.yaml", "name: orphan\n")

	out, err := h.run("validate", path)
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, out, "document is invalid")
	assert.Contains(t, out, "expression")
}

func TestValidateStrictCompiles(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.write("broken.yaml", brokenArityDocument)

	_, err := h.run("validate", path)
	require.NoError(t, err, "the schema alone accepts a short argument list")

	out, err := h.run("validate", "--strict", "-f", "json", path)
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(t, err))

	var report struct {
		Valid        bool   `json:"valid"`
		CompileError string `json:"compile_error"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.CompileError)
}

func TestValidateUnreadableDocument(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.stdin = "expression: [unclosed"

	_, err := h.run("validate", "-")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(t, err))
}

func TestDiffIdentical(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	left := h.write("a.yaml", parallaxDocument)
	right := h.write("b.yaml", parallaxDocument)

	out, err := h.run("diff", "--exit-code", left, right)
	require.NoError(t, err)
	assert.Contains(t, out, "artifacts are identical")
}

func TestDiffReportsChangedConstant(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	left := h.write("a.yaml", parallaxDocument)
	right := h.write("b.yaml", parallaxTunedDocument)

	out, err := h.run("diff", left, right)
	require.NoError(t, err)
	assert.Contains(t, out, "~ constant ratio")

	_, err = h.run("diff", "--exit-code", left, right)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(t, err))
}

func TestDiffJSON(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	left := h.write("a.yaml", parallaxDocument)
	right := h.write("b.yaml", fadeDocument)

	out, err := h.run("diff", "-f", "json", left, right)
	require.NoError(t, err)

	var report struct {
		Equal           bool     `json:"equal"`
		Right           string   `json:"right"`
		ReferencesAdded []string `json:"references_added"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Equal)
	assert.Equal(t, "Clamp(SpriteVisual_1.Opacity,0,1)", report.Right)
	assert.Equal(t, []string{"SpriteVisual_1"}, report.ReferencesAdded)
}

func TestFunctionsTable(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("functions")
	require.NoError(t, err)
	assert.Contains(t, out, "Clamp")
	assert.Contains(t, strings.ToUpper(out), "TOTAL:")
}

func TestFunctionsJSONFilter(t *testing.T) {
	t.Parallel()

	out, err := newHarness(t).run("functions", "--kind", "conditional", "-f", "json")
	require.NoError(t, err)

	var operations []struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &operations))
	require.Len(t, operations, 1)
	assert.Equal(t, "conditional", operations[0].Kind)
}

func TestFunctionsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := newHarness(t).run("functions", "--kind", "macro")
	require.ErrorIs(t, err, commands.ErrUnknownKind)
}

func TestMCPCommandFlags(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	cmd, _, err := root.Find([]string{"mcp"})
	require.NoError(t, err)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Long)

	debug := cmd.Flags().Lookup("debug")
	require.NotNil(t, debug)
	assert.Equal(t, "false", debug.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("metrics-addr"))
}

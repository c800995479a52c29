package expr //nolint:testpackage // Tests need access to internal types.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIsTotal(t *testing.T) {
	t.Parallel()

	for _, nodeType := range NodeTypes() {
		assert.NotPanics(t, func() { Classify(nodeType) }, nodeType.String())
		assert.NotEmpty(t, nodeType.String())
	}

	assert.Len(t, NodeTypes(), int(nodeTypeCount))
}

func TestClassifyKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		nodeType NodeType
		kind     OperationKind
		token    string
	}{
		{NodeAdd, KindOperator, "+"},
		{NodeAnd, KindOperator, "&&"},
		{NodeNotEquals, KindOperator, "!="},
		{NodeGreaterThanEquals, KindOperator, ">="},
		{NodeNot, KindFunction, "!"},
		{NodeNegate, KindFunction, "-"},
		{NodeAbsolute, KindFunction, "Abs"},
		{NodeModulus, KindFunction, "Mod"},
		{NodeMatrix4x4FromAxisAngle, KindFunction, "Matrix4x4.CreateFromAxisAngle"},
		{NodeQuaternionFromAxisAngle, KindFunction, "Quaternion.CreateFromAxisAngle"},
		{NodeConstantValue, KindConstant, ""},
		{NodeConstantParameter, KindConstant, ""},
		{NodeSwizzle, KindSwizzle, ""},
		{NodeConditional, KindConditional, ""},
		{NodeTargetReference, KindReference, ""},
		{NodeReferenceProperty, KindReference, ""},
		{NodeCurrentValueProperty, KindReference, ""},
	}

	for _, tt := range tests {
		t.Run(tt.nodeType.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, Classify(tt.nodeType))
			assert.Equal(t, tt.token, Token(tt.nodeType))
		})
	}
}

func TestOperatorsAreBinary(t *testing.T) {
	t.Parallel()

	for _, nodeType := range NodeTypes() {
		if Classify(nodeType) != KindOperator {
			continue
		}

		minArgs, maxArgs := Arity(nodeType)
		assert.Equal(t, 2, minArgs, nodeType.String())
		assert.Equal(t, 2, maxArgs, nodeType.String())
	}
}

func TestClassifyUnknownPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Classify(nodeTypeCount) })
	assert.Panics(t, func() { Token(NodeType(-1)) })
	assert.Equal(t, "NodeType(-1)", NodeType(-1).String())
}

func TestParseNodeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  NodeType
	}{
		{"clamp", NodeClamp},
		{"Add", NodeAdd},
		{"  MUL ", NodeMultiply},
		{"lerp", NodeLerp},
		{"matrix4x4fromaxisangle", NodeMatrix4x4FromAxisAngle},
		{"if", NodeConditional},
		{"ge", NodeGreaterThanEquals},
	}

	for _, tt := range tests {
		got, err := ParseNodeType(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseNodeType("frobnicate")
	require.ErrorIs(t, err, ErrUnknownNodeType)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = ParseNodeType("clmap")
	require.ErrorIs(t, err, ErrUnknownNodeType)
	assert.Contains(t, err.Error(), `did you mean "Clamp"?`)
}

func TestParseShape(t *testing.T) {
	t.Parallel()

	for _, shape := range Shapes() {
		parsed, err := ParseShape(shape.String())
		require.NoError(t, err)
		assert.Equal(t, shape, parsed)
	}

	parsed, err := ParseShape("Float")
	require.NoError(t, err)
	assert.Equal(t, ShapeScalar, parsed)

	_, err = ParseShape("vector5")
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestNewNode(t *testing.T) {
	t.Parallel()

	for _, shape := range Shapes() {
		created, err := NewNode(shape)
		require.NoError(t, err)
		assert.Equal(t, shape, created.Shape())
	}

	_, err := NewNode(Shape(42))
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog := Catalog()
	byName := make(map[string]Operation, len(catalog))

	for _, operation := range catalog {
		byName[operation.Name] = operation

		nodeType, err := ParseNodeType(operation.Name)
		require.NoError(t, err)
		assert.NotEqual(t, KindConstant, Classify(nodeType))
		assert.NotEqual(t, KindReference, Classify(nodeType))
	}

	assert.Equal(t, Operation{Name: "Add", Kind: "operator", Token: "+", MinArgs: 2, MaxArgs: 2}, byName["Add"])
	assert.Equal(t, Operation{Name: "Clamp", Kind: "function", Token: "Clamp", MinArgs: 3, MaxArgs: 3}, byName["Clamp"])
	assert.Equal(t, "conditional", byName["Conditional"].Kind)
	assert.NotContains(t, byName, "Swizzle")
	assert.NotContains(t, byName, "ConstantValue")
}

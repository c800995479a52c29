package expr //nolint:testpackage // Tests need access to internal types.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root func() *Node
		want string
	}{
		{
			name: "nested operators are fully parenthesized",
			root: func() *Node { return Add(Add(Scalar(1), Scalar(2)), Scalar(3)) },
			want: "((1 + 2) + 3)",
		},
		{
			name: "right nested",
			root: func() *Node { return Mul(Scalar(0.5), Sub(Scalar(4), Scalar(-2.25))) },
			want: "(0.5 * (4 - -2.25))",
		},
		{
			name: "function arguments",
			root: func() *Node { return Clamp(CurrentValue(ShapeScalar), Scalar(0), Scalar(1)) },
			want: "Clamp(this.CurrentValue,0,1)",
		},
		{
			name: "unary functions",
			root: func() *Node { return And(Not(Boolean(true)), Lt(Neg(Scalar(1)), Scalar(0))) },
			want: "(!(true) && (-(1) < 0))",
		},
		{
			name: "conditional",
			root: func() *Node {
				return Conditional(Gt(CurrentValue(ShapeScalar), Scalar(0)), Scalar(1), StartingValue(ShapeScalar))
			},
			want: "(((this.CurrentValue > 0)) ? (1) : (this.StartingValue))",
		},
		{
			name: "vector literals",
			root: func() *Node { return Add(Vec3(1, 2, 3), Vec3(0.25, 0, -1)) },
			want: "(Vector3(1,2,3) + Vector3(0.25,0,-1))",
		},
		{
			name: "constructor functions",
			root: func() *Node { return Vector2Of(Scalar(1), Sin(Scalar(0))) },
			want: "Vector2(1,Sin(0))",
		},
		{
			name: "matrix factories",
			root: func() *Node { return Matrix4x4FromAxisAngle(Vec3(0, 0, 1), ToRadians(Scalar(45))) },
			want: "Matrix4x4.CreateFromAxisAngle(Vector3(0,0,1),ToRadians(45))",
		},
		{
			name: "target reference",
			root: func() *Node { return Add(Target(RefVisual).MustProperty("Opacity"), Scalar(1)) },
			want: "(this.Target.Opacity + 1)",
		},
		{
			name: "color literal",
			root: func() *Node { return ColorLerp(ColorARGB(255, 0, 128, 64), ColorARGB(0, 0, 0, 0), Scalar(0.5)) },
			want: "ColorLerp(ColorRgb(255,0,128,64),ColorRgb(0,0,0,0),0.5)",
		},
		{
			name: "shared subexpression is emitted at each occurrence",
			root: func() *Node {
				shared := Add(Scalar(1), Scalar(2))

				return Mul(shared, shared)
			},
			want: "((1 + 2) * (1 + 2))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.root().ExpressionString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionalFormat(t *testing.T) {
	t.Parallel()

	condition, err := ConstantParameter("X", ShapeBoolean)
	require.NoError(t, err)

	then, err := ConstantParameter("Y", ShapeScalar)
	require.NoError(t, err)

	otherwise, err := ConstantParameter("Z", ShapeScalar)
	require.NoError(t, err)

	got, err := Conditional(condition, then, otherwise).ExpressionString()
	require.NoError(t, err)
	assert.Equal(t, "((X) ? (Y) : (Z))", got)
}

func TestSwizzleEmission(t *testing.T) {
	t.Parallel()

	swizzled, err := Swizzle(Vec3(1, 2, 3), "z", "X")
	require.NoError(t, err)

	got, err := swizzled.ExpressionString()
	require.NoError(t, err)
	assert.Equal(t, "Vector3(1,2,3).ZX", got)

	matrix := Target(RefVisual).MustProperty("TransformMatrix")
	element, err := Swizzle(matrix, "_41")
	require.NoError(t, err)

	got, err = element.ExpressionString()
	require.NoError(t, err)
	assert.Equal(t, "this.Target.TransformMatrix._41", got)

	got, err = Target(RefVisual).MustProperty("Offset").Y().ExpressionString()
	require.NoError(t, err)
	assert.Equal(t, "this.Target.Offset.Y", got)
}

func TestMalformedTreesFail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root *Node
	}{
		{"operator with one child", &Node{nodeType: NodeAdd, children: []*Node{Scalar(1)}}},
		{"operator with three children", &Node{nodeType: NodeAdd, children: []*Node{Scalar(1), Scalar(2), Scalar(3)}}},
		{"swizzle with no child", &Node{nodeType: NodeSwizzle, subchannels: []string{"X"}}},
		{"swizzle with two children", &Node{
			nodeType: NodeSwizzle, subchannels: []string{"X"}, children: []*Node{Vec2(1, 2), Vec2(3, 4)},
		}},
		{"function without arguments", &Node{nodeType: NodeSin}},
		{"conditional with two children", &Node{nodeType: NodeConditional, children: []*Node{Boolean(true), Scalar(1)}}},
		{"constant with children", &Node{nodeType: NodeConstantValue, value: Float(1), children: []*Node{Scalar(1)}}},
		{"constant without value", &Node{nodeType: NodeConstantValue}},
		{"property without name", &Node{nodeType: NodeReferenceProperty, children: []*Node{Target(RefVisual)}}},
		{"nil operand", Add(Scalar(1), nil)},
		{"malformed leaf deep in the tree", Add(Scalar(1), Mul(Scalar(2), &Node{nodeType: NodeCos}))},
		{"unknown node type", &Node{nodeType: nodeTypeCount}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.root.ExpressionString()
			require.ErrorIs(t, err, ErrMalformedExpression)
			assert.Empty(t, got)
		})
	}
}

func TestSerializeRequiresResolution(t *testing.T) {
	t.Parallel()

	root := Reference(RefVisual, spriteVisual()).MustProperty("Size")

	_, err := Serialize(root)
	require.ErrorIs(t, err, ErrMalformedExpression)

	got, err := root.ExpressionString()
	require.NoError(t, err)
	assert.Equal(t, "SpriteVisual_1.Size", got)
}

func TestValueLiterals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Value
		want  string
	}{
		{Bool(false), "false"},
		{Float(0.1), "0.1"},
		{Float(-3), "-3"},
		{Vector2{X: 1, Y: 2}, "Vector2(1,2)"},
		{Vector4{X: 1, Y: 2, Z: 3, W: 4}, "Vector4(1,2,3,4)"},
		{Color{A: 255, R: 1, G: 2, B: 3}, "ColorRgb(255,1,2,3)"},
		{Quaternion{W: 1}, "Quaternion(0,0,0,1)"},
		{Identity3x2(), "Matrix3x2(1,0,0,1,0,0)"},
		{Identity4x4(), "Matrix4x4(1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.value.Literal())
	}
}

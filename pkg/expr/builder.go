package expr

import (
	"errors"
	"fmt"
)

// build creates an operation node whose shape follows the node type's shape
// rule. It performs no validation; malformed trees are reported when they
// are serialized.
func build(nodeType NodeType, children ...*Node) *Node {
	info := mustInfo(nodeType)

	shape := ShapeScalar
	if info.resultOf != nil {
		shape = info.resultOf(children)
	}

	return &Node{nodeType: nodeType, shape: shape, children: children}
}

// Apply builds an operator, function or conditional node by type, checking
// the operand count and inferring the result shape.
func Apply(nodeType NodeType, children ...*Node) (*Node, error) {
	info, ok := lookupInfo(nodeType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformedExpression, nodeType)
	}

	switch info.kind {
	case KindFunction, KindOperator, KindConditional:
	default:
		return nil, fmt.Errorf("%w: %s cannot be applied to operands", ErrMalformedExpression, nodeType)
	}

	err := checkArity(nodeType, len(children))
	if err != nil {
		return nil, err
	}

	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: %s operand %d is nil", ErrMalformedExpression, nodeType, i)
		}
	}

	return build(nodeType, children...), nil
}

// NewOperation builds a node with an explicit result shape. Only the
// operation kind's child count contract is checked.
func NewOperation(nodeType NodeType, shape Shape, children ...*Node) (*Node, error) {
	info, ok := lookupInfo(nodeType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformedExpression, nodeType)
	}

	if nodeType == NodeSwizzle || nodeType == NodeReferenceProperty {
		return nil, fmt.Errorf("%w: %s needs a dedicated builder", ErrMalformedExpression, nodeType)
	}

	operationNode, err := NewNode(shape)
	if err != nil {
		return nil, err
	}

	err = checkKindArity(nodeType, info.kind, len(children))
	if err != nil {
		return nil, err
	}

	operationNode.nodeType = nodeType
	operationNode.children = children

	return operationNode, nil
}

// Constant returns a literal constant node.
func Constant(value Value) *Node {
	shape := ShapeScalar
	if value != nil {
		shape = value.Shape()
	}

	return &Node{nodeType: NodeConstantValue, shape: shape, value: value}
}

// Boolean returns a boolean literal.
func Boolean(value bool) *Node { return Constant(Bool(value)) }

// Scalar returns a scalar literal.
func Scalar(value float32) *Node { return Constant(Float(value)) }

// Vec2 returns a vector2 literal.
func Vec2(x, y float32) *Node { return Constant(Vector2{X: x, Y: y}) }

// Vec3 returns a vector3 literal.
func Vec3(x, y, z float32) *Node { return Constant(Vector3{X: x, Y: y, Z: z}) }

// Vec4 returns a vector4 literal.
func Vec4(x, y, z, w float32) *Node { return Constant(Vector4{X: x, Y: y, Z: z, W: w}) }

// ColorARGB returns a color literal.
func ColorARGB(a, r, g, b uint8) *Node { return Constant(Color{A: a, R: r, G: g, B: b}) }

// Quat returns a quaternion literal.
func Quat(x, y, z, w float32) *Node { return Constant(Quaternion{X: x, Y: y, Z: z, W: w}) }

// Mat3x2 returns a matrix3x2 literal.
func Mat3x2(value Matrix3x2) *Node { return Constant(value) }

// Mat4x4 returns a matrix4x4 literal.
func Mat4x4(value Matrix4x4) *Node { return Constant(value) }

var errEmptyParameterName = errors.New("empty parameter name")

// ConstantParameter returns a constant emitted by name whose value is
// supplied later through a Set*Parameter call on the root.
func ConstantParameter(name string, shape Shape) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrMalformedExpression, errEmptyParameterName)
	}

	constantNode, err := NewNode(shape)
	if err != nil {
		return nil, err
	}

	constantNode.nodeType = NodeConstantParameter
	constantNode.paramName = name

	return constantNode, nil
}

// NamedConstant returns a constant emitted by name that carries its own value.
func NamedConstant(name string, value Value) (*Node, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil value for %q", ErrUnsupportedParameterType, name)
	}

	constantNode, err := ConstantParameter(name, value.Shape())
	if err != nil {
		return nil, err
	}

	constantNode.constParams.Set(name, value)

	return constantNode, nil
}

// Conditional returns the ternary cond ? then : otherwise.
func Conditional(condition, then, otherwise *Node) *Node {
	return build(NodeConditional, condition, then, otherwise)
}

package expr

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/exprgraph/pkg/levenshtein"
)

// NodeType identifies the operation a node performs.
type NodeType int

// Node types. The set is closed; every value below has an entry in nodeInfos.
const (
	NodeConstantValue NodeType = iota
	NodeConstantParameter
	NodeCurrentValueProperty
	NodeReference
	NodeReferenceProperty
	NodeStartingValueProperty
	NodeTargetReference
	NodeConditional
	NodeSwizzle
	NodeAdd
	NodeAnd
	NodeDivide
	NodeEquals
	NodeGreaterThan
	NodeGreaterThanEquals
	NodeLessThan
	NodeLessThanEquals
	NodeMultiply
	NodeNot
	NodeNotEquals
	NodeOr
	NodeSubtract
	NodeAbsolute
	NodeAcos
	NodeAsin
	NodeAtan
	NodeCos
	NodeCeil
	NodeClamp
	NodeColorHsl
	NodeColorRgb
	NodeColorLerp
	NodeColorLerpHsl
	NodeColorLerpRgb
	NodeConcatenate
	NodeDistance
	NodeDistanceSquared
	NodeFloor
	NodeInverse
	NodeLength
	NodeLengthSquared
	NodeLerp
	NodeLn
	NodeLog10
	NodeMax
	NodeMatrix3x2FromRotation
	NodeMatrix3x2FromScale
	NodeMatrix3x2FromSkew
	NodeMatrix3x2FromTranslation
	NodeMatrix3x2
	NodeMatrix4x4FromAxisAngle
	NodeMatrix4x4FromScale
	NodeMatrix4x4FromTranslation
	NodeMatrix4x4
	NodeMin
	NodeModulus
	NodeNegate
	NodeNormalize
	NodePow
	NodeQuaternionFromAxisAngle
	NodeQuaternion
	NodeRound
	NodeScale
	NodeSin
	NodeSlerp
	NodeSqrt
	NodeSquare
	NodeTan
	NodeToDegrees
	NodeToRadians
	NodeTransform
	NodeVector2
	NodeVector3
	NodeVector4

	nodeTypeCount
)

// OperationKind classifies a NodeType by how it is serialized.
type OperationKind int

// Operation kinds.
const (
	KindFunction OperationKind = iota
	KindOperator
	KindConstant
	KindSwizzle
	KindReference
	KindConditional
)

func (kind OperationKind) String() string {
	switch kind {
	case KindFunction:
		return "function"
	case KindOperator:
		return "operator"
	case KindConstant:
		return "constant"
	case KindSwizzle:
		return "swizzle"
	case KindReference:
		return "reference"
	case KindConditional:
		return "conditional"
	default:
		return "unknown"
	}
}

// variadic marks an arity without an upper bound.
const variadic = -1

// shapeRule derives the result shape of an operation from its operands.
type shapeRule func(children []*Node) Shape

// nodeInfo is the static metadata of a NodeType.
type nodeInfo struct {
	name     string
	kind     OperationKind
	token    string
	minArgs  int
	maxArgs  int
	resultOf shapeRule
}

func fixed(shape Shape) shapeRule {
	return func(_ []*Node) Shape { return shape }
}

// sameAsFirst returns the shape of the first operand.
func sameAsFirst(children []*Node) Shape {
	for _, child := range children {
		if child != nil {
			return child.shape
		}

		break
	}

	return ShapeScalar
}

// widest returns the first non-scalar operand shape, so that scalar*vector
// and vector*scalar both yield the vector shape.
func widest(children []*Node) Shape {
	for _, child := range children {
		if child != nil && child.shape != ShapeScalar {
			return child.shape
		}
	}

	return ShapeScalar
}

// branches returns the widest shape of a conditional's then/else operands.
func branches(children []*Node) Shape {
	if len(children) < 2 {
		return ShapeScalar
	}

	return widest(children[1:])
}

func operator(name, token string, result shapeRule) nodeInfo {
	return nodeInfo{name: name, kind: KindOperator, token: token, minArgs: 2, maxArgs: 2, resultOf: result}
}

func function(name, token string, args int, result shapeRule) nodeInfo {
	return nodeInfo{name: name, kind: KindFunction, token: token, minArgs: args, maxArgs: args, resultOf: result}
}

//nolint:gochecknoglobals // Static classification table.
var nodeInfos = [nodeTypeCount]nodeInfo{
	NodeConstantValue:         {name: "ConstantValue", kind: KindConstant},
	NodeConstantParameter:     {name: "ConstantParameter", kind: KindConstant},
	NodeCurrentValueProperty:  {name: "CurrentValueProperty", kind: KindReference},
	NodeReference:             {name: "Reference", kind: KindReference},
	NodeReferenceProperty:     {name: "ReferenceProperty", kind: KindReference, minArgs: 1, maxArgs: 1},
	NodeStartingValueProperty: {name: "StartingValueProperty", kind: KindReference},
	NodeTargetReference:       {name: "TargetReference", kind: KindReference},
	NodeConditional:           {name: "Conditional", kind: KindConditional, minArgs: 3, maxArgs: 3, resultOf: branches},
	NodeSwizzle:               {name: "Swizzle", kind: KindSwizzle, minArgs: 1, maxArgs: 1},

	NodeAdd:               operator("Add", "+", widest),
	NodeAnd:               operator("And", "&&", fixed(ShapeBoolean)),
	NodeDivide:            operator("Divide", "/", widest),
	NodeEquals:            operator("Equals", "==", fixed(ShapeBoolean)),
	NodeGreaterThan:       operator("GreaterThan", ">", fixed(ShapeBoolean)),
	NodeGreaterThanEquals: operator("GreaterThanEquals", ">=", fixed(ShapeBoolean)),
	NodeLessThan:          operator("LessThan", "<", fixed(ShapeBoolean)),
	NodeLessThanEquals:    operator("LessThanEquals", "<=", fixed(ShapeBoolean)),
	NodeMultiply:          operator("Multiply", "*", widest),
	NodeNot:               function("Not", "!", 1, fixed(ShapeBoolean)),
	NodeNotEquals:         operator("NotEquals", "!=", fixed(ShapeBoolean)),
	NodeOr:                operator("Or", "||", fixed(ShapeBoolean)),
	NodeSubtract:          operator("Subtract", "-", widest),

	NodeAbsolute:                 function("Absolute", "Abs", 1, sameAsFirst),
	NodeAcos:                     function("Acos", "Acos", 1, fixed(ShapeScalar)),
	NodeAsin:                     function("Asin", "Asin", 1, fixed(ShapeScalar)),
	NodeAtan:                     function("Atan", "Atan", 1, fixed(ShapeScalar)),
	NodeCos:                      function("Cos", "Cos", 1, fixed(ShapeScalar)),
	NodeCeil:                     function("Ceil", "Ceil", 1, sameAsFirst),
	NodeClamp:                    function("Clamp", "Clamp", 3, sameAsFirst),
	NodeColorHsl:                 function("ColorHsl", "ColorHsl", 3, fixed(ShapeColor)),
	NodeColorRgb:                 function("ColorRgb", "ColorRgb", 4, fixed(ShapeColor)),
	NodeColorLerp:                function("ColorLerp", "ColorLerp", 3, fixed(ShapeColor)),
	NodeColorLerpHsl:             function("ColorLerpHsl", "ColorLerpHsl", 3, fixed(ShapeColor)),
	NodeColorLerpRgb:             function("ColorLerpRgb", "ColorLerpRgb", 3, fixed(ShapeColor)),
	NodeConcatenate:              function("Concatenate", "Concatenate", 2, fixed(ShapeQuaternion)),
	NodeDistance:                 function("Distance", "Distance", 2, fixed(ShapeScalar)),
	NodeDistanceSquared:          function("DistanceSquared", "DistanceSquared", 2, fixed(ShapeScalar)),
	NodeFloor:                    function("Floor", "Floor", 1, sameAsFirst),
	NodeInverse:                  function("Inverse", "Inverse", 1, sameAsFirst),
	NodeLength:                   function("Length", "Length", 1, fixed(ShapeScalar)),
	NodeLengthSquared:            function("LengthSquared", "LengthSquared", 1, fixed(ShapeScalar)),
	NodeLerp:                     function("Lerp", "Lerp", 3, sameAsFirst),
	NodeLn:                       function("Ln", "Ln", 1, fixed(ShapeScalar)),
	NodeLog10:                    function("Log10", "Log10", 1, fixed(ShapeScalar)),
	NodeMax:                      function("Max", "Max", 2, widest),
	NodeMatrix3x2FromRotation:    function("Matrix3x2FromRotation", "Matrix3x2.CreateRotation", 1, fixed(ShapeMatrix3x2)),
	NodeMatrix3x2FromScale:       function("Matrix3x2FromScale", "Matrix3x2.CreateScale", 1, fixed(ShapeMatrix3x2)),
	NodeMatrix3x2FromSkew:        function("Matrix3x2FromSkew", "Matrix3x2.CreateSkew", 2, fixed(ShapeMatrix3x2)),
	NodeMatrix3x2FromTranslation: function("Matrix3x2FromTranslation", "Matrix3x2.CreateTranslation", 1, fixed(ShapeMatrix3x2)),
	NodeMatrix3x2:                function("Matrix3x2", "Matrix3x2", 6, fixed(ShapeMatrix3x2)),
	NodeMatrix4x4FromAxisAngle:   function("Matrix4x4FromAxisAngle", "Matrix4x4.CreateFromAxisAngle", 2, fixed(ShapeMatrix4x4)),
	NodeMatrix4x4FromScale:       function("Matrix4x4FromScale", "Matrix4x4.CreateScale", 1, fixed(ShapeMatrix4x4)),
	NodeMatrix4x4FromTranslation: function("Matrix4x4FromTranslation", "Matrix4x4.CreateTranslation", 1, fixed(ShapeMatrix4x4)),
	NodeMatrix4x4:                function("Matrix4x4", "Matrix4x4", 16, fixed(ShapeMatrix4x4)),
	NodeMin:                      function("Min", "Min", 2, widest),
	NodeModulus:                  function("Modulus", "Mod", 2, widest),
	NodeNegate:                   function("Negate", "-", 1, sameAsFirst),
	NodeNormalize:                function("Normalize", "Normalize", 1, sameAsFirst),
	NodePow:                      function("Pow", "Pow", 2, sameAsFirst),
	NodeQuaternionFromAxisAngle:  function("QuaternionFromAxisAngle", "Quaternion.CreateFromAxisAngle", 2, fixed(ShapeQuaternion)),
	NodeQuaternion:               function("Quaternion", "Quaternion", 4, fixed(ShapeQuaternion)),
	NodeRound:                    function("Round", "Round", 1, sameAsFirst),
	NodeScale:                    function("Scale", "Scale", 2, sameAsFirst),
	NodeSin:                      function("Sin", "Sin", 1, fixed(ShapeScalar)),
	NodeSlerp:                    function("Slerp", "Slerp", 3, fixed(ShapeQuaternion)),
	NodeSqrt:                     function("Sqrt", "Sqrt", 1, fixed(ShapeScalar)),
	NodeSquare:                   function("Square", "Square", 1, fixed(ShapeScalar)),
	NodeTan:                      function("Tan", "Tan", 1, fixed(ShapeScalar)),
	NodeToDegrees:                function("ToDegrees", "ToDegrees", 1, fixed(ShapeScalar)),
	NodeToRadians:                function("ToRadians", "ToRadians", 1, fixed(ShapeScalar)),
	NodeTransform:                function("Transform", "Transform", 2, sameAsFirst),
	NodeVector2:                  function("Vector2", "Vector2", 2, fixed(ShapeVector2)),
	NodeVector3:                  function("Vector3", "Vector3", 3, fixed(ShapeVector3)),
	NodeVector4:                  function("Vector4", "Vector4", 4, fixed(ShapeVector4)),
}

// nodeTypeAliases are the short spellings accepted by ParseNodeType in
// addition to the canonical names.
//
//nolint:gochecknoglobals // Static lookup table.
var nodeTypeAliases = map[string]NodeType{
	"sub": NodeSubtract,
	"mul": NodeMultiply,
	"div": NodeDivide,
	"mod": NodeModulus,
	"neg": NodeNegate,
	"abs": NodeAbsolute,
	"eq":  NodeEquals,
	"ne":  NodeNotEquals,
	"lt":  NodeLessThan,
	"le":  NodeLessThanEquals,
	"gt":  NodeGreaterThan,
	"ge":  NodeGreaterThanEquals,
	"if":  NodeConditional,
}

//nolint:gochecknoglobals // Built once from nodeInfos.
var nodeTypesByName = buildNodeTypeIndex()

func buildNodeTypeIndex() map[string]NodeType {
	index := make(map[string]NodeType, len(nodeInfos)+len(nodeTypeAliases))

	for nodeType := range nodeTypeCount {
		index[strings.ToLower(nodeInfos[nodeType].name)] = nodeType
	}

	for alias, nodeType := range nodeTypeAliases {
		index[alias] = nodeType
	}

	return index
}

func lookupInfo(nodeType NodeType) (nodeInfo, bool) {
	if nodeType < 0 || nodeType >= nodeTypeCount {
		return nodeInfo{}, false
	}

	return nodeInfos[nodeType], true
}

func mustInfo(nodeType NodeType) nodeInfo {
	info, ok := lookupInfo(nodeType)
	if !ok {
		panic(fmt.Sprintf("expr: unknown node type %d", int(nodeType)))
	}

	return info
}

// Classify returns the operation kind of nodeType.
// It panics on a value outside the NodeType enumeration.
func Classify(nodeType NodeType) OperationKind {
	return mustInfo(nodeType).kind
}

// Token returns the operator symbol or function name emitted for nodeType.
// Constants, references, swizzles and conditionals have structural emission
// and return an empty token.
func Token(nodeType NodeType) string {
	return mustInfo(nodeType).token
}

// Arity returns the accepted child count range of nodeType. A negative max
// means the operation is variadic.
//
//nolint:nonamedreturns // Named results document the pair.
func Arity(nodeType NodeType) (minArgs, maxArgs int) {
	info := mustInfo(nodeType)

	return info.minArgs, info.maxArgs
}

// NodeTypes returns every node type in declaration order.
func NodeTypes() []NodeType {
	types := make([]NodeType, 0, nodeTypeCount)

	for nodeType := range nodeTypeCount {
		types = append(types, nodeType)
	}

	return types
}

// ParseNodeType resolves a case-insensitive operation name ("clamp", "Add",
// "mul") to its NodeType.
func ParseNodeType(name string) (NodeType, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	nodeType, ok := nodeTypesByName[key]
	if !ok {
		if hint, found := suggestNodeType(key); found {
			return 0, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownNodeType, name, hint)
		}

		return 0, fmt.Errorf("%w: %q", ErrUnknownNodeType, name)
	}

	return nodeType, nil
}

// maxSuggestDistance bounds how far a misspelling may be from a hint.
const maxSuggestDistance = 2

// suggestNodeType returns the canonical name closest to key.
func suggestNodeType(key string) (string, bool) {
	lowered := make([]string, nodeTypeCount)
	for nodeType := range nodeTypeCount {
		lowered[nodeType] = strings.ToLower(nodeInfos[nodeType].name)
	}

	closest, ok := levenshtein.Closest(key, lowered, maxSuggestDistance)
	if !ok {
		return "", false
	}

	nodeType := nodeTypesByName[closest]

	return nodeInfos[nodeType].name, true
}

func (nodeType NodeType) String() string {
	info, ok := lookupInfo(nodeType)
	if !ok {
		return fmt.Sprintf("NodeType(%d)", int(nodeType))
	}

	return info.name
}

// checkKindArity enforces the per-kind child count contract.
func checkKindArity(nodeType NodeType, kind OperationKind, count int) error {
	valid := true

	switch kind {
	case KindFunction:
		valid = count >= 1
	case KindOperator:
		valid = count == 2
	case KindConstant:
		valid = count == 0
	case KindSwizzle:
		valid = count == 1
	case KindConditional:
		valid = count == 3
	case KindReference:
		if nodeType == NodeReferenceProperty {
			valid = count == 1
		} else {
			valid = count == 0
		}
	}

	if !valid {
		return fmt.Errorf("%w: %s node %s has %d children", ErrMalformedExpression, kind, nodeType, count)
	}

	return nil
}

// checkArity enforces the operation-specific child count from nodeInfos.
func checkArity(nodeType NodeType, count int) error {
	info := mustInfo(nodeType)

	err := checkKindArity(nodeType, info.kind, count)
	if err != nil {
		return err
	}

	if count < info.minArgs || (info.maxArgs != variadic && count > info.maxArgs) {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrMalformedExpression, nodeType, info.minArgs, count)
	}

	return nil
}

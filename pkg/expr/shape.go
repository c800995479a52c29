package expr

import (
	"fmt"
	"strings"
)

// Shape is the result type of a node.
type Shape int

// Supported result shapes.
const (
	ShapeBoolean Shape = iota
	ShapeScalar
	ShapeVector2
	ShapeVector3
	ShapeVector4
	ShapeColor
	ShapeQuaternion
	ShapeMatrix3x2
	ShapeMatrix4x4

	shapeCount
)

//nolint:gochecknoglobals // Static name table.
var shapeNames = [shapeCount]string{
	ShapeBoolean:    "boolean",
	ShapeScalar:     "scalar",
	ShapeVector2:    "vector2",
	ShapeVector3:    "vector3",
	ShapeVector4:    "vector4",
	ShapeColor:      "color",
	ShapeQuaternion: "quaternion",
	ShapeMatrix3x2:  "matrix3x2",
	ShapeMatrix4x4:  "matrix4x4",
}

// Valid reports whether shape is one of the nine supported shapes.
func (shape Shape) Valid() bool {
	return shape >= 0 && shape < shapeCount
}

func (shape Shape) String() string {
	if !shape.Valid() {
		return fmt.Sprintf("Shape(%d)", int(shape))
	}

	return shapeNames[shape]
}

// Shapes returns all supported shapes in declaration order.
func Shapes() []Shape {
	shapes := make([]Shape, 0, shapeCount)

	for shape := range shapeCount {
		shapes = append(shapes, shape)
	}

	return shapes
}

// ParseShape resolves a case-insensitive shape name. "bool" and "float" are
// accepted for boolean and scalar.
func ParseShape(name string) (Shape, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	switch normalized {
	case "bool":
		return ShapeBoolean, nil
	case "float":
		return ShapeScalar, nil
	}

	for shape, shapeName := range shapeNames {
		if shapeName == normalized {
			return Shape(shape), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidShape, name)
}

// NewNode returns an empty node of the requested shape. Generic builders use
// it to produce a correctly shaped result before filling in the operation.
func NewNode(shape Shape) (*Node, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, shape)
	}

	return &Node{shape: shape}, nil
}

// shapeForChannelCount maps a swizzle selector count to its result shape.
func shapeForChannelCount(count int) (Shape, error) {
	switch count {
	case 1:
		return ShapeScalar, nil
	case 2: //nolint:mnd // Channel counts.
		return ShapeVector2, nil
	case 3: //nolint:mnd // Channel counts.
		return ShapeVector3, nil
	case 4: //nolint:mnd // Channel counts.
		return ShapeVector4, nil
	case 6: //nolint:mnd // Channel counts.
		return ShapeMatrix3x2, nil
	case 16: //nolint:mnd // Channel counts.
		return ShapeMatrix4x4, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidSubchannelCount, count)
	}
}

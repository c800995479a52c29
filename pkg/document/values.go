package document

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
)

// Hex color lengths without the leading '#'.
const (
	hexRGB  = 6
	hexARGB = 8
)

// decodeValue decodes node as a constant of shape.
func decodeValue(shape expr.Shape, node *yaml.Node, path string) (expr.Value, error) {
	switch shape {
	case expr.ShapeBoolean:
		var value bool

		err := node.Decode(&value)
		if err != nil {
			return nil, errorAt(path, node, invalidf("expected a boolean"))
		}

		return expr.Bool(value), nil
	case expr.ShapeScalar:
		var value float32

		err := node.Decode(&value)
		if err != nil {
			return nil, errorAt(path, node, invalidf("expected a number"))
		}

		return expr.Float(value), nil
	case expr.ShapeColor:
		return decodeColor(node, path)
	case expr.ShapeVector2, expr.ShapeVector3, expr.ShapeVector4, expr.ShapeQuaternion,
		expr.ShapeMatrix3x2, expr.ShapeMatrix4x4:
		return decodeComponents(shape, node, path)
	}

	return nil, errorAt(path, node, invalidf("unsupported shape %s", shape))
}

func componentCount(shape expr.Shape) int {
	switch shape {
	case expr.ShapeVector2:
		return 2 //nolint:mnd // Component counts.
	case expr.ShapeVector3:
		return 3 //nolint:mnd // Component counts.
	case expr.ShapeMatrix3x2:
		return 6 //nolint:mnd // Component counts.
	case expr.ShapeMatrix4x4:
		return 16 //nolint:mnd // Component counts.
	default:
		return 4 //nolint:mnd // Component counts.
	}
}

func decodeComponents(shape expr.Shape, node *yaml.Node, path string) (expr.Value, error) {
	var components []float32

	err := node.Decode(&components)
	if err != nil {
		return nil, errorAt(path, node, invalidf("expected a list of numbers"))
	}

	want := componentCount(shape)
	if len(components) != want {
		return nil, errorAt(path, node, invalidf("%s needs %d components, got %d", shape, want, len(components)))
	}

	switch shape {
	case expr.ShapeVector2:
		return expr.Vector2{X: components[0], Y: components[1]}, nil
	case expr.ShapeVector3:
		return expr.Vector3{X: components[0], Y: components[1], Z: components[2]}, nil
	case expr.ShapeVector4:
		return expr.Vector4{X: components[0], Y: components[1], Z: components[2], W: components[3]}, nil
	case expr.ShapeQuaternion:
		return expr.Quaternion{X: components[0], Y: components[1], Z: components[2], W: components[3]}, nil
	case expr.ShapeMatrix3x2:
		return expr.Matrix3x2From([6]float32(components)), nil
	default:
		return expr.Matrix4x4From([16]float32(components)), nil
	}
}

// decodeColor accepts [a, r, g, b] or a "#RRGGBB" / "#AARRGGBB" string.
func decodeColor(node *yaml.Node, path string) (expr.Value, error) {
	if node.Kind == yaml.ScalarNode {
		return parseHexColor(node, path)
	}

	var channels []int

	err := node.Decode(&channels)
	if err != nil || len(channels) != 4 {
		return nil, errorAt(path, node, invalidf("color needs [a, r, g, b]"))
	}

	var bytes [4]uint8

	for i, channel := range channels {
		if channel < 0 || channel > 255 {
			return nil, errorAt(path, node, invalidf("color channel %d out of range", channel))
		}

		bytes[i] = uint8(channel)
	}

	return expr.Color{A: bytes[0], R: bytes[1], G: bytes[2], B: bytes[3]}, nil
}

func parseHexColor(node *yaml.Node, path string) (expr.Value, error) {
	digits := strings.TrimPrefix(node.Value, "#")
	if len(digits) != hexRGB && len(digits) != hexARGB {
		return nil, errorAt(path, node, invalidf("color %q is not #RRGGBB or #AARRGGBB", node.Value))
	}

	packed, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return nil, errorAt(path, node, invalidf("color %q: %v", node.Value, err))
	}

	if len(digits) == hexRGB {
		packed |= 0xFF000000
	}

	return expr.Color{
		A: uint8(packed >> 24),
		R: uint8(packed >> 16),
		G: uint8(packed >> 8),
		B: uint8(packed),
	}, nil
}

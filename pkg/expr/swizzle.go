package expr

import (
	"fmt"
	"slices"
	"strings"
)

//nolint:gochecknoglobals // Static selector sets.
var (
	vectorChannels    = []string{"X", "Y", "Z", "W"}
	colorChannels     = []string{"A", "R", "G", "B"}
	matrix3x2Channels = []string{"_11", "_12", "_21", "_22", "_31", "_32"}
	matrix4x4Channels = []string{
		"_11", "_12", "_13", "_14",
		"_21", "_22", "_23", "_24",
		"_31", "_32", "_33", "_34",
		"_41", "_42", "_43", "_44",
	}
)

// channelsOf returns the selectors a value of shape exposes.
func channelsOf(shape Shape) []string {
	switch shape {
	case ShapeVector2:
		return vectorChannels[:2]
	case ShapeVector3:
		return vectorChannels[:3]
	case ShapeVector4, ShapeQuaternion:
		return vectorChannels
	case ShapeColor:
		return colorChannels
	case ShapeMatrix3x2:
		return matrix3x2Channels
	case ShapeMatrix4x4:
		return matrix4x4Channels
	case ShapeBoolean, ShapeScalar:
		return nil
	}

	return nil
}

// Swizzle selects and reorders channels of source. The channel count picks
// the result shape: 1 scalar, 2 vector2, 3 vector3, 4 vector4, 6 matrix3x2,
// 16 matrix4x4. Selectors are X Y Z W for vectors and quaternions, A R G B
// for colors, and _11 through _44 for matrices.
func Swizzle(source *Node, channels ...string) (*Node, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: swizzle of nil node", ErrMalformedExpression)
	}

	shape, err := shapeForChannelCount(len(channels))
	if err != nil {
		return nil, err
	}

	allowed := channelsOf(source.shape)
	normalized := make([]string, len(channels))

	for i, channel := range channels {
		selector := strings.ToUpper(strings.TrimSpace(channel))

		if !slices.Contains(allowed, selector) {
			return nil, fmt.Errorf("%w: %q on %s", ErrInvalidSubchannel, channel, source.shape)
		}

		normalized[i] = selector
	}

	swizzleNode, err := NewNode(shape)
	if err != nil {
		return nil, err
	}

	swizzleNode.nodeType = NodeSwizzle
	swizzleNode.children = []*Node{source}
	swizzleNode.subchannels = normalized

	return swizzleNode, nil
}

// ParseChannels splits a compact selector string such as "XY" or "_11_22"
// into individual selectors.
func ParseChannels(selectors string) []string {
	var channels []string

	for i := 0; i < len(selectors); {
		if selectors[i] == '_' && i+3 <= len(selectors) {
			channels = append(channels, selectors[i:i+3])
			i += 3

			continue
		}

		channels = append(channels, selectors[i:i+1])
		i++
	}

	return channels
}

func (targetNode *Node) mustSwizzle(channel string) *Node {
	swizzleNode, err := Swizzle(targetNode, channel)
	if err != nil {
		panic(err)
	}

	return swizzleNode
}

// X returns the X channel. It panics when the node has no X channel.
func (targetNode *Node) X() *Node { return targetNode.mustSwizzle("X") }

// Y returns the Y channel. It panics when the node has no Y channel.
func (targetNode *Node) Y() *Node { return targetNode.mustSwizzle("Y") }

// Z returns the Z channel. It panics when the node has no Z channel.
func (targetNode *Node) Z() *Node { return targetNode.mustSwizzle("Z") }

// W returns the W channel. It panics when the node has no W channel.
func (targetNode *Node) W() *Node { return targetNode.mustSwizzle("W") }

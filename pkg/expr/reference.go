package expr

import (
	"fmt"
	"sort"
	"strings"
)

// ReferenceKind identifies the kind of external object a reference node
// points at. It selects the catalog of animatable properties.
type ReferenceKind int

// Reference kinds.
const (
	RefPropertySet ReferenceKind = iota
	RefAmbientLight
	RefColorBrush
	RefDistantLight
	RefDropShadow
	RefInsetClip
	RefInteractionTracker
	RefManipulationPropertySet
	RefNineGridBrush
	RefPointLight
	RefPointerPositionPropertySet
	RefSpotLight
	RefSurfaceBrush
	RefVisual

	refKindCount
)

type referenceKindInfo struct {
	name       string
	properties map[string]Shape
}

//nolint:gochecknoglobals // Static property catalogs.
var referenceKinds = [refKindCount]referenceKindInfo{
	RefPropertySet: {name: "PropertySet"},
	RefAmbientLight: {name: "AmbientLight", properties: map[string]Shape{
		"Color": ShapeColor,
	}},
	RefColorBrush: {name: "ColorBrush", properties: map[string]Shape{
		"Color": ShapeColor,
	}},
	RefDistantLight: {name: "DistantLight", properties: map[string]Shape{
		"Color":     ShapeColor,
		"Direction": ShapeVector3,
	}},
	RefDropShadow: {name: "DropShadow", properties: map[string]Shape{
		"BlurRadius": ShapeScalar,
		"Opacity":    ShapeScalar,
		"Offset":     ShapeVector3,
		"Color":      ShapeColor,
	}},
	RefInsetClip: {name: "InsetClip", properties: map[string]Shape{
		"BottomInset":            ShapeScalar,
		"LeftInset":              ShapeScalar,
		"RightInset":             ShapeScalar,
		"TopInset":               ShapeScalar,
		"RotationAngle":          ShapeScalar,
		"RotationAngleInDegrees": ShapeScalar,
		"AnchorPoint":            ShapeVector2,
		"CenterPoint":            ShapeVector2,
		"Offset":                 ShapeVector2,
		"Scale":                  ShapeVector2,
		"TransformMatrix":        ShapeMatrix3x2,
	}},
	RefInteractionTracker: {name: "InteractionTracker", properties: map[string]Shape{
		"IsPositionRoundingSuggested":       ShapeBoolean,
		"MinPosition":                       ShapeVector3,
		"MaxPosition":                       ShapeVector3,
		"NaturalRestingPosition":            ShapeVector3,
		"Position":                          ShapeVector3,
		"PositionInertiaDecayRate":          ShapeVector3,
		"PositionVelocityInPixelsPerSecond": ShapeVector3,
		"MinScale":                          ShapeScalar,
		"MaxScale":                          ShapeScalar,
		"NaturalRestingScale":               ShapeScalar,
		"Scale":                             ShapeScalar,
		"ScaleInertiaDecayRate":             ShapeScalar,
		"ScaleVelocityInPercentPerSecond":   ShapeScalar,
	}},
	RefManipulationPropertySet: {name: "ManipulationPropertySet", properties: map[string]Shape{
		"CenterPoint": ShapeVector3,
		"Pan":         ShapeVector3,
		"Scale":       ShapeVector3,
		"Translation": ShapeVector3,
		"Matrix":      ShapeMatrix4x4,
	}},
	RefNineGridBrush: {name: "NineGridBrush", properties: map[string]Shape{
		"BottomInset":      ShapeScalar,
		"BottomInsetScale": ShapeScalar,
		"LeftInset":        ShapeScalar,
		"LeftInsetScale":   ShapeScalar,
		"RightInset":       ShapeScalar,
		"RightInsetScale":  ShapeScalar,
		"TopInset":         ShapeScalar,
		"TopInsetScale":    ShapeScalar,
	}},
	RefPointLight: {name: "PointLight", properties: map[string]Shape{
		"ConstantAttenuation":  ShapeScalar,
		"LinearAttenuation":    ShapeScalar,
		"QuadraticAttenuation": ShapeScalar,
		"Intensity":            ShapeScalar,
		"Color":                ShapeColor,
		"Offset":               ShapeVector3,
	}},
	RefPointerPositionPropertySet: {name: "PointerPositionPropertySet", properties: map[string]Shape{
		"Position": ShapeVector3,
	}},
	RefSpotLight: {name: "SpotLight", properties: map[string]Shape{
		"ConstantAttenuation":     ShapeScalar,
		"LinearAttenuation":       ShapeScalar,
		"QuadraticAttenuation":    ShapeScalar,
		"InnerConeAngle":          ShapeScalar,
		"InnerConeAngleInDegrees": ShapeScalar,
		"OuterConeAngle":          ShapeScalar,
		"OuterConeAngleInDegrees": ShapeScalar,
		"InnerConeColor":          ShapeColor,
		"OuterConeColor":          ShapeColor,
		"Direction":               ShapeVector3,
		"Offset":                  ShapeVector3,
	}},
	RefSurfaceBrush: {name: "SurfaceBrush", properties: map[string]Shape{
		"HorizontalAlignmentRatio": ShapeScalar,
		"VerticalAlignmentRatio":   ShapeScalar,
		"BottomInset":              ShapeScalar,
		"LeftInset":                ShapeScalar,
		"RightInset":               ShapeScalar,
		"TopInset":                 ShapeScalar,
		"RotationAngle":            ShapeScalar,
		"RotationAngleInDegrees":   ShapeScalar,
		"AnchorPoint":              ShapeVector2,
		"CenterPoint":              ShapeVector2,
		"Offset":                   ShapeVector2,
		"Scale":                    ShapeVector2,
		"TransformMatrix":          ShapeMatrix3x2,
	}},
	RefVisual: {name: "Visual", properties: map[string]Shape{
		"AnchorPoint":            ShapeVector2,
		"CenterPoint":            ShapeVector3,
		"Offset":                 ShapeVector3,
		"Opacity":                ShapeScalar,
		"Orientation":            ShapeQuaternion,
		"RotationAngle":          ShapeScalar,
		"RotationAngleInDegrees": ShapeScalar,
		"RotationAxis":           ShapeVector3,
		"Scale":                  ShapeVector3,
		"Size":                   ShapeVector2,
		"TransformMatrix":        ShapeMatrix4x4,
	}},
}

func (kind ReferenceKind) String() string {
	if kind < 0 || kind >= refKindCount {
		return fmt.Sprintf("ReferenceKind(%d)", int(kind))
	}

	return referenceKinds[kind].name
}

// ReferenceKinds returns every reference kind in declaration order.
func ReferenceKinds() []ReferenceKind {
	kinds := make([]ReferenceKind, 0, refKindCount)

	for kind := range refKindCount {
		kinds = append(kinds, kind)
	}

	return kinds
}

// ParseReferenceKind resolves a kind name. Matching ignores case and
// underscores, so "drop_shadow" and "DropShadow" are equivalent.
func ParseReferenceKind(name string) (ReferenceKind, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))

	for kind := range refKindCount {
		if strings.ToLower(referenceKinds[kind].name) == normalized {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownReferenceKind, name)
}

// Properties returns the catalog property names of kind, sorted.
func (kind ReferenceKind) Properties() []string {
	if kind < 0 || kind >= refKindCount {
		return nil
	}

	names := make([]string, 0, len(referenceKinds[kind].properties))

	for name := range referenceKinds[kind].properties {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// lookupProperty finds name in the catalog of kind, ignoring case, and
// returns the canonical spelling with its shape.
func (kind ReferenceKind) lookupProperty(name string) (string, Shape, bool) {
	if kind < 0 || kind >= refKindCount {
		return "", 0, false
	}

	catalog := referenceKinds[kind].properties

	if shape, ok := catalog[name]; ok {
		return name, shape, true
	}

	for canonical, shape := range catalog {
		if strings.EqualFold(canonical, name) {
			return canonical, shape, true
		}
	}

	return "", 0, false
}

// Object is an external animation object bound to a reference. The compiler
// never introspects it beyond TypeName and compares objects by identity, so
// implementations must be comparable (pointer types in practice).
type Object interface {
	// TypeName returns the object's type description, e.g.
	// "Windows.UI.Composition.SpriteVisual".
	TypeName() string
}

// fallbackTypeTag names objects whose type description is empty.
const fallbackTypeTag = "Object"

// typeTag derives the short tag used for generated names: the segment after
// the last '.' of the object's type description.
func typeTag(object Object) string {
	name := strings.TrimSpace(object.TypeName())

	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}

	if name == "" {
		return fallbackTypeTag
	}

	return name
}

// Reference returns an unnamed reference to object. The resolver names it
// after the object's type tag, e.g. "SpriteVisual_1".
func Reference(kind ReferenceKind, object Object) *Node {
	return &Node{nodeType: NodeReference, shape: ShapeScalar, refKind: kind, object: object}
}

// NamedReference returns a reference emitted as name. Its object may be
// bound later with SetReferenceParameter.
func NamedReference(kind ReferenceKind, name string) *Node {
	return &Node{nodeType: NodeReference, shape: ShapeScalar, refKind: kind, paramName: name}
}

// NamedObjectReference returns a reference emitted as name and bound to object.
func NamedObjectReference(kind ReferenceKind, name string, object Object) *Node {
	return &Node{nodeType: NodeReference, shape: ShapeScalar, refKind: kind, paramName: name, object: object}
}

// Target returns the reference to the object being animated. It is emitted
// as "this.Target" and never appears in the reference table.
func Target(kind ReferenceKind) *Node {
	return &Node{nodeType: NodeTargetReference, shape: ShapeScalar, refKind: kind}
}

// CurrentValue returns the "this.CurrentValue" keyword of the given shape.
func CurrentValue(shape Shape) *Node {
	return &Node{nodeType: NodeCurrentValueProperty, shape: shape}
}

// StartingValue returns the "this.StartingValue" keyword of the given shape.
func StartingValue(shape Shape) *Node {
	return &Node{nodeType: NodeStartingValueProperty, shape: shape}
}

// Property accesses a catalog property of a reference node, e.g.
// Visual.Offset. Unknown properties return ErrUnknownProperty.
func (targetNode *Node) Property(name string) (*Node, error) {
	if !targetNode.isReferenceOwner() {
		return nil, fmt.Errorf("%w: %s node has no properties", ErrUnknownProperty, targetNode.nodeType)
	}

	canonical, shape, ok := targetNode.refKind.lookupProperty(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownProperty, targetNode.refKind, name)
	}

	return targetNode.property(canonical, shape), nil
}

// MustProperty is like Property but panics on an unknown property.
func (targetNode *Node) MustProperty(name string) *Node {
	propertyNode, err := targetNode.Property(name)
	if err != nil {
		panic(err)
	}

	return propertyNode
}

// TypedProperty accesses a property outside the catalog with an explicit
// shape, as used for custom property set entries.
func (targetNode *Node) TypedProperty(name string, shape Shape) (*Node, error) {
	if !targetNode.isReferenceOwner() {
		return nil, fmt.Errorf("%w: %s node has no properties", ErrUnknownProperty, targetNode.nodeType)
	}

	if name == "" {
		return nil, fmt.Errorf("%w: empty property name", ErrUnknownProperty)
	}

	if !shape.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShape, shape)
	}

	return targetNode.property(name, shape), nil
}

func (targetNode *Node) isReferenceOwner() bool {
	return targetNode.nodeType == NodeReference || targetNode.nodeType == NodeTargetReference
}

func (targetNode *Node) property(name string, shape Shape) *Node {
	return &Node{
		nodeType:     NodeReferenceProperty,
		shape:        shape,
		children:     []*Node{targetNode},
		propertyName: name,
		refKind:      targetNode.refKind,
	}
}

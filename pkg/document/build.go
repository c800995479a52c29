package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
)

// Literal keys name a constant of the matching shape.
//
//nolint:gochecknoglobals // Static lookup table.
var literalKeys = map[string]expr.Shape{
	"bool":       expr.ShapeBoolean,
	"scalar":     expr.ShapeScalar,
	"vector2":    expr.ShapeVector2,
	"vector3":    expr.ShapeVector3,
	"vector4":    expr.ShapeVector4,
	"color":      expr.ShapeColor,
	"quaternion": expr.ShapeQuaternion,
	"matrix3x2":  expr.ShapeMatrix3x2,
	"matrix4x4":  expr.ShapeMatrix4x4,
}

// companionKeys lists, per discriminating key, the other keys a node
// mapping may carry.
//
//nolint:gochecknoglobals // Static lookup table.
var companionKeys = map[string][]string{
	"param":          {"shape", "value"},
	"ref":            {"kind", "name"},
	"ref_param":      {"kind"},
	"target":         nil,
	"current_value":  nil,
	"starting_value": nil,
	"get":            {"from", "shape"},
	"swizzle":        {"of"},
	"if":             {"then", "else"},
	"fn":             {"args"},
}

type builder struct {
	doc *Document
}

type mapping struct {
	keys   []string
	values map[string]*yaml.Node
}

func newMapping(node *yaml.Node) mapping {
	fields := mapping{values: make(map[string]*yaml.Node, len(node.Content)/2)}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		fields.keys = append(fields.keys, key)
		fields.values[key] = node.Content[i+1]
	}

	return fields
}

func (fields mapping) discriminator() (string, error) {
	var found []string

	for _, key := range fields.keys {
		if _, ok := literalKeys[key]; ok {
			found = append(found, key)

			continue
		}

		if _, ok := companionKeys[key]; ok {
			found = append(found, key)
		}
	}

	switch len(found) {
	case 0:
		return "", invalidf("node has none of the known forms (keys: %s)", strings.Join(fields.keys, ", "))
	case 1:
		return found[0], nil
	default:
		return "", invalidf("node mixes forms %s", strings.Join(found, ", "))
	}
}

func (fields mapping) checkCompanions(form string) error {
	allowed := companionKeys[form]

	for _, key := range fields.keys {
		if key == form {
			continue
		}

		known := false

		for _, companion := range allowed {
			if companion == key {
				known = true

				break
			}
		}

		if !known {
			return invalidf("unexpected key %q in %s node", key, form)
		}
	}

	return nil
}

func (fields mapping) require(key string) (*yaml.Node, error) {
	value, ok := fields.values[key]
	if !ok {
		return nil, invalidf("missing %q", key)
	}

	return value, nil
}

func (fields mapping) optionalString(key string) string {
	value, ok := fields.values[key]
	if !ok {
		return ""
	}

	return value.Value
}

// node decodes one expression node at path.
func (b *builder) node(node *yaml.Node, path string) (*expr.Node, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return scalarShorthand(node, path)
	case yaml.MappingNode:
	default:
		return nil, errorAt(path, node, invalidf("expected a mapping, number or boolean"))
	}

	fields := newMapping(node)

	form, err := fields.discriminator()
	if err != nil {
		return nil, errorAt(path, node, err)
	}

	if shape, ok := literalKeys[form]; ok {
		if len(fields.keys) != 1 {
			return nil, errorAt(path, node, invalidf("literal %s node takes no other keys", form))
		}

		value, err := decodeValue(shape, fields.values[form], path+"."+form)
		if err != nil {
			return nil, err
		}

		return expr.Constant(value), nil
	}

	err = fields.checkCompanions(form)
	if err != nil {
		return nil, errorAt(path, node, err)
	}

	built, err := b.form(form, fields, path)
	if err != nil {
		return nil, errorAt(path, node, err)
	}

	return built, nil
}

func (b *builder) form(form string, fields mapping, path string) (*expr.Node, error) {
	switch form {
	case "param":
		return b.param(fields, path)
	case "ref":
		return b.ref(fields)
	case "ref_param":
		kind, err := parseKind(fields.optionalString("kind"))
		if err != nil {
			return nil, err
		}

		return expr.NamedReference(kind, fields.values["ref_param"].Value), nil
	case "target":
		kind, err := parseKind(fields.values["target"].Value)
		if err != nil {
			return nil, err
		}

		return expr.Target(kind), nil
	case "current_value", "starting_value":
		shape, err := expr.ParseShape(fields.values[form].Value)
		if err != nil {
			return nil, err
		}

		if form == "current_value" {
			return expr.CurrentValue(shape), nil
		}

		return expr.StartingValue(shape), nil
	case "get":
		return b.property(fields, path)
	case "swizzle":
		return b.swizzle(fields, path)
	case "if":
		return b.conditional(fields, path)
	case "fn":
		return b.function(fields, path)
	}

	return nil, invalidf("unsupported form %q", form)
}

func (b *builder) param(fields mapping, path string) (*expr.Node, error) {
	name := fields.values["param"].Value

	valueNode, hasValue := fields.values["value"]
	shapeName := fields.optionalString("shape")

	if shapeName == "" && !hasValue {
		return nil, invalidf("param %q needs a shape or a value", name)
	}

	shape := expr.ShapeScalar

	if shapeName != "" {
		parsed, err := expr.ParseShape(shapeName)
		if err != nil {
			return nil, err
		}

		shape = parsed
	}

	if !hasValue {
		return expr.ConstantParameter(name, shape)
	}

	if shapeName == "" {
		shape = inferShape(valueNode)
	}

	value, err := decodeValue(shape, valueNode, path+".value")
	if err != nil {
		return nil, err
	}

	return expr.NamedConstant(name, value)
}

func (b *builder) ref(fields mapping) (*expr.Node, error) {
	id := fields.values["ref"].Value

	object, ok := b.doc.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObject, id)
	}

	kind := object.Kind

	if kindName := fields.optionalString("kind"); kindName != "" {
		parsed, err := parseKind(kindName)
		if err != nil {
			return nil, err
		}

		kind = parsed
	}

	if name := fields.optionalString("name"); name != "" {
		return expr.NamedObjectReference(kind, name, object), nil
	}

	return expr.Reference(kind, object), nil
}

func (b *builder) property(fields mapping, path string) (*expr.Node, error) {
	fromNode, err := fields.require("from")
	if err != nil {
		return nil, err
	}

	owner, err := b.node(fromNode, path+".from")
	if err != nil {
		return nil, err
	}

	name := fields.values["get"].Value

	if shapeName := fields.optionalString("shape"); shapeName != "" {
		shape, err := expr.ParseShape(shapeName)
		if err != nil {
			return nil, err
		}

		return owner.TypedProperty(name, shape)
	}

	return owner.Property(name)
}

func (b *builder) swizzle(fields mapping, path string) (*expr.Node, error) {
	ofNode, err := fields.require("of")
	if err != nil {
		return nil, err
	}

	source, err := b.node(ofNode, path+".of")
	if err != nil {
		return nil, err
	}

	selectors := fields.values["swizzle"]

	var channels []string

	switch selectors.Kind {
	case yaml.ScalarNode:
		channels = expr.ParseChannels(selectors.Value)
	case yaml.SequenceNode:
		err = selectors.Decode(&channels)
		if err != nil {
			return nil, invalidf("swizzle selectors: %v", err)
		}
	default:
		return nil, invalidf("swizzle selectors must be a string or a list")
	}

	return expr.Swizzle(source, channels...)
}

func (b *builder) conditional(fields mapping, path string) (*expr.Node, error) {
	parts := make([]*expr.Node, 0, 3) //nolint:mnd // Condition and two branches.

	for _, key := range []string{"if", "then", "else"} {
		partNode, err := fields.require(key)
		if err != nil {
			return nil, err
		}

		part, err := b.node(partNode, path+"."+key)
		if err != nil {
			return nil, err
		}

		parts = append(parts, part)
	}

	return expr.Apply(expr.NodeConditional, parts...)
}

func (b *builder) function(fields mapping, path string) (*expr.Node, error) {
	nodeType, err := expr.ParseNodeType(fields.values["fn"].Value)
	if err != nil {
		return nil, err
	}

	argsNode, err := fields.require("args")
	if err != nil {
		return nil, err
	}

	if argsNode.Kind != yaml.SequenceNode {
		return nil, invalidf("args must be a list")
	}

	args := make([]*expr.Node, 0, len(argsNode.Content))

	for i, argNode := range argsNode.Content {
		arg, err := b.node(argNode, path+".args["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}

	return expr.Apply(nodeType, args...)
}

func parseKind(name string) (expr.ReferenceKind, error) {
	if name == "" {
		return expr.RefPropertySet, nil
	}

	return expr.ParseReferenceKind(name)
}

// scalarShorthand accepts bare numbers and booleans as literals.
func scalarShorthand(node *yaml.Node, path string) (*expr.Node, error) {
	switch node.Tag {
	case "!!bool":
		var value bool

		err := node.Decode(&value)
		if err != nil {
			return nil, errorAt(path, node, invalidf("%v", err))
		}

		return expr.Boolean(value), nil
	case "!!int", "!!float":
		var value float32

		err := node.Decode(&value)
		if err != nil {
			return nil, errorAt(path, node, invalidf("%v", err))
		}

		return expr.Scalar(value), nil
	}

	return nil, errorAt(path, node, invalidf("expected a node, got %q", node.Value))
}

// decodeLiteralNode decodes a constants entry: a literal mapping such as
// {vector3: [0, 0, 1]} or a bare number or boolean.
func decodeLiteralNode(node *yaml.Node, path string) (expr.Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return decodeValue(inferShape(node), node, path)
	case yaml.MappingNode:
	default:
		return nil, errorAt(path, node, invalidf("constant must be a literal"))
	}

	fields := newMapping(node)
	if len(fields.keys) != 1 {
		return nil, errorAt(path, node, invalidf("constant must have exactly one literal key"))
	}

	shape, ok := literalKeys[fields.keys[0]]
	if !ok {
		known := make([]string, 0, len(literalKeys))
		for key := range literalKeys {
			known = append(known, key)
		}

		sort.Strings(known)

		return nil, errorAt(path, node, invalidf("unknown literal %q (want one of %s)",
			fields.keys[0], strings.Join(known, ", ")))
	}

	return decodeValue(shape, fields.values[fields.keys[0]], path+"."+fields.keys[0])
}

// inferShape guesses the shape of an untyped value: booleans, numbers,
// and lists of 2, 3, 4, 6 or 16 numbers.
func inferShape(node *yaml.Node) expr.Shape {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!bool" {
			return expr.ShapeBoolean
		}

		return expr.ShapeScalar
	}

	switch len(node.Content) {
	case 2: //nolint:mnd // Component counts.
		return expr.ShapeVector2
	case 3: //nolint:mnd // Component counts.
		return expr.ShapeVector3
	case 6: //nolint:mnd // Component counts.
		return expr.ShapeMatrix3x2
	case 16: //nolint:mnd // Component counts.
		return expr.ShapeMatrix4x4
	default:
		return expr.ShapeVector4
	}
}

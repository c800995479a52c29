// Package document decodes declarative expression documents written in YAML
// or JSON into expression trees, and validates them against the embedded
// document schema.
package document

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
)

// Sentinel errors.
var (
	// ErrInvalidDocument reports a document that does not follow the node forms.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnknownObject reports a ref to an object id missing from objects.
	ErrUnknownObject = errors.New("unknown object")
	// ErrEmptyDocument reports input without any content.
	ErrEmptyDocument = errors.New("empty document")
)

// PathError locates a decoding failure inside the document.
type PathError struct {
	Path string
	Line int
	Err  error
}

func (pathErr *PathError) Error() string {
	if pathErr.Line > 0 {
		return fmt.Sprintf("%s (line %d): %v", pathErr.Path, pathErr.Line, pathErr.Err)
	}

	return fmt.Sprintf("%s: %v", pathErr.Path, pathErr.Err)
}

func (pathErr *PathError) Unwrap() error {
	return pathErr.Err
}

func errorAt(path string, node *yaml.Node, err error) error {
	var existing *PathError
	if errors.As(err, &existing) {
		return err
	}

	line := 0
	if node != nil {
		line = node.Line
	}

	return &PathError{Path: path, Line: line, Err: err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}

// Object is an external object declared in a document. Every ref to the same
// id resolves to the same *Object, so references deduplicate by id.
type Object struct {
	ID   string
	Type string
	Kind expr.ReferenceKind
}

// TypeName returns the declared type description.
func (object *Object) TypeName() string {
	return object.Type
}

type objectSpec struct {
	Type string `yaml:"type"`
	Kind string `yaml:"kind"`
}

type rawDocument struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Objects     yaml.Node `yaml:"objects"`
	Constants   yaml.Node `yaml:"constants"`
	Expression  yaml.Node `yaml:"expression"`
}

type constantSpec struct {
	name  string
	value expr.Value
}

// Document is a decoded expression document.
type Document struct {
	Name        string
	Description string

	objects     map[string]*Object
	objectOrder []string
	constants   []constantSpec
	expression  *yaml.Node
}

// Parse decodes a YAML or JSON document. Objects and document constants are
// decoded eagerly; the expression is decoded by Build.
func Parse(data []byte) (*Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyDocument
	}

	var raw rawDocument

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if raw.Expression.Kind == 0 {
		return nil, errorAt("expression", nil, invalidf("missing expression"))
	}

	doc := &Document{
		Name:        raw.Name,
		Description: raw.Description,
		objects:     make(map[string]*Object),
		expression:  &raw.Expression,
	}

	err = doc.parseObjects(&raw.Objects)
	if err != nil {
		return nil, err
	}

	err = doc.parseConstants(&raw.Constants)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (doc *Document) parseObjects(objects *yaml.Node) error {
	if objects.Kind == 0 {
		return nil
	}

	if objects.Kind != yaml.MappingNode {
		return errorAt("objects", objects, invalidf("objects must be a mapping"))
	}

	for i := 0; i+1 < len(objects.Content); i += 2 {
		id := objects.Content[i].Value
		path := "objects." + id

		var spec objectSpec

		err := objects.Content[i+1].Decode(&spec)
		if err != nil {
			return errorAt(path, objects.Content[i+1], invalidf("%v", err))
		}

		if spec.Type == "" {
			return errorAt(path, objects.Content[i+1], invalidf("object type is required"))
		}

		kind, err := objectKind(spec)
		if err != nil {
			return errorAt(path+".kind", objects.Content[i+1], err)
		}

		doc.objects[id] = &Object{ID: id, Type: spec.Type, Kind: kind}
		doc.objectOrder = append(doc.objectOrder, id)
	}

	return nil
}

// objectKind returns the declared kind, or infers it from the type name:
// "Windows.UI.Composition.CompositionColorBrush" is a ColorBrush and any
// "*Visual" type is a Visual. Unrecognized types are property sets.
func objectKind(spec objectSpec) (expr.ReferenceKind, error) {
	if spec.Kind != "" {
		return expr.ParseReferenceKind(spec.Kind)
	}

	tag := spec.Type
	if idx := strings.LastIndexByte(tag, '.'); idx >= 0 {
		tag = tag[idx+1:]
	}

	for _, candidate := range []string{tag, strings.TrimPrefix(tag, "Composition")} {
		kind, err := expr.ParseReferenceKind(candidate)
		if err == nil {
			return kind, nil
		}
	}

	if strings.HasSuffix(tag, "Visual") {
		return expr.RefVisual, nil
	}

	return expr.RefPropertySet, nil
}

func (doc *Document) parseConstants(constants *yaml.Node) error {
	if constants.Kind == 0 {
		return nil
	}

	if constants.Kind != yaml.MappingNode {
		return errorAt("constants", constants, invalidf("constants must be a mapping"))
	}

	for i := 0; i+1 < len(constants.Content); i += 2 {
		name := constants.Content[i].Value
		path := "constants." + name

		value, err := decodeLiteralNode(constants.Content[i+1], path)
		if err != nil {
			return err
		}

		doc.constants = append(doc.constants, constantSpec{name: name, value: value})
	}

	return nil
}

// Objects returns the declared objects in document order.
func (doc *Document) Objects() []*Object {
	out := make([]*Object, 0, len(doc.objectOrder))

	for _, id := range doc.objectOrder {
		out = append(out, doc.objects[id])
	}

	return out
}

// Object returns the object declared under id.
func (doc *Document) Object(id string) (*Object, bool) {
	object, ok := doc.objects[id]

	return object, ok
}

// Build decodes the expression into a fresh tree and declares the document
// constants on its root. Objects are shared between builds of one Document.
func (doc *Document) Build() (*expr.Node, error) {
	root, err := (&builder{doc: doc}).node(doc.expression, "expression")
	if err != nil {
		return nil, err
	}

	for _, constant := range doc.constants {
		err = root.SetParameter(constant.name, constant.value)
		if err != nil {
			return nil, errorAt("constants."+constant.name, nil, err)
		}
	}

	return root, nil
}

// Compile parses data, builds the tree and compiles it.
func Compile(data []byte) (*expr.Compiled, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	root, err := doc.Build()
	if err != nil {
		return nil, err
	}

	return expr.Compile(root)
}

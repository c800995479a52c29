// Package expr builds typed expression trees for a composition animation
// engine and compiles them into an expression string plus the reference and
// constant parameter tables the engine binds to it.
package expr

import (
	"fmt"
	"slices"
	"sync"
)

// Node is a typed expression tree node.
//
// A node is immutable after construction except for its constant parameters,
// the object bound to a named reference, the name the resolver synthesizes
// for an unnamed reference, and disposal. A node may be shared by several
// parents and by several roots.
type Node struct {
	nodeType     NodeType
	shape        Shape
	children     []*Node
	subchannels  []string
	propertyName string
	value        Value
	refKind      ReferenceKind

	// mu guards the mutable fields below.
	mu          sync.Mutex
	paramName   string
	object      Object
	autoNamed   bool
	constParams ParamTable
	disposed    bool

	// resolveMu guards the memoized resolution of the tree rooted here.
	resolveMu sync.Mutex
	resolved  *Resolved
}

// Type returns the node type.
func (targetNode *Node) Type() NodeType { return targetNode.nodeType }

// Shape returns the result shape.
func (targetNode *Node) Shape() Shape { return targetNode.shape }

// Kind returns the operation kind of the node type.
func (targetNode *Node) Kind() OperationKind { return Classify(targetNode.nodeType) }

// Children returns a copy of the operands in order.
func (targetNode *Node) Children() []*Node {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	return slices.Clone(targetNode.children)
}

// Subchannels returns the swizzle selectors of a swizzle node.
func (targetNode *Node) Subchannels() []string { return slices.Clone(targetNode.subchannels) }

// PropertyName returns the accessed property of a reference property node.
func (targetNode *Node) PropertyName() string { return targetNode.propertyName }

// ReferenceKind returns the kind of a reference or reference property node.
func (targetNode *Node) ReferenceKind() ReferenceKind { return targetNode.refKind }

// Value returns the literal of a constant value node.
func (targetNode *Node) Value() Value { return targetNode.value }

// ParamName returns the declared or resolved parameter name, if any.
func (targetNode *Node) ParamName() string {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	return targetNode.paramName
}

// Object returns the external object bound to a reference node.
func (targetNode *Node) Object() Object {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	return targetNode.object
}

// ConstantParameters returns the constants declared directly on this node.
func (targetNode *Node) ConstantParameters() []Param {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	return targetNode.constParams.Params()
}

// snapshot reads the mutable naming state under the node lock.
func (targetNode *Node) snapshot() (string, Object, bool) {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	return targetNode.paramName, targetNode.object, targetNode.autoNamed
}

// claimName writes a synthesized name onto an unnamed reference and returns
// the name the node carries afterwards. A node that already has a name
// keeps it.
func (targetNode *Node) claimName(name string) string {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	if targetNode.paramName != "" {
		return targetNode.paramName
	}

	targetNode.paramName = name
	targetNode.autoNamed = true

	return name
}

// SetParameter declares the constant name with value on this node. When this
// node has already been resolved as a root, the cached constant table is
// updated as well.
func (targetNode *Node) SetParameter(name string, value Value) error {
	if value == nil {
		return fmt.Errorf("%w: nil value for %q", ErrUnsupportedParameterType, name)
	}

	targetNode.mu.Lock()

	if targetNode.disposed {
		targetNode.mu.Unlock()

		return ErrDisposed
	}

	targetNode.constParams.Set(name, value)
	targetNode.mu.Unlock()

	targetNode.resolveMu.Lock()
	defer targetNode.resolveMu.Unlock()

	if targetNode.resolved != nil {
		targetNode.resolved.Constants.Set(name, value)
	}

	return nil
}

// SetBooleanParameter declares a boolean constant.
func (targetNode *Node) SetBooleanParameter(name string, value bool) error {
	return targetNode.SetParameter(name, Bool(value))
}

// SetScalarParameter declares a scalar constant.
func (targetNode *Node) SetScalarParameter(name string, value float32) error {
	return targetNode.SetParameter(name, Float(value))
}

// SetVector2Parameter declares a vector2 constant.
func (targetNode *Node) SetVector2Parameter(name string, value Vector2) error {
	return targetNode.SetParameter(name, value)
}

// SetVector3Parameter declares a vector3 constant.
func (targetNode *Node) SetVector3Parameter(name string, value Vector3) error {
	return targetNode.SetParameter(name, value)
}

// SetVector4Parameter declares a vector4 constant.
func (targetNode *Node) SetVector4Parameter(name string, value Vector4) error {
	return targetNode.SetParameter(name, value)
}

// SetColorParameter declares a color constant.
func (targetNode *Node) SetColorParameter(name string, value Color) error {
	return targetNode.SetParameter(name, value)
}

// SetQuaternionParameter declares a quaternion constant.
func (targetNode *Node) SetQuaternionParameter(name string, value Quaternion) error {
	return targetNode.SetParameter(name, value)
}

// SetMatrix3x2Parameter declares a matrix3x2 constant.
func (targetNode *Node) SetMatrix3x2Parameter(name string, value Matrix3x2) error {
	return targetNode.SetParameter(name, value)
}

// SetMatrix4x4Parameter declares a matrix4x4 constant.
func (targetNode *Node) SetMatrix4x4Parameter(name string, value Matrix4x4) error {
	return targetNode.SetParameter(name, value)
}

// SetReferenceParameter binds object to every reference named name in the
// tree rooted at this node. Names compare case-insensitively. When the tree
// has already been resolved the cached reference table is updated in place.
func (targetNode *Node) SetReferenceParameter(name string, object Object) error {
	if targetNode.isDisposed() {
		return ErrDisposed
	}

	key := foldName(name)
	found := false

	walk(targetNode, func(current *Node) {
		if current.nodeType != NodeReference {
			return
		}

		current.mu.Lock()
		if foldName(current.paramName) == key {
			current.object = object
			found = true
		}
		current.mu.Unlock()
	})

	targetNode.resolveMu.Lock()
	defer targetNode.resolveMu.Unlock()

	if targetNode.resolved != nil {
		for i := range targetNode.resolved.References {
			if foldName(targetNode.resolved.References[i].Name) == key {
				targetNode.resolved.References[i].Object = object
				found = true
			}
		}
	}

	if !found {
		return fmt.Errorf("%w: no reference named %q", ErrUnknownReference, name)
	}

	return nil
}

// Dispose releases the node's children and cached resolution. Children are
// not disposed because other trees may still share them.
func (targetNode *Node) Dispose() {
	targetNode.mu.Lock()
	targetNode.children = nil
	targetNode.disposed = true
	targetNode.mu.Unlock()

	targetNode.resolveMu.Lock()
	targetNode.resolved = nil
	targetNode.resolveMu.Unlock()
}

func (targetNode *Node) isDisposed() bool {
	targetNode.mu.Lock()
	defer targetNode.mu.Unlock()

	return targetNode.disposed
}

// walk visits every distinct node of the tree in pre-order, children left
// to right. Shared nodes are visited once.
func walk(root *Node, visit func(*Node)) {
	visited := make(map[*Node]struct{})
	stack := []*Node{root}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == nil {
			continue
		}

		if _, seen := visited[current]; seen {
			continue
		}

		visited[current] = struct{}{}

		visit(current)

		children := current.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Count returns the number of distinct nodes in the tree rooted at root.
func Count(root *Node) int {
	count := 0

	walk(root, func(*Node) { count++ })

	return count
}

package expr

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
)

// namingMu serializes the naming step of every resolution pass. A reference
// node shared by several roots is named by whichever pass claims it first,
// and later passes must observe that name before they number anything.
var namingMu sync.Mutex

// ReferenceInfo is one entry of the reference table. A nil Object marks a
// named parameter the caller still has to bind.
type ReferenceInfo struct {
	Name   string
	Object Object
}

// Resolved is the compilation state of one root: the distinct references in
// first-encounter order and the merged constant table.
type Resolved struct {
	References []ReferenceInfo
	Constants  *ParamTable
}

// Resolve discovers references and merges constants for the tree rooted at
// root. The result is memoized on root; concurrent callers compute it once.
// Failed resolutions are not cached. Each call returns its own copy, so a
// later Set*Parameter on root does not change a result already handed out.
func Resolve(root *Node) (*Resolved, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrMalformedExpression)
	}

	if root.isDisposed() {
		return nil, ErrDisposed
	}

	root.resolveMu.Lock()
	defer root.resolveMu.Unlock()

	if root.resolved != nil {
		return root.resolved.clone(), nil
	}

	resolved, err := newResolver().run(root)
	if err != nil {
		return nil, err
	}

	root.resolved = resolved

	return resolved.clone(), nil
}

func (resolved *Resolved) clone() *Resolved {
	return &Resolved{
		References: slices.Clone(resolved.References),
		Constants:  resolved.Constants.clone(),
	}
}

type resolver struct {
	constants  *ParamTable
	references []*Node
	reserved   map[string]struct{}
	generated  map[Object]string
	counters   map[string]int
}

func newResolver() *resolver {
	return &resolver{
		constants: &ParamTable{},
		reserved:  make(map[string]struct{}),
		generated: make(map[Object]string),
		counters:  make(map[string]int),
	}
}

// run resolves the tree in three steps: collect, name, build the table.
//
// Traversal is pre-order with children left to right, and each node's own
// constants are merged before its children's. The first declaration of a
// constant name wins and later ones are dropped.
func (r *resolver) run(root *Node) (*Resolved, error) {
	walk(root, r.visit)

	namingMu.Lock()
	defer namingMu.Unlock()

	// Names already in use are reserved before any name is generated.
	for _, referenceNode := range r.references {
		name, object, autoNamed := referenceNode.snapshot()
		if name == "" {
			if object == nil {
				return nil, fmt.Errorf("%w: %s reference has neither a name nor an object",
					ErrInternalConsistency, referenceNode.refKind)
			}

			continue
		}

		r.reserve(name)

		if autoNamed && object != nil {
			if _, ok := r.generated[object]; !ok {
				r.generated[object] = name
			}
		}
	}

	table := make([]ReferenceInfo, 0, len(r.references))
	positions := make(map[string]int, len(r.references))

	for _, referenceNode := range r.references {
		name, object, _ := referenceNode.snapshot()

		if name == "" {
			name = r.claim(referenceNode, object)
		}

		key := foldName(name)

		if pos, ok := positions[key]; ok {
			if table[pos].Object == nil && object != nil {
				table[pos].Object = object
			}

			continue
		}

		positions[key] = len(table)
		table = append(table, ReferenceInfo{Name: name, Object: object})
	}

	return &Resolved{References: table, Constants: r.constants}, nil
}

// claim names an unnamed reference node and returns the name the node ends
// up carrying, which is the one the table must use.
func (r *resolver) claim(referenceNode *Node, object Object) string {
	candidate := r.nameFor(object)

	name := referenceNode.claimName(candidate)
	if name != candidate {
		r.reserve(name)
		r.generated[object] = name
	}

	return name
}

func (r *resolver) visit(current *Node) {
	current.mu.Lock()
	for _, param := range current.constParams.params {
		r.constants.SetIfAbsent(param.Name, param.Value)
		r.reserve(param.Name)
	}

	declared := current.paramName
	current.mu.Unlock()

	switch current.nodeType {
	case NodeReference:
		r.references = append(r.references, current)
	case NodeConstantParameter:
		r.reserve(declared)
	default:
	}
}

func (r *resolver) reserve(name string) {
	if name != "" {
		r.reserved[foldName(name)] = struct{}{}
	}
}

// nameFor returns the generated name of object, allocating the next free
// "<Tag>_<n>" on first sight. Counters are per tag and local to this pass.
func (r *resolver) nameFor(object Object) string {
	if name, ok := r.generated[object]; ok {
		return name
	}

	tag := typeTag(object)

	for {
		r.counters[tag]++
		candidate := tag + "_" + strconv.Itoa(r.counters[tag])

		if _, taken := r.reserved[foldName(candidate)]; taken {
			continue
		}

		r.reserve(candidate)
		r.generated[object] = candidate

		return candidate
	}
}

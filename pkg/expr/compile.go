package expr

// CompiledReference is a reference table entry in serializable form.
type CompiledReference struct {
	Name       string `json:"name"`
	ObjectType string `json:"object_type,omitempty"`
}

// CompiledConstant is a constant table entry in serializable form.
type CompiledConstant struct {
	Name    string `json:"name"`
	Shape   string `json:"shape"`
	Literal string `json:"literal"`
}

// Compiled is the output of compiling one root.
type Compiled struct {
	Expression string              `json:"expression"`
	References []CompiledReference `json:"references"`
	Constants  []CompiledConstant  `json:"constants"`
	NodeCount  int                 `json:"node_count"`
}

// Compile resolves and serializes root.
func Compile(root *Node) (*Compiled, error) {
	expression, err := root.ExpressionString()
	if err != nil {
		return nil, err
	}

	resolved, err := Resolve(root)
	if err != nil {
		return nil, err
	}

	compiled := &Compiled{
		Expression: expression,
		References: make([]CompiledReference, 0, len(resolved.References)),
		Constants:  make([]CompiledConstant, 0, resolved.Constants.Len()),
		NodeCount:  Count(root),
	}

	for _, reference := range resolved.References {
		entry := CompiledReference{Name: reference.Name}
		if reference.Object != nil {
			entry.ObjectType = reference.Object.TypeName()
		}

		compiled.References = append(compiled.References, entry)
	}

	for _, param := range resolved.Constants.Params() {
		compiled.Constants = append(compiled.Constants, CompiledConstant{
			Name:    param.Name,
			Shape:   param.Value.Shape().String(),
			Literal: param.Value.Literal(),
		})
	}

	return compiled, nil
}

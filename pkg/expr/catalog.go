package expr

// Operation describes one node type that Apply accepts.
type Operation struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Token   string `json:"token"`
	MinArgs int    `json:"min_args"`
	// MaxArgs is -1 for variadic operations.
	MaxArgs int `json:"max_args"`
}

// Catalog lists the operators, functions and the conditional in
// declaration order.
func Catalog() []Operation {
	operations := make([]Operation, 0, nodeTypeCount)

	for _, nodeType := range NodeTypes() {
		info := mustInfo(nodeType)

		switch info.kind {
		case KindFunction, KindOperator, KindConditional:
		default:
			continue
		}

		operations = append(operations, Operation{
			Name:    info.name,
			Kind:    info.kind.String(),
			Token:   info.token,
			MinArgs: info.minArgs,
			MaxArgs: info.maxArgs,
		})
	}

	return operations
}

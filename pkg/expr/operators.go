package expr

// Add returns (left + right).
func Add(left, right *Node) *Node { return build(NodeAdd, left, right) }

// Sub returns (left - right).
func Sub(left, right *Node) *Node { return build(NodeSubtract, left, right) }

// Mul returns (left * right). Scaling a vector by a scalar keeps the vector shape.
func Mul(left, right *Node) *Node { return build(NodeMultiply, left, right) }

// Div returns (left / right).
func Div(left, right *Node) *Node { return build(NodeDivide, left, right) }

// Mod returns Mod(left,right).
func Mod(left, right *Node) *Node { return build(NodeModulus, left, right) }

// Neg returns -(operand).
func Neg(operand *Node) *Node { return build(NodeNegate, operand) }

// Not returns !(operand).
func Not(operand *Node) *Node { return build(NodeNot, operand) }

// And returns (left && right).
func And(left, right *Node) *Node { return build(NodeAnd, left, right) }

// Or returns (left || right).
func Or(left, right *Node) *Node { return build(NodeOr, left, right) }

// Eq returns (left == right).
func Eq(left, right *Node) *Node { return build(NodeEquals, left, right) }

// Ne returns (left != right).
func Ne(left, right *Node) *Node { return build(NodeNotEquals, left, right) }

// Lt returns (left < right).
func Lt(left, right *Node) *Node { return build(NodeLessThan, left, right) }

// Le returns (left <= right).
func Le(left, right *Node) *Node { return build(NodeLessThanEquals, left, right) }

// Gt returns (left > right).
func Gt(left, right *Node) *Node { return build(NodeGreaterThan, left, right) }

// Ge returns (left >= right).
func Ge(left, right *Node) *Node { return build(NodeGreaterThanEquals, left, right) }

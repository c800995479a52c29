package expr

import (
	"fmt"
	"strings"
)

// Fixed literals of the keyword references.
const (
	TargetLiteral        = "this.Target"
	CurrentValueLiteral  = "this.CurrentValue"
	StartingValueLiteral = "this.StartingValue"
)

// ExpressionString resolves the tree rooted at this node and renders it in
// the expression language. Structural violations return
// ErrMalformedExpression and no partial output.
func (targetNode *Node) ExpressionString() (string, error) {
	_, err := Resolve(targetNode)
	if err != nil {
		return "", err
	}

	return Serialize(targetNode)
}

// Serialize renders node without resolving it first. Unnamed references
// are reported as malformed, so callers normally use ExpressionString.
func Serialize(node *Node) (string, error) {
	var sb strings.Builder

	err := serializeNode(&sb, node)
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}

func serializeNode(sb *strings.Builder, node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: nil node", ErrMalformedExpression)
	}

	info, ok := lookupInfo(node.nodeType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMalformedExpression, node.nodeType)
	}

	children := node.Children()

	err := checkKindArity(node.nodeType, info.kind, len(children))
	if err != nil {
		return err
	}

	switch info.kind {
	case KindFunction:
		return serializeFunction(sb, info.token, children)
	case KindOperator:
		return serializeOperator(sb, info.token, children)
	case KindConstant:
		return serializeConstant(sb, node)
	case KindSwizzle:
		return serializeSwizzle(sb, node, children[0])
	case KindReference:
		return serializeReference(sb, node, children)
	case KindConditional:
		return serializeConditional(sb, children)
	default:
		return fmt.Errorf("%w: unknown operation kind %s", ErrMalformedExpression, info.kind)
	}
}

func serializeFunction(sb *strings.Builder, token string, args []*Node) error {
	sb.WriteString(token)
	sb.WriteByte('(')

	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(',')
		}

		err := serializeNode(sb, arg)
		if err != nil {
			return err
		}
	}

	sb.WriteByte(')')

	return nil
}

func serializeOperator(sb *strings.Builder, token string, operands []*Node) error {
	sb.WriteByte('(')

	err := serializeNode(sb, operands[0])
	if err != nil {
		return err
	}

	sb.WriteByte(' ')
	sb.WriteString(token)
	sb.WriteByte(' ')

	err = serializeNode(sb, operands[1])
	if err != nil {
		return err
	}

	sb.WriteByte(')')

	return nil
}

func serializeConstant(sb *strings.Builder, node *Node) error {
	if name := node.ParamName(); name != "" {
		sb.WriteString(name)

		return nil
	}

	if node.value == nil {
		return fmt.Errorf("%w: %s has neither a name nor a value", ErrMalformedExpression, node.nodeType)
	}

	sb.WriteString(node.value.Literal())

	return nil
}

func serializeSwizzle(sb *strings.Builder, node, source *Node) error {
	if len(node.subchannels) == 0 {
		return fmt.Errorf("%w: swizzle without subchannels", ErrMalformedExpression)
	}

	err := serializeNode(sb, source)
	if err != nil {
		return err
	}

	sb.WriteByte('.')

	for _, channel := range node.subchannels {
		sb.WriteString(channel)
	}

	return nil
}

func serializeReference(sb *strings.Builder, node *Node, children []*Node) error {
	switch node.nodeType {
	case NodeTargetReference:
		sb.WriteString(TargetLiteral)
	case NodeCurrentValueProperty:
		sb.WriteString(CurrentValueLiteral)
	case NodeStartingValueProperty:
		sb.WriteString(StartingValueLiteral)
	case NodeReferenceProperty:
		if node.propertyName == "" {
			return fmt.Errorf("%w: property access without a property name", ErrMalformedExpression)
		}

		err := serializeNode(sb, children[0])
		if err != nil {
			return err
		}

		sb.WriteByte('.')
		sb.WriteString(node.propertyName)
	default:
		name := node.ParamName()
		if name == "" {
			return fmt.Errorf("%w: unresolved %s reference", ErrMalformedExpression, node.refKind)
		}

		sb.WriteString(name)
	}

	return nil
}

func serializeConditional(sb *strings.Builder, parts []*Node) error {
	sb.WriteString("((")

	for i, part := range parts {
		switch i {
		case 1:
			sb.WriteString(") ? (")
		case 2: //nolint:mnd // Else branch.
			sb.WriteString(") : (")
		}

		err := serializeNode(sb, part)
		if err != nil {
			return err
		}
	}

	sb.WriteString("))")

	return nil
}

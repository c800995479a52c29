package expr

import (
	"errors"
	"fmt"
)

// ParameterSink receives resolved parameters. It is implemented by the
// animation objects of the host engine.
type ParameterSink interface {
	SetReferenceParameter(name string, object Object)
	SetBooleanParameter(name string, value bool)
	SetScalarParameter(name string, value float32)
	SetVector2Parameter(name string, value Vector2)
	SetVector3Parameter(name string, value Vector3)
	SetVector4Parameter(name string, value Vector4)
	SetColorParameter(name string, value Color)
	SetQuaternionParameter(name string, value Quaternion)
	SetMatrix3x2Parameter(name string, value Matrix3x2)
	SetMatrix4x4Parameter(name string, value Matrix4x4)
}

// Bind applies every reference and constant of resolved to sink, references
// first, each table in order.
func Bind(resolved *Resolved, sink ParameterSink) error {
	if resolved == nil {
		return fmt.Errorf("%w: nothing resolved", ErrInternalConsistency)
	}

	for _, reference := range resolved.References {
		sink.SetReferenceParameter(reference.Name, reference.Object)
	}

	for _, param := range resolved.Constants.Params() {
		err := bindConstant(sink, param)
		if err != nil {
			return err
		}
	}

	return nil
}

func bindConstant(sink ParameterSink, param Param) error {
	switch value := param.Value.(type) {
	case Bool:
		sink.SetBooleanParameter(param.Name, bool(value))
	case Float:
		sink.SetScalarParameter(param.Name, float32(value))
	case Vector2:
		sink.SetVector2Parameter(param.Name, value)
	case Vector3:
		sink.SetVector3Parameter(param.Name, value)
	case Vector4:
		sink.SetVector4Parameter(param.Name, value)
	case Color:
		sink.SetColorParameter(param.Name, value)
	case Quaternion:
		sink.SetQuaternionParameter(param.Name, value)
	case Matrix3x2:
		sink.SetMatrix3x2Parameter(param.Name, value)
	case Matrix4x4:
		sink.SetMatrix4x4Parameter(param.Name, value)
	default:
		return fmt.Errorf("%w: %q has type %T", ErrUnsupportedParameterType, param.Name, param.Value)
	}

	return nil
}

// SetAllParameters resolves the tree rooted at this node and binds the
// result to sink.
func (targetNode *Node) SetAllParameters(sink ParameterSink) error {
	resolved, err := Resolve(targetNode)
	if err != nil {
		return err
	}

	return Bind(resolved, sink)
}

// ExpressionAnimation is an animation object that evaluates an expression.
type ExpressionAnimation interface {
	ParameterSink
	SetExpression(expression string)
}

// AnimationTarget is an object whose properties can be animated.
type AnimationTarget interface {
	StartAnimation(property string, animation ExpressionAnimation) error
}

// ErrNoAnimation reports a StartAnimation call without an animation object.
var ErrNoAnimation = errors.New("no animation")

// StartAnimation compiles root into animation, binds every parameter and
// starts it on property of target.
func StartAnimation(target AnimationTarget, property string, animation ExpressionAnimation, root *Node) error {
	if animation == nil {
		return ErrNoAnimation
	}

	expression, err := root.ExpressionString()
	if err != nil {
		return fmt.Errorf("compile %s: %w", property, err)
	}

	animation.SetExpression(expression)

	err = root.SetAllParameters(animation)
	if err != nil {
		return fmt.Errorf("bind %s: %w", property, err)
	}

	err = target.StartAnimation(property, animation)
	if err != nil {
		return fmt.Errorf("start %s: %w", property, err)
	}

	return nil
}

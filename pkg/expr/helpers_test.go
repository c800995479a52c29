package expr //nolint:testpackage // Tests need access to internal types.

import (
	"strconv"
)

type fakeObject struct {
	typeName string
}

func (object *fakeObject) TypeName() string { return object.typeName }

func spriteVisual() *fakeObject {
	return &fakeObject{typeName: "Windows.UI.Composition.SpriteVisual"}
}

// recordingSink records every setter call as "<kind> <name>=<value>".
type recordingSink struct {
	calls   []string
	objects map[string]Object
}

func newRecordingSink() *recordingSink {
	return &recordingSink{objects: make(map[string]Object)}
}

func (sink *recordingSink) record(kind, name, value string) {
	sink.calls = append(sink.calls, kind+" "+name+"="+value)
}

func (sink *recordingSink) SetReferenceParameter(name string, object Object) {
	sink.objects[name] = object

	typeName := "<nil>"
	if object != nil {
		typeName = object.TypeName()
	}

	sink.record("ref", name, typeName)
}

func (sink *recordingSink) SetBooleanParameter(name string, value bool) {
	sink.record("bool", name, strconv.FormatBool(value))
}

func (sink *recordingSink) SetScalarParameter(name string, value float32) {
	sink.record("scalar", name, FormatFloat(value))
}

func (sink *recordingSink) SetVector2Parameter(name string, value Vector2) {
	sink.record("vector2", name, value.Literal())
}

func (sink *recordingSink) SetVector3Parameter(name string, value Vector3) {
	sink.record("vector3", name, value.Literal())
}

func (sink *recordingSink) SetVector4Parameter(name string, value Vector4) {
	sink.record("vector4", name, value.Literal())
}

func (sink *recordingSink) SetColorParameter(name string, value Color) {
	sink.record("color", name, value.Literal())
}

func (sink *recordingSink) SetQuaternionParameter(name string, value Quaternion) {
	sink.record("quaternion", name, value.Literal())
}

func (sink *recordingSink) SetMatrix3x2Parameter(name string, value Matrix3x2) {
	sink.record("matrix3x2", name, value.Literal())
}

func (sink *recordingSink) SetMatrix4x4Parameter(name string, value Matrix4x4) {
	sink.record("matrix4x4", name, value.Literal())
}

// bogusValue is a Value the binder does not know how to dispatch.
type bogusValue struct{}

func (bogusValue) Shape() Shape    { return ShapeScalar }
func (bogusValue) Literal() string { return "bogus" }
func (bogusValue) isValue()        {}

package expr

import (
	"strconv"
	"strings"
)

// Value is a constant value of one of the nine supported shapes.
// The set of implementations is closed.
type Value interface {
	// Shape returns the result shape of the value.
	Shape() Shape
	// Literal returns the expression-language literal for the value.
	Literal() string

	isValue()
}

// Bool is a boolean constant.
type Bool bool

// Float is a scalar constant.
type Float float32

// Vector2 is a two component vector.
type Vector2 struct{ X, Y float32 }

// Vector3 is a three component vector.
type Vector3 struct{ X, Y, Z float32 }

// Vector4 is a four component vector.
type Vector4 struct{ X, Y, Z, W float32 }

// Color is an 8-bit ARGB color.
type Color struct{ A, R, G, B uint8 }

// Quaternion is a rotation quaternion.
type Quaternion struct{ X, Y, Z, W float32 }

// Matrix3x2 is a 2D affine transform in row-major order.
type Matrix3x2 struct {
	M11, M12 float32
	M21, M22 float32
	M31, M32 float32
}

// Matrix4x4 is a 3D transform in row-major order.
type Matrix4x4 struct {
	M11, M12, M13, M14 float32
	M21, M22, M23, M24 float32
	M31, M32, M33, M34 float32
	M41, M42, M43, M44 float32
}

// FormatFloat renders f in the shortest form that round-trips as float32.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

func constructor(name string, components ...float32) string {
	var sb strings.Builder

	sb.WriteString(name)
	sb.WriteByte('(')

	for i, component := range components {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(FormatFloat(component))
	}

	sb.WriteByte(')')

	return sb.String()
}

func (Bool) Shape() Shape       { return ShapeBoolean }
func (Float) Shape() Shape      { return ShapeScalar }
func (Vector2) Shape() Shape    { return ShapeVector2 }
func (Vector3) Shape() Shape    { return ShapeVector3 }
func (Vector4) Shape() Shape    { return ShapeVector4 }
func (Color) Shape() Shape      { return ShapeColor }
func (Quaternion) Shape() Shape { return ShapeQuaternion }
func (Matrix3x2) Shape() Shape  { return ShapeMatrix3x2 }
func (Matrix4x4) Shape() Shape  { return ShapeMatrix4x4 }

func (Bool) isValue()       {}
func (Float) isValue()      {}
func (Vector2) isValue()    {}
func (Vector3) isValue()    {}
func (Vector4) isValue()    {}
func (Color) isValue()      {}
func (Quaternion) isValue() {}
func (Matrix3x2) isValue()  {}
func (Matrix4x4) isValue()  {}

func (value Bool) Literal() string {
	return strconv.FormatBool(bool(value))
}

func (value Float) Literal() string {
	return FormatFloat(float32(value))
}

func (value Vector2) Literal() string {
	return constructor("Vector2", value.X, value.Y)
}

func (value Vector3) Literal() string {
	return constructor("Vector3", value.X, value.Y, value.Z)
}

func (value Vector4) Literal() string {
	return constructor("Vector4", value.X, value.Y, value.Z, value.W)
}

func (value Color) Literal() string {
	return "ColorRgb(" + strconv.Itoa(int(value.A)) + "," + strconv.Itoa(int(value.R)) + "," +
		strconv.Itoa(int(value.G)) + "," + strconv.Itoa(int(value.B)) + ")"
}

func (value Quaternion) Literal() string {
	return constructor("Quaternion", value.X, value.Y, value.Z, value.W)
}

func (value Matrix3x2) Literal() string {
	return constructor("Matrix3x2", value.Components()...)
}

func (value Matrix4x4) Literal() string {
	return constructor("Matrix4x4", value.Components()...)
}

// Components returns the six matrix entries in row-major order.
func (value Matrix3x2) Components() []float32 {
	return []float32{value.M11, value.M12, value.M21, value.M22, value.M31, value.M32}
}

// Components returns the sixteen matrix entries in row-major order.
func (value Matrix4x4) Components() []float32 {
	return []float32{
		value.M11, value.M12, value.M13, value.M14,
		value.M21, value.M22, value.M23, value.M24,
		value.M31, value.M32, value.M33, value.M34,
		value.M41, value.M42, value.M43, value.M44,
	}
}

// Identity3x2 returns the identity 3x2 matrix.
func Identity3x2() Matrix3x2 {
	return Matrix3x2{M11: 1, M22: 1}
}

// Identity4x4 returns the identity 4x4 matrix.
func Identity4x4() Matrix4x4 {
	return Matrix4x4{M11: 1, M22: 1, M33: 1, M44: 1}
}

// Matrix3x2From builds a matrix from six row-major components.
func Matrix3x2From(c [6]float32) Matrix3x2 {
	return Matrix3x2{M11: c[0], M12: c[1], M21: c[2], M22: c[3], M31: c[4], M32: c[5]}
}

// Matrix4x4From builds a matrix from sixteen row-major components.
func Matrix4x4From(c [16]float32) Matrix4x4 {
	return Matrix4x4{
		M11: c[0], M12: c[1], M13: c[2], M14: c[3],
		M21: c[4], M22: c[5], M23: c[6], M24: c[7],
		M31: c[8], M32: c[9], M33: c[10], M34: c[11],
		M41: c[12], M42: c[13], M43: c[14], M44: c[15],
	}
}

package expr

// Math functions.

func Abs(value *Node) *Node   { return build(NodeAbsolute, value) }
func Acos(value *Node) *Node  { return build(NodeAcos, value) }
func Asin(value *Node) *Node  { return build(NodeAsin, value) }
func Atan(value *Node) *Node  { return build(NodeAtan, value) }
func Cos(value *Node) *Node   { return build(NodeCos, value) }
func Sin(value *Node) *Node   { return build(NodeSin, value) }
func Tan(value *Node) *Node   { return build(NodeTan, value) }
func Ceil(value *Node) *Node  { return build(NodeCeil, value) }
func Floor(value *Node) *Node { return build(NodeFloor, value) }
func Round(value *Node) *Node { return build(NodeRound, value) }
func Ln(value *Node) *Node    { return build(NodeLn, value) }
func Log10(value *Node) *Node { return build(NodeLog10, value) }
func Sqrt(value *Node) *Node  { return build(NodeSqrt, value) }

// Square returns value*value.
func Square(value *Node) *Node { return build(NodeSquare, value) }

// ToDegrees converts radians to degrees.
func ToDegrees(radians *Node) *Node { return build(NodeToDegrees, radians) }

// ToRadians converts degrees to radians.
func ToRadians(degrees *Node) *Node { return build(NodeToRadians, degrees) }

// Pow raises value to exponent.
func Pow(value, exponent *Node) *Node { return build(NodePow, value, exponent) }

// Min returns the component-wise minimum.
func Min(left, right *Node) *Node { return build(NodeMin, left, right) }

// Max returns the component-wise maximum.
func Max(left, right *Node) *Node { return build(NodeMax, left, right) }

// Clamp limits value to [lower, upper].
func Clamp(value, lower, upper *Node) *Node { return build(NodeClamp, value, lower, upper) }

// Lerp interpolates linearly between start and end by progress.
func Lerp(start, end, progress *Node) *Node { return build(NodeLerp, start, end, progress) }

// Vector functions.

func Length(value *Node) *Node                { return build(NodeLength, value) }
func LengthSquared(value *Node) *Node         { return build(NodeLengthSquared, value) }
func Normalize(value *Node) *Node             { return build(NodeNormalize, value) }
func Distance(left, right *Node) *Node        { return build(NodeDistance, left, right) }
func DistanceSquared(left, right *Node) *Node { return build(NodeDistanceSquared, left, right) }

// Inverse inverts a matrix.
func Inverse(matrix *Node) *Node { return build(NodeInverse, matrix) }

// Scale scales a vector or matrix by a scalar.
func Scale(value, factor *Node) *Node { return build(NodeScale, value, factor) }

// Transform applies matrix to vector.
func Transform(vector, matrix *Node) *Node { return build(NodeTransform, vector, matrix) }

// Color functions.

// ColorHsl builds a color from hue, saturation and luminosity.
func ColorHsl(hue, saturation, luminosity *Node) *Node {
	return build(NodeColorHsl, hue, saturation, luminosity)
}

// ColorRgb builds a color from alpha, red, green and blue.
func ColorRgb(alpha, red, green, blue *Node) *Node {
	return build(NodeColorRgb, alpha, red, green, blue)
}

func ColorLerp(start, end, progress *Node) *Node { return build(NodeColorLerp, start, end, progress) }

func ColorLerpHsl(start, end, progress *Node) *Node {
	return build(NodeColorLerpHsl, start, end, progress)
}

func ColorLerpRgb(start, end, progress *Node) *Node {
	return build(NodeColorLerpRgb, start, end, progress)
}

// Quaternion functions.

// QuaternionOf builds a quaternion from four scalars.
func QuaternionOf(x, y, z, w *Node) *Node { return build(NodeQuaternion, x, y, z, w) }

// QuaternionFromAxisAngle builds a rotation of angle radians around axis.
func QuaternionFromAxisAngle(axis, angle *Node) *Node {
	return build(NodeQuaternionFromAxisAngle, axis, angle)
}

// Concatenate composes two quaternions.
func Concatenate(left, right *Node) *Node { return build(NodeConcatenate, left, right) }

// Slerp spherically interpolates between two quaternions.
func Slerp(start, end, progress *Node) *Node { return build(NodeSlerp, start, end, progress) }

// Vector constructors.

func Vector2Of(x, y *Node) *Node       { return build(NodeVector2, x, y) }
func Vector3Of(x, y, z *Node) *Node    { return build(NodeVector3, x, y, z) }
func Vector4Of(x, y, z, w *Node) *Node { return build(NodeVector4, x, y, z, w) }

// Matrix constructors.

// Matrix3x2Of builds a matrix from six scalars in row-major order.
func Matrix3x2Of(m11, m12, m21, m22, m31, m32 *Node) *Node {
	return build(NodeMatrix3x2, m11, m12, m21, m22, m31, m32)
}

// Matrix4x4Of builds a matrix from sixteen scalars in row-major order.
func Matrix4x4Of(components [16]*Node) *Node {
	return build(NodeMatrix4x4, components[:]...)
}

func Matrix3x2FromRotation(angle *Node) *Node     { return build(NodeMatrix3x2FromRotation, angle) }
func Matrix3x2FromScale(scale *Node) *Node        { return build(NodeMatrix3x2FromScale, scale) }
func Matrix3x2FromTranslation(offset *Node) *Node { return build(NodeMatrix3x2FromTranslation, offset) }

// Matrix3x2FromSkew builds a skew from two angles in radians.
func Matrix3x2FromSkew(angleX, angleY *Node) *Node {
	return build(NodeMatrix3x2FromSkew, angleX, angleY)
}

func Matrix4x4FromScale(scale *Node) *Node        { return build(NodeMatrix4x4FromScale, scale) }
func Matrix4x4FromTranslation(offset *Node) *Node { return build(NodeMatrix4x4FromTranslation, offset) }

// Matrix4x4FromAxisAngle builds a rotation of angle radians around axis.
func Matrix4x4FromAxisAngle(axis, angle *Node) *Node {
	return build(NodeMatrix4x4FromAxisAngle, axis, angle)
}

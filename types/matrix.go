package types

import "github.com/go-gl/mathgl/mgl32"

// A column-major 4x4 matrix. The layout matches mgl32 so we delegate the
// heavy lifting (inversion, projections) to it.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a perspective projection matrix. The fov is expressed in degrees.
func Perspective4(fovY, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far))
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Multiply with another matrix.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply with a 4 component column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Transform a point (w = 1) and drop the w component.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// Transform a direction (w = 0) so that only the rotation/scale part applies.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// Calculate the matrix inverse. Singular matrices yield the zero matrix.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

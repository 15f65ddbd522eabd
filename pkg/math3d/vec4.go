package math3d

// Vec4 is a homogeneous coordinate, used for clip-space positions.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4FromV3 extends v with the given w.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// PerspectiveDivide returns (x/w, y/w, z/w), or the raw xyz when w is 0.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return Vec3{v.X, v.Y, v.Z}
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

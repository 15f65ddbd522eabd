package render

import (
	"math"

	"github.com/taigrr/avatarfit/pkg/math3d"
)

// Camera orbits a target point at a fixed distance.
type Camera struct {
	Target   math3d.Vec3
	Distance float64

	// Orientation (radians)
	Yaw   float64 // Around the Y axis; 0 looks down -Z from +Z
	Pitch float64 // Elevation above the XZ plane

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane
}

// NewCamera creates a camera three units in front of the origin.
func NewCamera() *Camera {
	return &Camera{
		Distance:    3,
		Pitch:       0.15,
		FOV:         math.Pi / 4, // 45 degrees
		AspectRatio: 1,
		Near:        0.05,
		Far:         100,
	}
}

// Position returns the camera's location in world space.
func (c *Camera) Position() math3d.Vec3 {
	sy, cy := math.Sincos(c.Yaw)
	sp, cp := math.Sincos(c.Pitch)
	offset := math3d.V3(sy*cp, sp, cy*cp).Scale(c.Distance)
	return c.Target.Add(offset)
}

// Forward returns the viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position(), c.Target, math3d.Up())
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frame aims the camera at the center of the box and backs off until the
// whole box fits vertically and horizontally.
func (c *Camera) Frame(lo, hi math3d.Vec3) {
	c.Target = lo.Add(hi).Scale(0.5)
	size := hi.Sub(lo)

	radius := size.Len() / 2
	if radius < 1e-3 {
		radius = 1
	}
	fov := c.FOV
	if c.AspectRatio > 0 && c.AspectRatio < 1 {
		// Narrow viewports are limited by the horizontal field of view.
		fov = 2 * math.Atan(math.Tan(c.FOV/2)*c.AspectRatio)
	}
	c.Distance = radius / math.Sin(fov/2)
	c.Near = math.Max(c.Distance-radius*2, 0.01)
	c.Far = c.Distance + radius*2
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch

	// Clamp pitch to avoid flipping over the poles
	const maxPitch = math.Pi/2 - 0.01
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, c.Pitch))
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	// Transform to clip space
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Check if behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	// Perspective divide to NDC (-1 to 1)
	ndc := clipPos.PerspectiveDivide()

	// Check if in view frustum
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	// Convert to screen coordinates
	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, true
}

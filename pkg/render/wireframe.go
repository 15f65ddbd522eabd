package render

import (
	"image/color"

	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/math3d"
)

// Wireframe draws line overlays: fit bounding boxes and the floor grid.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c color.RGBA) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)

	// Lines are only drawn when both ends are on screen; no clipping.
	if !vis1 || !vis2 {
		return
	}
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), c)
}

// DrawBox draws the 12 edges of an axis-aligned box.
func (w *Wireframe) DrawBox(box fit.AABB, c color.RGBA) {
	var corners [8]math3d.Vec3
	for i := range corners {
		p := box.Min
		if i&1 != 0 {
			p.X = box.Max.X
		}
		if i&2 != 0 {
			p.Y = box.Max.Y
		}
		if i&4 != 0 {
			p.Z = box.Max.Z
		}
		corners[i] = p
	}

	// Corners differing in exactly one bit share an edge.
	for i := range corners {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit == 0 {
				w.DrawLine3D(corners[i], corners[i|bit], c)
			}
		}
	}
}

// DrawFloor draws a square grid on y = 0 centered under center.
func (w *Wireframe) DrawFloor(center math3d.Vec3, halfSize float64, lines int, c color.RGBA) {
	if lines < 2 {
		lines = 2
	}
	step := 2 * halfSize / float64(lines-1)
	for i := range lines {
		off := -halfSize + float64(i)*step
		w.DrawLine3D(
			math3d.V3(center.X+off, 0, center.Z-halfSize),
			math3d.V3(center.X+off, 0, center.Z+halfSize), c)
		w.DrawLine3D(
			math3d.V3(center.X-halfSize, 0, center.Z+off),
			math3d.V3(center.X+halfSize, 0, center.Z+off), c)
	}
}

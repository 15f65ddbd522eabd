// Package render draws baked meshes into a software framebuffer for the
// terminal preview and PNG snapshots.
package render

import (
	"image/color"
	"math"

	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// MeshRenderer is the subset of models.Mesh the rasterizer needs.
type MeshRenderer interface {
	TriangleCount() int
	GetFace(i int) [3]int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetMaterial(face int) *scene.Material
	GetBounds() (lo, hi math3d.Vec3)
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // Depth buffer (1D array, row-major)
	shades  map[*scene.Material]color.RGBA

	// Ambient is the light level of faces turned away from the light.
	Ambient float64

	CullingStats CullingStats // Statistics for debugging/benchmarking
}

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int // Total meshes tested for culling
	MeshesCulled int // Meshes culled (not rendered)
	MeshesDrawn  int // Meshes that passed culling
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:  camera,
		fb:      fb,
		shades:  map[*scene.Material]color.RGBA{},
		Ambient: 0.3,
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer and the material color cache. Call it
// before each frame.
func (r *Rasterizer) ClearDepth() {
	clear(r.shades)
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // Depth (for Z-buffer)
	W    float64
}

func (r *Rasterizer) project(viewProj math3d.Mat4, p math3d.Vec3) screenVertex {
	clip := viewProj.MulVec4(math3d.V4FromV3(p, 1))
	sv := screenVertex{W: clip.W}
	if clip.W != 0 {
		sv.X = clip.X / clip.W
		sv.Y = clip.Y / clip.W
		sv.Z = clip.Z / clip.W
	}
	sv.X = (sv.X + 1) * 0.5 * float64(r.Width())
	sv.Y = (1 - sv.Y) * 0.5 * float64(r.Height()) // Y flipped
	return sv
}

// edgeFunc returns twice the signed area of (a, b, p).
func edgeFunc(a, b screenVertex, px, py float64) float64 {
	return (b.X-a.X)*(py-a.Y) - (b.Y-a.Y)*(px-a.X)
}

// DrawTriangle fills a world-space triangle with a solid color. Both
// windings are drawn; garments are often single-sided shells.
func (r *Rasterizer) DrawTriangle(v0, v1, v2 math3d.Vec3, c color.RGBA) {
	viewProj := r.camera.ViewProjectionMatrix()
	sv := [3]screenVertex{
		r.project(viewProj, v0),
		r.project(viewProj, v1),
		r.project(viewProj, v2),
	}

	// Triangles touching the camera plane are dropped rather than clipped.
	if sv[0].W <= 0 || sv[1].W <= 0 || sv[2].W <= 0 {
		return
	}

	area := edgeFunc(sv[0], sv[1], sv[2].X, sv[2].Y)
	if area == 0 {
		return
	}

	// Find bounding box
	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			w0 := edgeFunc(sv[1], sv[2], px, py) * inv
			w1 := edgeFunc(sv[2], sv[0], px, py) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*sv[0].Z + w1*sv[1].Z + w2*sv[2].Z
			if z < -1 || z > 1 || z >= r.getDepth(x, y) {
				continue
			}
			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, c)
		}
	}
}

// DrawMesh renders a world-space mesh lit by a directional light. Each
// face takes its material's color; faces without one use fallback.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, fallback color.RGBA, lightDir math3d.Vec3) {
	r.CullingStats.MeshesTested++
	lo, hi := mesh.GetBounds()
	if !r.camera.Frustum().IntersectAABB(fit.AABB{Min: lo, Max: hi}) {
		r.CullingStats.MeshesCulled++
		return
	}
	r.CullingStats.MeshesDrawn++

	light := lightDir.Normalize()
	eye := r.camera.Position()
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		p0, n := mesh.GetVertex(face[0])
		p1, _ := mesh.GetVertex(face[1])
		p2, _ := mesh.GetVertex(face[2])

		// Light the side facing the viewer.
		if n.Dot(eye.Sub(p0)) < 0 {
			n = n.Negate()
		}
		intensity := r.Ambient + (1-r.Ambient)*math.Max(0, n.Dot(light))

		base := fallback
		if m := mesh.GetMaterial(i); m != nil {
			base = r.shade(m)
		}
		r.DrawTriangle(p0, p1, p2, MultiplyColor(base, intensity))
	}
}

// shade returns the display color of a material, cached per frame.
func (r *Rasterizer) shade(m *scene.Material) color.RGBA {
	if c, ok := r.shades[m]; ok {
		return c
	}
	c := MaterialRGBA(m)
	r.shades[m] = c
	return c
}

// MultiplyColor scales a color's RGB by intensity.
func MultiplyColor(c color.RGBA, intensity float64) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Max(0, math.Min(255, float64(v)*intensity)))
	}
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
}

package render

import (
	"image"
	"image/color"

	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/math3d"
	"github.com/taigrr/avatarfit/pkg/models"
)

// Options configures a Renderer.
type Options struct {
	Width, Height int
	Background    color.RGBA
	Fallback      color.RGBA // For faces without a material
	LightDir      math3d.Vec3
	ShowFloor     bool
}

// DefaultOptions returns a 120×120 pixel setup with a key light from the
// upper front right.
func DefaultOptions() Options {
	return Options{
		Width:      120,
		Height:     120,
		Background: ColorBackground,
		Fallback:   ColorFallback,
		LightDir:   math3d.V3(0.5, 1, 0.8),
		ShowFloor:  true,
	}
}

// Frame is what one render call draws.
type Frame struct {
	Meshes []*models.Mesh
	Boxes  []fit.AABB // Drawn as wireframe overlays
}

// Bounds returns the union of the frame's non-empty meshes.
func (f Frame) Bounds() (fit.AABB, bool) {
	var box fit.AABB
	found := false
	for _, m := range f.Meshes {
		if m == nil || m.TriangleCount() == 0 {
			continue
		}
		b := fit.AABB{Min: m.BoundsMin, Max: m.BoundsMax}
		if !found {
			box, found = b, true
			continue
		}
		box = box.Union(b)
	}
	return box, found
}

// Renderer owns a camera, framebuffer and rasterizer sized together.
type Renderer struct {
	opts   Options
	camera *Camera
	fb     *Framebuffer
	rast   *Rasterizer
	wire   *Wireframe
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{opts: opts, camera: NewCamera()}
	r.Resize(opts.Width, opts.Height)
	return r
}

// Resize changes the framebuffer size.
func (r *Renderer) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	r.opts.Width, r.opts.Height = width, height
	r.fb = NewFramebuffer(width, height)
	r.rast = NewRasterizer(r.camera, r.fb)
	r.wire = NewWireframe(r.camera, r.fb)
	r.camera.AspectRatio = float64(width) / float64(height)
}

// Camera returns the renderer's camera. Yaw and Pitch survive Render;
// target and distance are reframed on every call.
func (r *Renderer) Camera() *Camera { return r.camera }

// Framebuffer returns the last rendered image.
func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }

// Stats returns culling statistics of the last Render.
func (r *Renderer) Stats() CullingStats { return r.rast.CullingStats }

// Render draws frame into the framebuffer, framing the camera on its
// meshes. An empty frame only clears to the background.
func (r *Renderer) Render(frame Frame) *Framebuffer {
	r.fb.Clear(r.opts.Background)
	r.rast.ClearDepth()
	r.rast.ResetCullingStats()

	box, ok := frame.Bounds()
	if !ok {
		return r.fb
	}
	r.camera.Frame(box.Min, box.Max)

	if r.opts.ShowFloor {
		c := box.Center()
		half := max(box.Width(), box.Size().Z) / 2
		r.wire.DrawFloor(math3d.V3(c.X, 0, c.Z), half, 9, ColorFloor)
	}
	for _, m := range frame.Meshes {
		if m == nil || m.TriangleCount() == 0 {
			continue
		}
		r.rast.DrawMesh(m, r.opts.Fallback, r.opts.LightDir)
	}
	for _, b := range frame.Boxes {
		r.wire.DrawBox(b, ColorBounds)
	}
	return r.fb
}

// Snapshot renders frame at supersample times the requested size and
// filters it down.
func Snapshot(opts Options, frame Frame, supersample int, yaw float64) image.Image {
	supersample = max(supersample, 1)
	big := opts
	big.Width *= supersample
	big.Height *= supersample

	r := NewRenderer(big)
	r.Camera().Yaw = yaw
	return r.Render(frame).Downsample(supersample)
}

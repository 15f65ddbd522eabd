package render

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
)

// Framebuffer is a row-major RGBA pixel grid. In the terminal two pixel rows
// share one cell, so Height is twice the row count there.
//
// Framebuffer implements image.Image, so snapshots go straight to png.Encode
// and resize without a copy.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// NewFramebuffer creates a framebuffer of width×height pixels.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with c.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

func (fb *Framebuffer) inside(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// SetPixel writes c at (x, y). Writes outside the buffer are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if fb.inside(x, y) {
		fb.Pixels[y*fb.Width+x] = c
	}
}

// GetPixel returns the pixel at (x, y), or transparent black outside.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if !fb.inside(x, y) {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, fb.Width, fb.Height) }

// At implements image.Image.
func (fb *Framebuffer) At(x, y int) color.Color { return fb.GetPixel(x, y) }

// DrawLine draws a segment between two pixel positions. The segment is
// clipped to the buffer first, so far off-screen endpoints from a close
// camera cost nothing.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	ax, ay, bx, by, ok := fb.clip(float64(x0), float64(y0), float64(x1), float64(y1))
	if !ok {
		return
	}
	steps := int(math.Ceil(max(math.Abs(bx-ax), math.Abs(by-ay))))
	if steps == 0 {
		fb.SetPixel(int(math.Round(ax)), int(math.Round(ay)), c)
		return
	}
	dx, dy := (bx-ax)/float64(steps), (by-ay)/float64(steps)
	for i := 0; i <= steps; i++ {
		fb.SetPixel(int(math.Round(ax+dx*float64(i))), int(math.Round(ay+dy*float64(i))), c)
	}
}

// clip trims the segment to the pixel rectangle (Liang-Barsky).
func (fb *Framebuffer) clip(x0, y0, x1, y1 float64) (ax, ay, bx, by float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	lo, hi := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, float64(fb.Width-1) - x0},
		{-dy, y0},
		{dy, float64(fb.Height-1) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			lo = max(lo, t)
		} else {
			hi = min(hi, t)
		}
		if lo > hi {
			return 0, 0, 0, 0, false
		}
	}
	return x0 + lo*dx, y0 + lo*dy, x0 + hi*dx, y0 + hi*dy, true
}

// Downsample returns the framebuffer shrunk by factor with Lanczos
// filtering. A factor below 2 returns fb itself.
func (fb *Framebuffer) Downsample(factor int) image.Image {
	if factor < 2 {
		return fb
	}
	w, h := uint(fb.Width/factor), uint(fb.Height/factor)
	if w == 0 || h == 0 {
		return fb
	}
	return resize.Resize(w, h, fb, resize.Lanczos3)
}

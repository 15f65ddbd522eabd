package render

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
	"github.com/taigrr/avatarfit/pkg/fit"
	"github.com/taigrr/avatarfit/pkg/scene"
)

// Preview palette.
var (
	ColorBackground = color.RGBA{42, 42, 42, 255}
	ColorFloor      = color.RGBA{68, 68, 68, 255}
	ColorBounds     = color.RGBA{255, 235, 59, 255}
	ColorFallback   = color.RGBA{200, 200, 200, 255}
)

// ParseRGBA parses a hex color for drawing.
func ParseRGBA(hex string) (color.RGBA, error) {
	c, err := fit.ParseColor(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	return toRGBA(c), nil
}

// MaterialRGBA returns the sRGB color a material is displayed with. A base
// texture tints the color by its average, since baked meshes carry no UVs.
func MaterialRGBA(m *scene.Material) color.RGBA {
	r, g, b := m.BaseColor[0], m.BaseColor[1], m.BaseColor[2]
	if m.BaseMap != nil {
		tr, tg, tb := averageLinear(m.BaseMap)
		r, g, b = r*tr, g*tg, b*tb
	}
	return toRGBA(colorful.LinearRgb(r, g, b))
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

// averageLinear shrinks img to a single pixel and returns it as linear RGB.
func averageLinear(img image.Image) (r, g, b float64) {
	px := resize.Resize(1, 1, img, resize.Bilinear).At(0, 0)
	c, ok := colorful.MakeColor(px)
	if !ok {
		return 1, 1, 1
	}
	return c.LinearRgb()
}

package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// halfBlock packs two vertically stacked pixels into one cell: the glyph
// takes the top pixel as foreground and the bottom one as background.
const halfBlock = "▀"

// Draw paints the framebuffer into area, two pixel rows per terminal row.
// Pixels outside the framebuffer are left as the terminal default.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := 0; row < area.Dy(); row++ {
		for col := 0; col < area.Dx() && col < fb.Width; col++ {
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, row*2)),
					Bg: rgbaToColor(fb.GetPixel(col, row*2+1)),
				},
			})
		}
	}
}

// TerminalSize returns the framebuffer size that fills a cols×rows area.
func TerminalSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// rgbaToColor maps transparent pixels to the terminal's default color.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

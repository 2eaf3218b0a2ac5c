package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// textWidth measures s in pixels.
func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// textAscent is the distance from the baseline to the top of a glyph.
func textAscent() int {
	return face.Metrics().Ascent.Ceil()
}

// drawText draws s with its baseline starting at (x, y).
func drawText(dst draw.Image, s string, x, y int, c color.Color) {
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(s)
}

// drawCenteredText draws s horizontally centered on cx.
func drawCenteredText(dst draw.Image, s string, cx, y int, c color.Color) {
	drawText(dst, s, cx-textWidth(s)/2, y, c)
}

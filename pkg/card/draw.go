// draw.go - Text compositing.
package card

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawLines draws every laid out line onto dst in col, each line centered
// horizontally on its own and never starting left of Padding. Glyphs falling
// outside dst are clipped.
func DrawLines(dst draw.Image, face font.Face, lay LayoutResult, col color.Color) {
	src := image.NewUniform(col)
	ascent := face.Metrics().Ascent

	for i, line := range lay.Lines {
		x := LineX(MeasureString(face, line))
		y := lay.StartY + i*lay.LineHeight
		drawString(dst, src, face, fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + ascent}, line)
	}
}

// LineX is the left edge of a line of the given width.
func LineX(width fixed.Int26_6) int {
	return max((fixed.I(Width)-width)/2, fixed.I(Padding)).Floor()
}

// drawString is font.Drawer.DrawString without kerning.
func drawString(dst draw.Image, src image.Image, face font.Face, dot fixed.Point26_6, s string) {
	for _, r := range s {
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if ok && !dr.Empty() {
			draw.DrawMask(dst, dr, src, image.Point{}, mask, maskp, draw.Over)
		}
		dot.X += advance
	}
}

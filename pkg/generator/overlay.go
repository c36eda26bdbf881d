// overlay.go - Vertical darkening ramp applied over photo backgrounds.
package generator

import "image"

// Overlay opacity at the top and bottom rows of the canvas.
const (
	overlayTop    = 0.3
	overlayBottom = 0.7
)

// DarkenFactor is the black overlay opacity for row y of an h-row canvas.
// It grows linearly from 0.3 at the top to 0.7 at the bottom.
func DarkenFactor(y, h int) float32 {
	if h <= 0 {
		return overlayTop
	}
	return overlayTop + (overlayBottom-overlayTop)*(float32(y)/float32(h))
}

// Darken scales every color channel of row y by 1-DarkenFactor(y) and forces
// alpha to opaque. The image is modified in place.
func Darken(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		keep := 1 - DarkenFactor(y, h)
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[off : off+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = saturate(float32(row[i]) * keep)
			row[i+1] = saturate(float32(row[i+1]) * keep)
			row[i+2] = saturate(float32(row[i+2]) * keep)
			row[i+3] = 255
		}
	}
}

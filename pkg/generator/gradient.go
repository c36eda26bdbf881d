// gradient.go - Diagonal linear gradient used when no background image is available.
package generator

import (
	"image"
	"image/color"
)

// Default gradient endpoints, equivalent to linear-gradient(135deg, #667eea, #764ba2).
const (
	GradientStart = "#667eea"
	GradientEnd   = "#764ba2"
)

// DefaultGradient returns a w×h canvas filled with the default gradient.
func DefaultGradient(w, h int) *image.RGBA {
	return NewGradient(w, h, ParseHexRGBA(GradientStart), ParseHexRGBA(GradientEnd))
}

// NewGradient fills a new w×h canvas with a 135° gradient running from
// start (bottom-left) to end (top-right). The result is a pure function of
// its arguments.
func NewGradient(w, h int, start, end color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	den := float32(w + h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			ratio := clamp01(float32(x+(h-y)) / den)
			i := x * 4
			row[i] = lerp(start.R, end.R, ratio)
			row[i+1] = lerp(start.G, end.G, ratio)
			row[i+2] = lerp(start.B, end.B, ratio)
			row[i+3] = 255
		}
	}
	return img
}

func lerp(a, b uint8, t float32) uint8 {
	return saturate(float32(a)*(1-t) + float32(b)*t)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// saturate truncates v toward zero and clamps it into the uint8 range.
func saturate(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

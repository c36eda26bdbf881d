// Package generator provides the canvas-level stages of card rendering:
// gradient synthesis, the darkening overlay and PNG output.
//
// All output follows a unified pipeline: build an *image.RGBA first,
// mutate it in place, then encode it once.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"
)

// Generate writes img to output. The format is inferred from the file
// extension; only ".png" is supported.
func Generate(output string, img image.Image) error {
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".png":
		return writePNG(output, img)
	default:
		return fmt.Errorf("unsupported format %q: use .png", ext)
	}
}

// GenerateToWriter writes img to w in the format named by ext (".png").
func GenerateToWriter(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported format %q: use .png", ext)
	}
}

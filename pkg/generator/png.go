// png.go - PNG encoding to memory and to disk.
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
)

// EncodePNG losslessly encodes img and returns the PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// writePNG encodes img to a PNG file at the given path.
func writePNG(output string, img image.Image) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}

// background.go - Background acquisition: fetch, decode and cover-fit a remote
// image, or fall back to the gradient when anything about that fails.
package card

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/xob0t/ogcard/pkg/generator"
)

// Fetcher retrieves the raw bytes behind a background URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// MaxSourcePixels caps the declared size of a background image. Larger
// images are rejected before their pixels are allocated.
const MaxSourcePixels = 40_000_000

var (
	errNoFetcher = errors.New("no fetcher configured")

	// ErrImageTooLarge is returned for backgrounds over MaxSourcePixels.
	ErrImageTooLarge = errors.New("background image too large")
)

// Backgrounds produces Width×Height base canvases.
type Backgrounds struct {
	Fetcher Fetcher
	Log     *zap.Logger
}

// Background returns the canvas for url and reports whether it came from a
// real image. It never fails: an empty url, a failed fetch or undecodable
// bytes all yield the gradient.
func (b *Backgrounds) Background(ctx context.Context, url string) (*image.RGBA, bool) {
	if url == "" {
		b.log().Debug("no background URL, using gradient")
		return generator.DefaultGradient(Width, Height), false
	}
	return b.orGradient(url)(b.load(ctx, url))
}

// orGradient collapses a (canvas, error) result into a canvas, substituting
// the gradient on error.
func (b *Backgrounds) orGradient(url string) func(*image.RGBA, error) (*image.RGBA, bool) {
	return func(img *image.RGBA, err error) (*image.RGBA, bool) {
		if err != nil {
			b.log().Warn("failed to load background, using gradient", zap.String("url", url), zap.Error(err))
			return generator.DefaultGradient(Width, Height), false
		}
		return img, true
	}
}

func (b *Backgrounds) load(ctx context.Context, url string) (*image.RGBA, error) {
	if b.Fetcher == nil {
		return nil, errNoFetcher
	}
	data, err := b.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode background: empty %dx%d image", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("decode background: %dx%d: %w", cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return nil, fmt.Errorf("decode background: empty %dx%d image", sb.Dx(), sb.Dy())
	}
	b.log().Debug("background loaded", zap.Int("width", sb.Dx()), zap.Int("height", sb.Dy()))

	return CoverFit(src, Width, Height), nil
}

func (b *Backgrounds) log() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}

// CoverFit crops the largest center region of src that has the w:h aspect
// ratio, then scales it to exactly w×h with a Lanczos filter. The
// intermediate image is never larger than src.
func CoverFit(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()

	cw, ch := sw, sh
	if sw*h > sh*w {
		// Relatively wider: keep the height, crop the width.
		cw = min(max(int(math.Round(float64(sh)*float64(w)/float64(h))), 1), sw)
	} else {
		ch = min(max(int(math.Round(float64(sw)*float64(h)/float64(w))), 1), sh)
	}

	cropped := imaging.CropAnchor(src, cw, ch, imaging.Center)
	return generator.ToRGBA(imaging.Resize(cropped, w, h, imaging.Lanczos))
}

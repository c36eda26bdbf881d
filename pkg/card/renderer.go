// renderer.go - Card rendering pipeline.
// Stages run strictly in order: background -> overlay -> layout -> text -> PNG.
package card

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"
	"golang.org/x/text/unicode/norm"

	"github.com/xob0t/ogcard/pkg/fonts"
	"github.com/xob0t/ogcard/pkg/generator"
)

// TextColor is the fill used for all card text.
var TextColor = color.RGBA{255, 255, 255, 255}

// Options configures a Renderer.
type Options struct {
	Fetcher Fetcher     // nil disables remote backgrounds
	Fonts   FontLoader  // nil uses the process-wide fonts registry
	Logger  *zap.Logger // nil discards logs
}

// Renderer turns render requests into cards. It holds no per-request state
// and may be shared by concurrent callers.
type Renderer struct {
	fonts       FontLoader
	backgrounds *Backgrounds
	log         *zap.Logger
}

// Card is a rendered, not yet encoded, card.
type Card struct {
	Image  *image.RGBA
	Layout LayoutResult
	Photo  bool   // background came from a real image
	Font   string // resolved font key
}

type stdFonts struct{}

func (stdFonts) Load(name string) (*opentype.Font, error) { return fonts.Load(name) }

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	fl := opts.Fonts
	if fl == nil {
		fl = stdFonts{}
	}
	return &Renderer{
		fonts:       fl,
		backgrounds: &Backgrounds{Fetcher: opts.Fetcher, Log: log},
		log:         log,
	}
}

// Generate renders req and returns the PNG bytes. Background problems are
// absorbed; font and encoding failures are returned.
func (r *Renderer) Generate(ctx context.Context, req RenderRequest) ([]byte, error) {
	c, err := r.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := generator.EncodePNG(c.Image)
	if err != nil {
		return nil, err
	}
	r.log.Debug("generated card", zap.Int("bytes", len(data)))
	return data, nil
}

// Render runs every stage except encoding.
func (r *Renderer) Render(ctx context.Context, req RenderRequest) (*Card, error) {
	img, photo := r.backgrounds.Background(ctx, req.Image)
	if photo {
		generator.Darken(img)
	}

	key := fonts.Resolve(req.Font)
	f, err := r.fonts.Load(req.Font)
	if err != nil {
		return nil, fmt.Errorf("load font %q: %w", key, err)
	}

	// Size follows the characters as submitted; only wrapping and drawing
	// see the composed form.
	size := FontSize(CountSignificant(req.Text))
	text := norm.NFC.String(req.Text)
	face, err := fonts.NewFace(f, size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lay := Layout(text, face, size)
	r.log.Debug("layout",
		zap.String("font", key),
		zap.Float64("size", lay.Size),
		zap.Int("line_height", lay.LineHeight),
		zap.Int("lines", len(lay.Lines)),
		zap.Bool("photo", photo))

	DrawLines(img, face, lay, TextColor)

	return &Card{Image: img, Layout: lay, Photo: photo, Font: key}, nil
}

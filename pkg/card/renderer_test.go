package card

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font/opentype"

	"github.com/xob0t/ogcard/pkg/fetch"
	"github.com/xob0t/ogcard/pkg/fonts"
	"github.com/xob0t/ogcard/pkg/generator"
)

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type brokenFonts struct{}

func (brokenFonts) Load(string) (*opentype.Font, error) {
	return nil, errors.New("corrupt font table")
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// pngHeader returns a PNG stream that declares a w×h RGBA image and ends
// after IHDR.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 6, 0, 0, 0) // 8-bit RGBA, no interlace
	buf.Write(binary.BigEndian.AppendUint32(nil, 13))
	buf.Write(chunk)
	buf.Write(binary.BigEndian.AppendUint32(nil, crc32.ChecksumIEEE(chunk)))
	return buf.Bytes()
}

func newTestRenderer(f Fetcher) *Renderer {
	return NewRenderer(Options{Fetcher: f, Fonts: fonts.NewRegistry("", nil)})
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func hasWhite(img *image.RGBA, y0, y1 int) bool {
	for y := max(y0, 0); y < min(y1, img.Bounds().Dy()); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y) == (color.RGBA{255, 255, 255, 255}) {
				return true
			}
		}
	}
	return false
}

func TestGenerateHelloWorld(t *testing.T) {
	r := newTestRenderer(nil)
	req := RenderRequest{Text: "Hello World", Font: "noto-sans-thai"}

	c, err := r.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.Layout.Size != 100 {
		t.Errorf("size = %v, want 100", c.Layout.Size)
	}
	if len(c.Layout.Lines) != 1 {
		t.Errorf("lines = %q, want one", c.Layout.Lines)
	}
	if c.Photo {
		t.Error("no image URL should give a gradient background")
	}

	// Outside the text band the canvas is the untouched gradient.
	grad := generator.DefaultGradient(Width, Height)
	for _, p := range []image.Point{{0, 0}, {Width - 1, 0}, {0, Height - 1}, {Width - 1, Height - 1}} {
		if got, want := c.Image.RGBAAt(p.X, p.Y), grad.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("pixel %v = %v, want gradient %v", p, got, want)
		}
	}
	if !hasWhite(c.Image, c.Layout.StartY, c.Layout.StartY+c.Layout.LineHeight) {
		t.Error("no text pixels found in the text band")
	}

	data, err := r.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("bounds = %v", b)
	}
	for y := 0; y < Height; y += 37 {
		for x := 0; x < Width; x += 41 {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				t.Fatalf("pixel (%d,%d) not opaque", x, y)
			}
		}
	}
}

func TestGenerateLongKanit(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("abcde ", 50))
	c, err := newTestRenderer(nil).Render(context.Background(), RenderRequest{Text: text, Font: "kanit"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.Font != fonts.Kanit {
		t.Errorf("font = %q, want kanit", c.Font)
	}
	if c.Layout.Size != 48 {
		t.Errorf("size = %v, want 48", c.Layout.Size)
	}
	if len(c.Layout.Lines) < 2 {
		t.Errorf("expected wrapped lines, got %d", len(c.Layout.Lines))
	}
}

func TestUnknownFontFallsBack(t *testing.T) {
	c, err := newTestRenderer(nil).Render(context.Background(), RenderRequest{Text: "Hi", Font: "xyz"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.Font != fonts.Default {
		t.Errorf("font = %q, want %q", c.Font, fonts.Default)
	}
}

func TestFontFailureIsFatal(t *testing.T) {
	r := NewRenderer(Options{Fonts: brokenFonts{}})
	if _, err := r.Generate(context.Background(), DefaultRequest()); err == nil {
		t.Fatal("expected error when the font cannot be loaded")
	}
}

func TestImage404UsesGradient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := newTestRenderer(fetch.New(time.Second, nil))
	c, err := r.Render(context.Background(), RenderRequest{Text: "Hello", Font: "kanit", Image: srv.URL + "/missing.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.Photo {
		t.Error("404 background must not count as a photo")
	}
	grad := generator.DefaultGradient(Width, Height)
	if got, want := c.Image.RGBAAt(0, 0), grad.RGBAAt(0, 0); got != want {
		t.Errorf("top-left = %v, want undarkened gradient %v", got, want)
	}
}

func TestUndecodableImageUsesGradient(t *testing.T) {
	f := &fakeFetcher{data: []byte("<html>not an image</html>")}
	c, err := newTestRenderer(f).Render(context.Background(), RenderRequest{Text: "Hi", Image: "http://example.test/x.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want exactly one attempt", f.calls)
	}
	if c.Photo {
		t.Error("undecodable background must fall back to gradient")
	}
}

func TestPhotoBackgroundDarkened(t *testing.T) {
	src := solid(400, 300, color.RGBA{200, 100, 50, 255})
	f := &fakeFetcher{data: pngBytes(t, src)}

	c, err := newTestRenderer(f).Render(context.Background(), RenderRequest{Text: "Hi", Image: "http://example.test/bg.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !c.Photo {
		t.Fatal("expected photo background")
	}
	if b := c.Image.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("bounds = %v", b)
	}

	top := c.Image.RGBAAt(5, 0)
	if !near(top.R, 140, 2) || !near(top.G, 70, 2) || !near(top.B, 35, 2) || top.A != 255 {
		t.Errorf("top row = %v, want ~{140 70 35 255}", top)
	}
	bottom := c.Image.RGBAAt(5, Height-1)
	if !near(bottom.R, 60, 2) {
		t.Errorf("bottom row R = %d, want ~60", bottom.R)
	}
	prev := 255
	for y := 0; y < Height; y += 10 {
		r := int(c.Image.RGBAAt(5, y).R)
		if r > prev {
			t.Fatalf("row %d brighter than the row above", y)
		}
		prev = r
	}
}

func TestNoFetcherFallsBack(t *testing.T) {
	c, err := newTestRenderer(nil).Render(context.Background(), RenderRequest{Text: "Hi", Image: "http://example.test/bg.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.Photo {
		t.Error("renderer without fetcher must use the gradient")
	}
}

func TestCoverFit(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"wide", 1600, 600},
		{"tall", 400, 2000},
		{"same aspect", 400, 600},
		{"tiny", 3, 7},
		{"square", 1000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solid(tt.w, tt.h, color.RGBA{10, 20, 30, 255})
			got := CoverFit(src, Width, Height)
			if b := got.Bounds(); b != image.Rect(0, 0, Width, Height) {
				t.Fatalf("bounds = %v, want 800x1200 at origin", b)
			}
		})
	}
}

func TestCoverFitCropsCenter(t *testing.T) {
	// Left half red, right half blue; the 667x1000 center crop spans
	// x in [1166, 1833) and straddles the seam at 1500.
	src := image.NewRGBA(image.Rect(0, 0, 3000, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 3000; x++ {
			c := color.RGBA{255, 0, 0, 255}
			if x >= 1500 {
				c = color.RGBA{0, 0, 255, 255}
			}
			src.SetRGBA(x, y, c)
		}
	}

	got := CoverFit(src, Width, Height)
	if l := got.RGBAAt(100, 600); l.R < 200 || l.B > 50 {
		t.Errorf("left side = %v, want red", l)
	}
	if r := got.RGBAAt(700, 600); r.B < 200 || r.R > 50 {
		t.Errorf("right side = %v, want blue", r)
	}
}

func TestDrawLinesClipsOutsideCanvas(t *testing.T) {
	face := testFace(t, fonts.Default, 100)
	img := generator.DefaultGradient(Width, Height)
	long := strings.Repeat("W", 30)

	for _, startY := range []int{-500, -60, Height - 20, Height + 500} {
		DrawLines(img, face, LayoutResult{Lines: []string{long, "x"}, Size: 100, LineHeight: 110, StartY: startY}, TextColor)
	}
}

func TestLineX(t *testing.T) {
	face := testFace(t, fonts.Default, 100)
	w := MeasureString(face, "Hello World")
	x := LineX(w)
	if want := (Width - w.Floor()) / 2; x < want-1 || x > want+1 {
		t.Errorf("LineX = %d, want ~%d", x, want)
	}
	if got := LineX(MeasureString(face, strings.Repeat("W", 30))); got != Padding {
		t.Errorf("LineX for over-wide line = %d, want padding %d", got, Padding)
	}
}

func TestCoverFitExtremeAspect(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"one pixel wide", 1, 3000},
		{"one pixel tall", 3000, 1},
		{"single pixel", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverFit(solid(tt.w, tt.h, color.RGBA{90, 90, 90, 255}), Width, Height)
			if b := got.Bounds(); b != image.Rect(0, 0, Width, Height) {
				t.Fatalf("bounds = %v, want 800x1200 at origin", b)
			}
			if c := got.RGBAAt(Width/2, Height/2); !near(c.R, 90, 2) {
				t.Errorf("center = %v, want ~90 gray", c)
			}
		})
	}
}

func TestThinBackgroundRendersQuickly(t *testing.T) {
	data := pngBytes(t, solid(1, 300, color.RGBA{200, 100, 50, 255}))
	f := &fakeFetcher{data: data}

	start := time.Now()
	c, err := newTestRenderer(f).Render(context.Background(), RenderRequest{Text: "Hi", Image: "http://example.test/thin.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !c.Photo {
		t.Error("1x300 image should still be used as the background")
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("render took %v", d)
	}
}

func TestOversizedBackgroundFallsBack(t *testing.T) {
	f := &fakeFetcher{data: pngHeader(100000, 100000)}
	b := &Backgrounds{Fetcher: f}

	if _, err := b.load(context.Background(), "http://example.test/huge.png"); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("load err = %v, want ErrImageTooLarge", err)
	}
	img, photo := b.Background(context.Background(), "http://example.test/huge.png")
	if photo {
		t.Error("oversized image must fall back to the gradient")
	}
	if img.Bounds() != image.Rect(0, 0, Width, Height) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestFontSizeCountsSubmittedRunes(t *testing.T) {
	// 16 decomposed "é" are 32 runes as submitted and 16 once composed.
	text := strings.Repeat("e\u0301", 16)
	c, err := newTestRenderer(nil).Render(context.Background(), RenderRequest{Text: text})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if c.Layout.Size != 88 {
		t.Errorf("size = %v, want 88 for 32 submitted characters", c.Layout.Size)
	}
	if want := strings.Repeat("\u00e9", 16); len(c.Layout.Lines) != 1 || c.Layout.Lines[0] != want {
		t.Errorf("lines = %q, want the composed text", c.Layout.Lines)
	}
}

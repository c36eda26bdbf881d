// Package card renders portrait social-share cards: a photo or gradient
// background with auto-sized, wrapped, centered text on top.
package card

import "golang.org/x/image/font/opentype"

// Canvas geometry shared by every card.
const (
	Width   = 800
	Height  = 1200
	Padding = 40 // left/top padding, and each side of the text column
	Margin  = 80 // extra slack taken off the text column width

	// MaxTextWidth is the widest a wrapped line may be unless it holds a
	// single over-long word.
	MaxTextWidth = Width - 2*Padding - Margin
)

// Request defaults.
const (
	DefaultText = "Hello World"
	DefaultFont = "noto-sans-thai"
)

// RenderRequest is the caller's description of one card.
type RenderRequest struct {
	Text  string `json:"text"`
	Font  string `json:"font"`
	Image string `json:"image,omitempty"` // optional background URL
}

// DefaultRequest returns a request holding the default text and font and
// no background image.
func DefaultRequest() RenderRequest {
	return RenderRequest{Text: DefaultText, Font: DefaultFont}
}

// LayoutResult is the output of the text layout stage.
type LayoutResult struct {
	Lines      []string
	Size       float64 // point size; equals pixels per em at 72 DPI
	LineHeight int     // pixels
	StartY     int     // top of the first line
}

// Height is the total pixel height of the laid out block.
func (l LayoutResult) Height() int {
	return len(l.Lines) * l.LineHeight
}

// FontLoader resolves a font key to a parsed font. Unknown keys resolve to a
// default rather than failing.
type FontLoader interface {
	Load(name string) (*opentype.Font, error)
}

// validator.go - Advisory checks on render requests.
package card

import (
	"fmt"
	"net/url"

	"github.com/xob0t/ogcard/pkg/fonts"
)

// ValidateRequest returns warnings (never fatal errors) about parts of req
// that will be replaced by defaults during rendering.
func ValidateRequest(req RenderRequest) []string {
	var warnings []string

	if req.Font != "" && fonts.Resolve(req.Font) != req.Font {
		warnings = append(warnings, fmt.Sprintf("unknown font %q - using %s", req.Font, fonts.Default))
	}

	if req.Image != "" {
		u, err := url.Parse(req.Image)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("invalid image URL %q - background will be a gradient", req.Image))
		case u.Scheme != "http" && u.Scheme != "https":
			warnings = append(warnings, fmt.Sprintf("image URL scheme %q is not http(s) - background will be a gradient", u.Scheme))
		}
	}

	if CountSignificant(req.Text) == 0 {
		warnings = append(warnings, "text has no visible characters")
	}

	return warnings
}

// FormatRequest returns a human-readable summary of how req will render.
func FormatRequest(req RenderRequest) string {
	n := CountSignificant(req.Text)
	size := FontSize(n)

	bg := "gradient"
	if req.Image != "" {
		bg = "image " + req.Image + " (gradient on failure)"
	}

	s := fmt.Sprintf("Font:        %s\n", fonts.Resolve(req.Font))
	s += fmt.Sprintf("Characters:  %d significant\n", n)
	s += fmt.Sprintf("Size:        %gpt, line height %dpx\n", size, LineHeightFor(size))
	s += fmt.Sprintf("Background:  %s\n", bg)
	s += fmt.Sprintf("Canvas:      %dx%d, text column %dpx\n", Width, Height, MaxTextWidth)
	return s
}

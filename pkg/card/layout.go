// layout.go - Font size selection, width-constrained wrapping and vertical placement.
// All widths come from real glyph advances of the selected face, so Latin and
// Thai text wrap according to their actual proportions.
package card

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// CountSignificant counts the runes in text that are neither ASCII
// punctuation nor whitespace.
func CountSignificant(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsSpace(r) || (r < unicode.MaxASCII && strings.ContainsRune(asciiPunct, r)) {
			continue
		}
		n++
	}
	return n
}

// FontSize picks the point size for a text with n significant characters.
func FontSize(n int) float64 {
	switch {
	case n > 200:
		return 48
	case n > 150:
		return 56
	case n > 100:
		return 64
	case n > 60:
		return 76
	case n > 30:
		return 88
	default:
		return 100
	}
}

// LineHeightFor returns the line advance in whole pixels for a point size.
func LineHeightFor(size float64) int {
	return int(size * 1.1)
}

// MeasureString sums the horizontal advances of every rune in s.
// Kerning is not applied, matching DrawLines.
func MeasureString(face font.Face, s string) fixed.Int26_6 {
	var w fixed.Int26_6
	for _, r := range s {
		adv, _ := face.GlyphAdvance(r)
		w += adv
	}
	return w
}

// Wrap breaks text into lines no wider than maxWidth pixels. Explicit
// newlines start a new paragraph; words are never split, so a word wider
// than maxWidth sits alone on its line and overflows. Blank paragraphs
// produce no line. If nothing at all is produced, text is returned as the
// only line.
func Wrap(text string, face font.Face, maxWidth int) []string {
	limit := fixed.I(maxWidth)
	space, _ := face.GlyphAdvance(' ')

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var (
			line  strings.Builder
			lineW fixed.Int26_6
		)
		for _, word := range strings.Fields(paragraph) {
			wordW := MeasureString(face, word)
			switch {
			case line.Len() == 0:
				line.WriteString(word)
				lineW = wordW
			case lineW+space+wordW <= limit:
				line.WriteByte(' ')
				line.WriteString(word)
				lineW += space + wordW
			default:
				lines = append(lines, line.String())
				line.Reset()
				line.WriteString(word)
				lineW = wordW
			}
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}

	if len(lines) == 0 {
		lines = append(lines, text)
	}
	return lines
}

// Layout wraps text with face (created at size points) and centers the
// block vertically on the canvas. The block never starts above Padding, but
// a block taller than the canvas is allowed to run past the bottom edge.
func Layout(text string, face font.Face, size float64) LayoutResult {
	lines := Wrap(text, face, MaxTextWidth)
	lh := LineHeightFor(size)
	total := len(lines) * lh

	return LayoutResult{
		Lines:      lines,
		Size:       size,
		LineHeight: lh,
		StartY:     max((Height-total)/2, Padding),
	}
}

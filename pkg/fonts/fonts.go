// Package fonts is the process-wide registry of the two card fonts.
//
// Each entry is embedded in the binary and parsed at most once; the parsed
// *opentype.Font is immutable and shared by every request. A registry may
// point at an override directory holding real TTF files with the expected
// file names, in which case those are tried first and the embedded data is
// the fallback.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Font keys accepted by Load. Any other key resolves to Default.
const (
	Default = "noto-sans-thai"
	Kanit   = "kanit"
)

// EnvDir names the environment variable read by the package-level registry.
const EnvDir = "OGCARD_FONT_DIR"

// ErrEmptyFontData is returned when a font source has no bytes.
var ErrEmptyFontData = errors.New("fonts: empty font data")

type entry struct {
	file     string // override file name inside the registry dir
	embedded []byte

	once     sync.Once
	font     *opentype.Font
	err      error
	fallback bool // parsed from embedded data
}

// Registry resolves font keys to parsed fonts.
type Registry struct {
	dir     string
	log     *zap.Logger
	entries map[string]*entry
}

// NewRegistry creates a registry. dir may be empty to use embedded data only.
func NewRegistry(dir string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		dir: dir,
		log: log,
		entries: map[string]*entry{
			Default: {file: "noto-sans-thai-bold.ttf", embedded: gobold.TTF},
			Kanit:   {file: "kanit-bold.ttf", embedded: gomedium.TTF},
		},
	}
}

var (
	stdOnce sync.Once
	std     *Registry
)

func standard() *Registry {
	stdOnce.Do(func() { std = NewRegistry(os.Getenv(EnvDir), nil) })
	return std
}

// Load resolves name against the package-level registry.
func Load(name string) (*opentype.Font, error) {
	return standard().Load(name)
}

// Resolve maps a requested font key to the key that will actually be used.
func Resolve(name string) string {
	if name == Kanit {
		return Kanit
	}
	return Default
}

// Names lists the registered font keys in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load returns the parsed font for name. Unknown names silently fall back to
// Default. Parse failures are returned and are not retried.
func (r *Registry) Load(name string) (*opentype.Font, error) {
	key := Resolve(name)
	if key != name {
		r.log.Debug("unknown font key, using default", zap.String("font", name), zap.String("resolved", key))
	}
	e := r.entries[key]
	e.once.Do(func() {
		e.font, e.fallback, e.err = r.parse(key, e)
	})
	return e.font, e.err
}

// Embedded reports whether name was served from the built-in stand-in font
// rather than an override file. The embedded fonts carry Latin glyphs only.
// It loads name first if needed.
func (r *Registry) Embedded(name string) bool {
	if _, err := r.Load(name); err != nil {
		return false
	}
	return r.entries[Resolve(name)].fallback
}

func (r *Registry) parse(key string, e *entry) (*opentype.Font, bool, error) {
	data, embedded := e.embedded, true
	if r.dir != "" {
		path := filepath.Join(r.dir, e.file)
		custom, err := os.ReadFile(path)
		if err != nil {
			r.log.Warn("could not load font override, using embedded font",
				zap.String("font", key), zap.String("path", path), zap.Error(err))
		} else {
			data, embedded = custom, false
		}
	}
	if len(data) == 0 {
		return nil, embedded, fmt.Errorf("fonts: load %s: %w", key, ErrEmptyFontData)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, embedded, fmt.Errorf("fonts: parse %s: %w", key, err)
	}
	return f, embedded, nil
}

// NewFace returns a face for f at size points. At 72 DPI one point is one
// pixel, so size is also the pixels-per-em scale.
// Faces are not safe for concurrent use; create one per render.
func NewFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("fonts: create face: %w", err)
	}
	return face, nil
}

// Family returns the font's family name, or "" if it has none.
func Family(f *opentype.Font) string {
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

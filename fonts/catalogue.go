// Package fonts resolves a complete four-variant font family (regular,
// bold, italic, bold-italic) from a single family name, querying a font
// catalogue per style and substituting the regular face for variants the
// catalogue cannot provide.
package fonts

import (
	"errors"
	"fmt"
	"strings"
)

// Style is one of the variants queried from a catalogue. Only three styles
// are ever queried; the oblique face stands in for bold and no bold-italic
// lookup is attempted.
type Style int

const (
	StyleRegular Style = iota
	StyleOblique
	StyleItalic
)

func (s Style) String() string {
	switch s {
	case StyleRegular:
		return "regular"
	case StyleOblique:
		return "oblique"
	case StyleItalic:
		return "italic"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

// ErrNotFound reports that a catalogue has no font matching the requested
// family and style.
var ErrNotFound = errors.New("no matching font")

// Handle points at a font a catalogue located: either a file path or an
// in-memory byte buffer, with an index for multi-font containers (.ttc).
type Handle struct {
	Path  string
	Bytes []byte
	Index int
}

// InMemory reports whether the handle carries the font bytes directly.
func (h Handle) InMemory() bool { return len(h.Bytes) > 0 }

// Catalogue is the source of installed or bundled fonts, queried by family
// name and style.
type Catalogue interface {
	SelectBestMatch(family string, style Style) (Handle, error)
}

// StaticCatalogue serves canned handles from memory. It backs embedded
// deployments and test fixtures.
type StaticCatalogue struct {
	families map[string]map[Style]Handle
}

// NewStaticCatalogue creates an empty in-memory catalogue.
func NewStaticCatalogue() *StaticCatalogue {
	return &StaticCatalogue{families: map[string]map[Style]Handle{}}
}

// Add registers a handle for a family/style pair, replacing any previous one.
func (c *StaticCatalogue) Add(family string, style Style, h Handle) {
	key := normalizeFamily(family)
	variants := c.families[key]
	if variants == nil {
		variants = map[Style]Handle{}
		c.families[key] = variants
	}
	variants[style] = h
}

// SelectBestMatch implements Catalogue.
func (c *StaticCatalogue) SelectBestMatch(family string, style Style) (Handle, error) {
	variants, ok := c.families[normalizeFamily(family)]
	if !ok {
		return Handle{}, fmt.Errorf("family %q: %w", family, ErrNotFound)
	}
	h, ok := variants[style]
	if !ok {
		return Handle{}, fmt.Errorf("family %q style %s: %w", family, style, ErrNotFound)
	}
	return h, nil
}

// normalizeFamily folds case and separators so that "DejaVu Sans",
// "dejavu-sans" and "DejaVuSans" all name the same family.
func normalizeFamily(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

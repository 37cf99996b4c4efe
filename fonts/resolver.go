package fonts

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoRegularFont reports that the regular face could not be obtained.
// Every other slot is filled from the regular face, so this is the one
// failure resolution cannot recover from.
var ErrNoRegularFont = errors.New("no regular font available")

// Data is the uniform loadable font representation handed to the renderer:
// raw font bytes plus the index within a multi-font container.
type Data struct {
	Bytes []byte
	Index int
}

// Loader converts a catalogue handle into loadable font data. The rendering
// backend supplies a loader that also parse-checks the bytes.
type Loader interface {
	Load(h Handle) (*Data, error)
}

// FileLoader is the plain loader: in-memory handles pass through, path
// handles are read from disk. No parse validation happens here.
type FileLoader struct{}

// Load implements Loader.
func (FileLoader) Load(h Handle) (*Data, error) {
	if h.InMemory() {
		return &Data{Bytes: h.Bytes, Index: h.Index}, nil
	}
	if h.Path == "" {
		return nil, fmt.Errorf("font handle has neither bytes nor path")
	}
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", h.Path, err)
	}
	return &Data{Bytes: data, Index: h.Index}, nil
}

// Family is a fully populated four-variant font family. Regular is always
// present; the other slots alias the regular data when their variant could
// not be resolved. Each resolution call owns its Family; nothing is shared
// between calls.
type Family struct {
	Name       string
	Regular    *Data
	Bold       *Data
	Italic     *Data
	BoldItalic *Data
	// Fallbacks lists the queried styles that fell back to the regular
	// face, for caller-side reporting. Resolution itself never fails over
	// a missing non-regular variant.
	Fallbacks []Style
}

// queriedStyles is the fixed set of catalogue lookups per resolution. The
// oblique face fills the bold slot; bold-italic is never queried and always
// reuses the regular face.
var queriedStyles = [...]Style{StyleRegular, StyleOblique, StyleItalic}

// Resolve builds a complete font family for the given family name. A
// failed query or load for a non-regular style falls back to the regular
// face and is recorded in Fallbacks; a failed query or load for the
// regular style aborts with ErrNoRegularFont. Given the same catalogue
// state the result is identical across calls.
func Resolve(name string, cat Catalogue, loader Loader) (*Family, error) {
	if cat == nil {
		return nil, fmt.Errorf("resolve %q: catalogue is nil", name)
	}
	if loader == nil {
		loader = FileLoader{}
	}

	resolved := make(map[Style]*Data, len(queriedStyles))
	var fallbacks []Style
	for _, style := range queriedStyles {
		handle, err := cat.SelectBestMatch(name, style)
		if err == nil {
			var data *Data
			if data, err = loader.Load(handle); err == nil {
				resolved[style] = data
				continue
			}
		}
		if style == StyleRegular {
			return nil, fmt.Errorf("resolve %q: %w: %v", name, ErrNoRegularFont, err)
		}
		fallbacks = append(fallbacks, style)
	}

	regular := resolved[StyleRegular]
	fam := &Family{
		Name:       name,
		Regular:    regular,
		Bold:       regular,
		Italic:     regular,
		BoldItalic: regular, // bold-italic is never queried; always the regular face
		Fallbacks:  fallbacks,
	}
	if d := resolved[StyleOblique]; d != nil {
		fam.Bold = d
	}
	if d := resolved[StyleItalic]; d != nil {
		fam.Italic = d
	}
	return fam, nil
}

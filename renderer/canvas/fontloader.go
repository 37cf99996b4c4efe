package canvasrenderer

import (
	"fmt"

	"github.com/tdewolff/canvas"

	"github.com/parrotmac/labelbatch/fonts"
)

// FontLoader implements fonts.Loader on top of the plain file loader,
// additionally parse-checking the bytes through canvas. A font that does
// not parse fails at resolution time, where the resolver can still fall
// back to the regular face, instead of mid-render.
type FontLoader struct {
	base fonts.FileLoader
}

// NewFontLoader creates a parse-validating font loader.
func NewFontLoader() *FontLoader { return &FontLoader{} }

// Load implements fonts.Loader.
func (l *FontLoader) Load(h fonts.Handle) (*fonts.Data, error) {
	data, err := l.base.Load(h)
	if err != nil {
		return nil, err
	}
	probe := canvas.NewFontFamily("probe")
	if err := probe.LoadFont(data.Bytes, data.Index, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("parse font data: %w", err)
	}
	return data, nil
}

package renderer

import "github.com/parrotmac/labelbatch/layout"

// Renderer turns a layout result into the final artifact, eg a PDF.
// Render returns the generated binary data.
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

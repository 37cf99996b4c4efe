package layout

// BuildOptions configures the dependencies of the layout stage.
type BuildOptions struct {
	Typesetter Typesetter
	Debug      DebugOptions
}

// DebugOptions controls debug-related output.
type DebugOptions struct {
	Outlines bool // emit label-cell outline rectangles into the result
}

// Typesetter splits text into drawable lines under a width constraint using
// the actual font metrics. Implemented by the rendering backend; tests use
// a stub. All lengths are mm.
type Typesetter interface {
	LayoutLines(content string, width float64, style string, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

package layout

// This file defines the layout result shared by the builder, the renderer
// and the debug JSON output. All coordinates are page coordinates in mm
// with the origin at the top-left corner.

// Result holds the laid-out pages plus the resources needed to render them.
type Result struct {
	Pages []Page       `json:"pages"`
	Font  FontSpec     `json:"font"`
	Meta  DocumentMeta `json:"meta"`
	// Warnings carries non-fatal configuration issues, e.g. a label grid
	// that computes to zero cells.
	Warnings []string `json:"warnings,omitempty"`
}

// FontSpec names the font family the whole document is rendered with.
// Resolution against the system catalogue happens outside the layout stage.
type FontSpec struct {
	Family string  `json:"family"`
	SizeMM float64 `json:"size"`       // font size (mm)
	LineHM float64 `json:"lineHeight"` // line height (mm)
	Color  Color   `json:"color"`
}

// Color uses 0-255 RGB values.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page records the page size, its margins and the elements to render.
type Page struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Margin Margin    `json:"margin"`
	Texts  []TextBox `json:"texts"`
	// Outlines are the label-cell rectangles, emitted when debug outlines
	// are enabled so registration can be checked against the die-cut.
	Outlines []Rect `json:"outlines,omitempty"`
}

// Margin is in mm.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox is one block of label text with resolved coordinates.
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	FontSize   float64    `json:"fontSize"`
	Style      string     `json:"style,omitempty"` // regular (default) / bold / italic / bold-italic
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align,omitempty"` // left (default) / center / right
	Wrap       string     `json:"wrap,omitempty"`  // anywhere (default) / break-word / nowrap
}

// TextLine is one typeset line with its measured width and height.
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Rect is an outline rectangle (mm).
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
}

// DocumentMeta holds the PDF metadata.
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// This file models label-sheet geometry: the page, its margins, the label
// bounding box and the computed grid of label cells. Grid math has to be
// exact — a drifting cell prints over the die-cut on real label stock.

// Insets is a set of four margins bounding the printable area.
type Insets struct {
	Top    Length `json:"top"`
	Right  Length `json:"right"`
	Bottom Length `json:"bottom"`
	Left   Length `json:"left"`
}

// BoundingBox is the size of a single label.
type BoundingBox struct {
	Width  Length `json:"width"`
	Height Length `json:"height"`
}

// PageLayout describes one sheet of label stock. Values are immutable for
// the lifetime of a generation run; presets are copied, never shared.
type PageLayout struct {
	Name      string      `json:"name"`
	Width     Length      `json:"width"`
	Height    Length      `json:"height"`
	Margin    Insets      `json:"margin"`
	Label     BoundingBox `json:"label"`
	RowGap    Length      `json:"rowGap"`
	ColumnGap Length      `json:"columnGap"`
}

// LabelCell is one computed label rectangle. Coordinates are page
// coordinates in mm with the origin at the top-left corner.
type LabelCell struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PrintableWidth returns the page width minus the left/right margins, in mm.
func (p PageLayout) PrintableWidth() float64 {
	return p.Width.ToMM() - p.Margin.Left.ToMM() - p.Margin.Right.ToMM()
}

// PrintableHeight returns the page height minus the top/bottom margins, in mm.
func (p PageLayout) PrintableHeight() float64 {
	return p.Height.ToMM() - p.Margin.Top.ToMM() - p.Margin.Bottom.ToMM()
}

// Validate checks the layout invariants: non-negative measurements, a
// positive label box and margins that leave a printable area.
func (p PageLayout) Validate() error {
	for _, l := range []struct {
		name string
		len  Length
	}{
		{"width", p.Width}, {"height", p.Height},
		{"margin.top", p.Margin.Top}, {"margin.right", p.Margin.Right},
		{"margin.bottom", p.Margin.Bottom}, {"margin.left", p.Margin.Left},
		{"rowGap", p.RowGap}, {"columnGap", p.ColumnGap},
	} {
		if l.len.Value < 0 {
			return fmt.Errorf("layout %s: %s must not be negative", p.Name, l.name)
		}
	}
	if p.Width.Value <= 0 || p.Height.Value <= 0 {
		return fmt.Errorf("layout %s: page size must be positive", p.Name)
	}
	if p.Label.Width.Value <= 0 || p.Label.Height.Value <= 0 {
		return fmt.Errorf("layout %s: label size must be positive", p.Name)
	}
	if p.Margin.Top.ToMM()+p.Margin.Bottom.ToMM() >= p.Height.ToMM() {
		return fmt.Errorf("layout %s: vertical margins exceed page height", p.Name)
	}
	if p.Margin.Left.ToMM()+p.Margin.Right.ToMM() >= p.Width.ToMM() {
		return fmt.Errorf("layout %s: horizontal margins exceed page width", p.Name)
	}
	return nil
}

// gridEpsilon absorbs float noise before flooring so that a grid which fits
// exactly (e.g. ten 1in rows in a 10in printable height) never loses a row.
const gridEpsilon = 1e-9

// Columns returns how many label columns fit into the printable width.
func (p PageLayout) Columns() int {
	return fitCount(p.PrintableWidth(), p.Label.Width.ToMM(), p.ColumnGap.ToMM())
}

// Rows returns how many label rows fit into the printable height.
func (p PageLayout) Rows() int {
	return fitCount(p.PrintableHeight(), p.Label.Height.ToMM(), p.RowGap.ToMM())
}

func fitCount(printable, label, gap float64) int {
	if label <= 0 || printable <= 0 {
		return 0
	}
	n := int(math.Floor((printable+gap)/(label+gap) + gridEpsilon))
	if n < 0 {
		return 0
	}
	return n
}

// ComputeGrid returns the label cells tiling the printable area, row-major:
// top-to-bottom, then left-to-right, matching the order an operator expects
// labels to fill on the sheet. The result is in mm. A label that does not
// fit the printable area yields an empty grid, not an error; callers may
// surface that as a configuration warning.
func ComputeGrid(p PageLayout) []LabelCell {
	cols := p.Columns()
	rows := p.Rows()
	if cols == 0 || rows == 0 {
		return nil
	}

	var (
		left    = p.Margin.Left.ToMM()
		top     = p.Margin.Top.ToMM()
		labelW  = p.Label.Width.ToMM()
		labelH  = p.Label.Height.ToMM()
		strideX = labelW + p.ColumnGap.ToMM()
		strideY = labelH + p.RowGap.ToMM()
	)

	cells := make([]LabelCell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, LabelCell{
				X:      left + float64(c)*strideX,
				Y:      top + float64(r)*strideY,
				Width:  labelW,
				Height: labelH,
			})
		}
	}
	return cells
}

// Avery18160 is the classic 8.5×11in address-label sheet this tool was
// written for: https://www.avery.com/templates/18160
var Avery18160 = PageLayout{
	Name:   "avery-18160",
	Width:  Inches(8.5),
	Height: Inches(11.0),
	Margin: Insets{
		Top:    Inches(0.5),
		Right:  Inches(0.125),
		Bottom: Inches(0.5),
		Left:   Inches(0.125),
	},
	Label:     BoundingBox{Width: Inches(2.625), Height: Inches(1.0)},
	RowGap:    Inches(0),
	ColumnGap: Inches(0.25),
}

// Avery5160 shares the 2.625×1in label but with the narrow side margins of
// the 5160 die, fitting three columns of ten.
var Avery5160 = PageLayout{
	Name:   "avery-5160",
	Width:  Inches(8.5),
	Height: Inches(11.0),
	Margin: Insets{
		Top:    Inches(0.5),
		Right:  Inches(0.1875),
		Bottom: Inches(0.5),
		Left:   Inches(0.1875),
	},
	Label:     BoundingBox{Width: Inches(2.625), Height: Inches(1.0)},
	RowGap:    Inches(0),
	ColumnGap: Inches(0.125),
}

// Avery5163 is the 4×2in shipping-label sheet, two columns of five.
var Avery5163 = PageLayout{
	Name:   "avery-5163",
	Width:  Inches(8.5),
	Height: Inches(11.0),
	Margin: Insets{
		Top:    Inches(0.5),
		Right:  Inches(0.15625),
		Bottom: Inches(0.5),
		Left:   Inches(0.15625),
	},
	Label:     BoundingBox{Width: Inches(4.0), Height: Inches(2.0)},
	RowGap:    Inches(0),
	ColumnGap: Inches(0.1875),
}

var presets = map[string]PageLayout{
	Avery18160.Name: Avery18160,
	Avery5160.Name:  Avery5160,
	Avery5163.Name:  Avery5163,
}

// Preset looks up a named sheet layout. The returned value is a copy.
func Preset(name string) (PageLayout, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// PresetNames lists the known sheet layouts, for CLI help output.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

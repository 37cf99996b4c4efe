package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/parrotmac/labelbatch/binding"
	"github.com/parrotmac/labelbatch/dsl"
)

const (
	// cellPadding insets label text from the cell edge (mm) so text never
	// touches the die-cut.
	cellPadding = 1.5
	// defaultFontSizePt/defaultLineHeight are used when the font section
	// omits them.
	defaultFontSizePt  = 10.0
	defaultLineHeightX = 1.2
)

// Build lays out one label per data record into the sheet's grid cells,
// row-major, starting a new page whenever the records outgrow the cells on
// a sheet. A grid that computes to zero cells is a configuration warning,
// not an error: the result carries a single empty page plus a warning line.
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: missing typesetter backend")
	}

	sheet, err := resolveSheet(doc)
	if err != nil {
		return nil, err
	}
	if err := sheet.Validate(); err != nil {
		return nil, err
	}

	font, err := DocumentFont(doc)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc)

	labelSec := findLabel(doc)
	if labelSec == nil {
		return nil, fmt.Errorf("document has no label section")
	}
	template, attrs := labelTemplate(labelSec)
	if len(template) == 0 {
		return nil, fmt.Errorf("label section has no template lines")
	}

	result := &Result{Font: font, Meta: meta}

	grid := ComputeGrid(sheet)
	if len(grid) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"layout %s: label %g×%g%s does not fit the printable area, no cells computed",
			sheet.Name, sheet.Label.Width.Value, sheet.Label.Height.Value,
			UnitToString(sheet.Label.Width.Unit)))
		result.Pages = []Page{emptyPage(sheet)}
		return result, nil
	}

	records := binding.Records(data)
	if len(records) == 0 {
		// no data: render the raw template once, useful for proofs
		records = []any{nil}
	}

	collector := newSheetCollector(sheet)
	for i, record := range records {
		if i > 0 && i%len(grid) == 0 {
			collector.newPage()
		}
		cell := grid[i%len(grid)]
		tb, err := composeLabel(template, record, cell, font, attrs, opts.Typesetter)
		if err != nil {
			return nil, err
		}
		collector.curr().texts = append(collector.curr().texts, tb)
	}
	if opts.Debug.Outlines {
		collector.addOutlines(grid)
	}
	result.Pages = collector.pages()
	return result, nil
}

// composeLabel interpolates one record into the template, typesets it into
// the cell and centers the resulting block vertically.
func composeLabel(template []string, record any, cell LabelCell, font FontSpec, attrs map[string]string, ts Typesetter) (TextBox, error) {
	content := strings.Join(template, "\n")
	if record != nil {
		content = binding.Interpolate(content, record)
	}

	wrap := normalizeWrap(attrs["wrap"])
	style := normalizeStyle(attrs["style"])
	width := cell.Width - 2*cellPadding
	if width <= 0 {
		width = cell.Width
	}

	lines, err := ts.LayoutLines(content, width, style, font.SizeMM, font.LineHM, wrap)
	if err != nil {
		return TextBox{}, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: width, Height: font.SizeMM}}
	}

	totalHeight := 0.0
	defaultLeading := math.Max(font.LineHM-font.SizeMM, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = font.SizeMM
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}

	y := cell.Y + cellPadding
	if slack := cell.Height - totalHeight; slack > 2*cellPadding {
		y = cell.Y + slack/2
	}

	tb := TextBox{
		Content:    content,
		X:          cell.X + cellPadding,
		Y:          y,
		Width:      width,
		LineHeight: font.LineHM,
		FontSize:   font.SizeMM,
		Style:      style,
		Color:      font.Color,
		Lines:      lines,
		Height:     totalHeight,
		Wrap:       wrap,
	}
	if a := normalizeAlign(attrs["align"]); a != "" {
		tb.Align = a
	}
	return tb, nil
}

type sheetAccumulator struct {
	texts    []TextBox
	outlines []Rect
}

// sheetCollector accumulates pages of identical geometry; every page of a
// run is the same sheet of label stock.
type sheetCollector struct {
	sheet   PageLayout
	accs    []*sheetAccumulator
	current int
}

func newSheetCollector(sheet PageLayout) *sheetCollector {
	sc := &sheetCollector{sheet: sheet}
	sc.newPage()
	return sc
}

func (sc *sheetCollector) newPage() *sheetAccumulator {
	acc := &sheetAccumulator{}
	sc.accs = append(sc.accs, acc)
	sc.current = len(sc.accs) - 1
	return acc
}

func (sc *sheetCollector) curr() *sheetAccumulator {
	if len(sc.accs) == 0 {
		return sc.newPage()
	}
	return sc.accs[sc.current]
}

// addOutlines emits every cell's rectangle on every page.
func (sc *sheetCollector) addOutlines(grid []LabelCell) {
	for _, acc := range sc.accs {
		for _, cell := range grid {
			acc.outlines = append(acc.outlines, Rect{
				X:           cell.X,
				Y:           cell.Y,
				Width:       cell.Width,
				Height:      cell.Height,
				StrokeColor: Color{R: 200, G: 200, B: 200},
				StrokeWidth: 0.2,
			})
		}
	}
}

func (sc *sheetCollector) pages() []Page {
	out := make([]Page, len(sc.accs))
	for i, acc := range sc.accs {
		page := emptyPage(sc.sheet)
		page.Texts = acc.texts
		page.Outlines = acc.outlines
		out[i] = page
	}
	return out
}

func emptyPage(sheet PageLayout) Page {
	return Page{
		Width:  sheet.Width.ToMM(),
		Height: sheet.Height.ToMM(),
		Margin: Margin{
			Top:    sheet.Margin.Top.ToMM(),
			Right:  sheet.Margin.Right.ToMM(),
			Bottom: sheet.Margin.Bottom.ToMM(),
			Left:   sheet.Margin.Left.ToMM(),
		},
	}
}

// resolveSheet picks the page layout: a named preset, a custom measurement
// block, or the default sheet when the document has no layout section.
func resolveSheet(doc *dsl.Document) (PageLayout, error) {
	var sec *dsl.LayoutSection
	for _, s := range doc.Sections {
		if s.Layout != nil {
			sec = s.Layout
			break
		}
	}
	if sec == nil {
		return Avery18160, nil
	}
	if sec.Preset != nil {
		name := string(*sec.Preset)
		p, ok := Preset(name)
		if !ok {
			return PageLayout{}, fmt.Errorf("unknown layout preset %q (known: %s)", name, strings.Join(PresetNames(), ", "))
		}
		return p, nil
	}
	return customSheet(sec.Block)
}

// customSheet builds a PageLayout from a layout block. Unit-less numbers
// are taken as inches, the unit label stock is specified in.
func customSheet(block *dsl.Block) (PageLayout, error) {
	sheet := PageLayout{Name: "custom"}
	if block == nil {
		return sheet, fmt.Errorf("layout block is empty")
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		key := strings.ToLower(stmt.Assignment.Key)
		val := stmt.Assignment.Value
		switch key {
		case "width":
			sheet.Width = assignedLength(val)
		case "height":
			sheet.Height = assignedLength(val)
		case "margin":
			m, err := marginLengths(val)
			if err != nil {
				return sheet, err
			}
			sheet.Margin = m
		case "label":
			if val.Array == nil || len(val.Array.Values) != 2 {
				return sheet, fmt.Errorf("label expects [width, height]")
			}
			sheet.Label.Width = assignedLength(val.Array.Values[0])
			sheet.Label.Height = assignedLength(val.Array.Values[1])
		case "row-gap", "rowgap":
			sheet.RowGap = assignedLength(val)
		case "column-gap", "columngap":
			sheet.ColumnGap = assignedLength(val)
		}
	}
	return sheet, nil
}

// marginLengths applies CSS-like shorthand: one value for all sides, two
// for vertical/horizontal, four for top/right/bottom/left.
func marginLengths(val *dsl.Value) (Insets, error) {
	if val.Array == nil {
		v := assignedLength(val)
		return Insets{Top: v, Right: v, Bottom: v, Left: v}, nil
	}
	vals := make([]Length, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		vals = append(vals, assignedLength(item))
	}
	switch len(vals) {
	case 1:
		return Insets{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}, nil
	case 2:
		return Insets{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 4:
		return Insets{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Insets{}, fmt.Errorf("margin expects 1, 2 or 4 values, got %d", len(vals))
	}
}

func assignedLength(val *dsl.Value) Length {
	raw := ""
	switch {
	case val == nil:
		return Length{}
	case val.Number != nil:
		raw = *val.Number
	case val.String != nil:
		raw = string(*val.String)
	}
	l := ParseLengthStr(raw)
	if l.Unit == UnitNone {
		l.Unit = UnitIN
	}
	return l
}

// DocumentFont reads the font section into renderer-unit (mm) values. It
// is exported because font resolution against the catalogue happens before
// the layout stage and needs the declared family name.
func DocumentFont(doc *dsl.Document) (FontSpec, error) {
	spec := FontSpec{
		Family: "Arial",
		SizeMM: defaultFontSizePt * PtToMm,
		Color:  Color{R: 30, G: 30, B: 30},
	}
	lineFactor := defaultLineHeightX
	lineAbs := 0.0

	for _, s := range doc.Sections {
		if s.Font == nil || s.Font.Block == nil {
			continue
		}
		for _, stmt := range s.Font.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			val := stmt.Assignment.Value
			switch key {
			case "family":
				if val.String != nil {
					spec.Family = string(*val.String)
				}
			case "size":
				if val.Number != nil {
					l := ParseLengthStr(*val.Number)
					if l.Unit == UnitNone {
						l.Unit = UnitPT
					}
					if mm := l.ToMM(); mm > 0 {
						spec.SizeMM = mm
					}
				}
			case "line-height", "lineheight":
				if val.Number == nil {
					continue
				}
				v := strings.TrimSpace(*val.Number)
				if strings.HasSuffix(v, "x") {
					if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 {
						lineFactor = f
						lineAbs = 0
					}
				} else if l := ParseLengthStr(v); l.Unit != UnitNone && l.Value > 0 {
					lineAbs = l.ToMM()
				}
			case "color":
				raw := ""
				if val.Color != nil {
					raw = *val.Color
				} else if val.String != nil {
					raw = string(*val.String)
				}
				if raw != "" {
					c, err := parseColor(raw)
					if err != nil {
						return spec, err
					}
					spec.Color = c
				}
			}
		}
		break
	}

	if lineAbs > 0 {
		spec.LineHM = lineAbs
	} else {
		spec.LineHM = spec.SizeMM * lineFactor
	}
	return spec, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "labelbatch"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func findLabel(doc *dsl.Document) *dsl.LabelSection {
	for _, section := range doc.Sections {
		if section.Label != nil {
			return section.Label
		}
	}
	return nil
}

// labelTemplate extracts the template lines and the key/value attribute
// arguments (align/wrap/style) from the label section.
func labelTemplate(sec *dsl.LabelSection) ([]string, map[string]string) {
	attrs := map[string]string{}
	args := sec.Args
	for i := 0; i+1 < len(args); i += 2 {
		attrs[strings.ToLower(args[i].Value)] = args[i+1].Value
	}

	var lines []string
	if sec.Block != nil {
		for _, stmt := range sec.Block.Statements {
			if stmt.Text != nil {
				lines = append(lines, string(stmt.Text.Value))
			}
		}
	}
	return lines, attrs
}

func normalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	default:
		return "anywhere"
	}
}

func normalizeAlign(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start":
		return "left"
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	default:
		return ""
	}
}

func normalizeStyle(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bold":
		return "bold"
	case "italic":
		return "italic"
	case "bold-italic", "bolditalic":
		return "bold-italic"
	default:
		return "regular"
	}
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("cannot parse color value %q", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

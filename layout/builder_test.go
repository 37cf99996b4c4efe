package layout

import (
	"strings"
	"testing"

	"github.com/parrotmac/labelbatch/dsl"
)

const addressTemplate = `
labels AddressSheet v1 {
  meta {
    title: "Mailing labels"
    author: "Shipping"
    keywords: ["mailing", "batch"]
  }

  layout "avery-18160"

  font {
    family: "Arial"
    size: 10pt
    line-height: 1.2x
  }

  label align center {
    "${name}"
    "${street}"
    "${city}, ${state} ${zip}"
  }
}
`

// stubTypesetter splits on newlines and reports one line per template line,
// each as tall as the font size. Tests stay independent of real font
// metrics this way.
type stubTypesetter struct{}

func (stubTypesetter) LayoutLines(content string, width float64, style string, fontSize, lineHeight float64, wrap string) ([]TextLine, error) {
	parts := strings.Split(content, "\n")
	lines := make([]TextLine, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, TextLine{Content: p, Width: width, Height: fontSize})
	}
	return lines, nil
}

func mustParse(t *testing.T, src string) *dsl.Document {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func record(name, street, city, state, zip string) map[string]interface{} {
	return map[string]interface{}{
		"name": name, "street": street, "city": city, "state": state, "zip": zip,
	}
}

func TestBuildFillsCellsRowMajor(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	data := []interface{}{
		record("Ada Lovelace", "12 Analytical Way", "London", "LN", "00001"),
		record("Grace Hopper", "7 Compiler Ct", "Arlington", "VA", "22201"),
		record("Edsger Dijkstra", "1 Shortest Path", "Austin", "TX", "73301"),
	}

	result, err := Build(doc, data, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}
	texts := result.Pages[0].Texts
	if len(texts) != 3 {
		t.Fatalf("expected 3 text boxes, got %d", len(texts))
	}

	grid := ComputeGrid(Avery18160)
	for i, tb := range texts {
		cell := grid[i]
		if tb.X < cell.X || tb.X+tb.Width > cell.X+cell.Width+1e-6 {
			t.Fatalf("text %d escapes its cell horizontally: x=%g w=%g cell=%+v", i, tb.X, tb.Width, cell)
		}
		if tb.Y < cell.Y || tb.Y+tb.Height > cell.Y+cell.Height+1e-6 {
			t.Fatalf("text %d escapes its cell vertically: y=%g h=%g cell=%+v", i, tb.Y, tb.Height, cell)
		}
	}

	// records 0 and 1 share a row, record 2 starts the next one
	if !almostEqual(texts[1].X-texts[0].X, grid[1].X-grid[0].X) {
		t.Fatalf("second label not one column stride over: %g vs %g", texts[1].X-texts[0].X, grid[1].X-grid[0].X)
	}
	if !almostEqual(texts[2].X, texts[0].X) || texts[2].Y <= texts[0].Y {
		t.Fatalf("third label should wrap to the next row: %+v vs %+v", texts[2], texts[0])
	}
}

func TestBuildInterpolatesRecords(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	data := []interface{}{record("Ada Lovelace", "12 Analytical Way", "London", "LN", "00001")}

	result, err := Build(doc, data, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	content := result.Pages[0].Texts[0].Content
	if !strings.Contains(content, "Ada Lovelace") || !strings.Contains(content, "London, LN 00001") {
		t.Fatalf("record not interpolated into template: %q", content)
	}
	if strings.Contains(content, "${") {
		t.Fatalf("unresolved placeholder left in content: %q", content)
	}
}

func TestBuildPaginates(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	var data []interface{}
	for i := 0; i < 25; i++ {
		data = append(data, record("Recipient", "1 Main St", "Springfield", "IL", "62701"))
	}

	result, err := Build(doc, data, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("25 records on a 20-cell sheet should take 2 pages, got %d", len(result.Pages))
	}
	if got := len(result.Pages[0].Texts); got != 20 {
		t.Fatalf("first page should be full with 20 labels, got %d", got)
	}
	if got := len(result.Pages[1].Texts); got != 5 {
		t.Fatalf("second page should carry the 5 remaining labels, got %d", got)
	}
	// overflow restarts at the first cell
	if !almostEqual(result.Pages[1].Texts[0].X, result.Pages[0].Texts[0].X) {
		t.Fatalf("page 2 should start at the first cell again")
	}
}

func TestBuildNoDataRendersTemplateOnce(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	result, err := Build(doc, nil, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Pages) != 1 || len(result.Pages[0].Texts) != 1 {
		t.Fatalf("expected a single proof label, got %d pages", len(result.Pages))
	}
	if !strings.Contains(result.Pages[0].Texts[0].Content, "${name}") {
		t.Fatalf("proof should keep placeholders visible: %q", result.Pages[0].Texts[0].Content)
	}
}

func TestBuildZeroCellGridWarns(t *testing.T) {
	src := `
labels Oversized v1 {
  layout {
    width: 8.5in
    height: 11in
    margin: [0.5in, 0.125in]
    label: [9in, 1in]
  }

  label {
    "${name}"
  }
}
`
	doc := mustParse(t, src)
	result, err := Build(doc, []interface{}{record("A", "", "", "", "")}, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("zero-cell grid must not be an error: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected a warning for a label that does not fit")
	}
	if len(result.Pages) != 1 || len(result.Pages[0].Texts) != 0 {
		t.Fatalf("expected one empty page, got %+v", result.Pages)
	}
}

func TestBuildOutlines(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	result, err := Build(doc, nil, BuildOptions{
		Typesetter: stubTypesetter{},
		Debug:      DebugOptions{Outlines: true},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(result.Pages[0].Outlines); got != 20 {
		t.Fatalf("expected an outline per cell, got %d", got)
	}
	first := result.Pages[0].Outlines[0]
	cell := ComputeGrid(Avery18160)[0]
	if !almostEqual(first.X, cell.X) || !almostEqual(first.Width, cell.Width) {
		t.Fatalf("outline does not match cell: %+v vs %+v", first, cell)
	}
}

func TestBuildCentersBlockVertically(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	result, err := Build(doc, nil, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tb := result.Pages[0].Texts[0]
	cell := ComputeGrid(Avery18160)[0]
	want := cell.Y + (cell.Height-tb.Height)/2
	if !almostEqual(tb.Y, want) {
		t.Fatalf("block not centered: y=%g want %g", tb.Y, want)
	}
}

func TestBuildMeta(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	result, err := Build(doc, nil, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.Meta.Title != "Mailing labels" || result.Meta.Author != "Shipping" {
		t.Fatalf("meta not collected: %+v", result.Meta)
	}
	if len(result.Meta.Keywords) != 2 || result.Meta.Keywords[0] != "mailing" {
		t.Fatalf("keywords not collected: %+v", result.Meta.Keywords)
	}
	if result.Meta.Creator != "labelbatch" {
		t.Fatalf("default creator missing: %q", result.Meta.Creator)
	}
}

func TestBuildRequiresTypesetter(t *testing.T) {
	doc := mustParse(t, addressTemplate)
	if _, err := Build(doc, nil, BuildOptions{}); err == nil {
		t.Fatalf("expected error without a typesetter")
	}
}

func TestBuildUnknownPreset(t *testing.T) {
	src := `
labels Unknown v1 {
  layout "avery-0000"

  label {
    "x"
  }
}
`
	doc := mustParse(t, src)
	if _, err := Build(doc, nil, BuildOptions{Typesetter: stubTypesetter{}}); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}

func TestDocumentFontDefaults(t *testing.T) {
	doc := mustParse(t, `
labels Bare v1 {
  label {
    "x"
  }
}
`)
	font, err := DocumentFont(doc)
	if err != nil {
		t.Fatalf("DocumentFont: %v", err)
	}
	if font.Family != "Arial" {
		t.Fatalf("default family = %q, want Arial", font.Family)
	}
	if !almostEqual(font.SizeMM, 10*PtToMm) {
		t.Fatalf("default size = %gmm, want 10pt", font.SizeMM)
	}
	if !almostEqual(font.LineHM, font.SizeMM*1.2) {
		t.Fatalf("default line height = %gmm, want 1.2x", font.LineHM)
	}
}

func TestDocumentFontDeclared(t *testing.T) {
	doc := mustParse(t, `
labels Styled v1 {
  font {
    family: "DejaVu Sans"
    size: 12pt
    line-height: 5mm
    color: #336699
  }

  label {
    "x"
  }
}
`)
	font, err := DocumentFont(doc)
	if err != nil {
		t.Fatalf("DocumentFont: %v", err)
	}
	if font.Family != "DejaVu Sans" {
		t.Fatalf("family = %q", font.Family)
	}
	if !almostEqual(font.SizeMM, 12*PtToMm) {
		t.Fatalf("size = %gmm, want 12pt", font.SizeMM)
	}
	if !almostEqual(font.LineHM, 5) {
		t.Fatalf("absolute line height = %gmm, want 5mm", font.LineHM)
	}
	if (font.Color != Color{R: 0x33, G: 0x66, B: 0x99}) {
		t.Fatalf("color = %+v", font.Color)
	}
}

func TestCustomSheetLayout(t *testing.T) {
	src := `
labels Custom v1 {
  layout {
    width: 4in
    height: 6in
    margin: 0.5in
    label: [3in, 1in]
    row-gap: 0.25in
  }

  label {
    "${name}"
  }
}
`
	doc := mustParse(t, src)
	result, err := Build(doc, nil, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// printable height 5in, rows of 1in label + 0.25in gap: 4 rows, 1 column
	if got := len(result.Pages[0].Texts); got != 1 {
		t.Fatalf("expected the single proof label, got %d", got)
	}
	page := result.Pages[0]
	if !almostEqual(page.Width, 4*InToMm) || !almostEqual(page.Height, 6*InToMm) {
		t.Fatalf("custom page size not honored: %gx%g", page.Width, page.Height)
	}
	if !almostEqual(page.Margin.Left, 0.5*InToMm) {
		t.Fatalf("shorthand margin not applied: %+v", page.Margin)
	}
}

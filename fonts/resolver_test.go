package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func fixtureCatalogue(styles ...Style) *StaticCatalogue {
	cat := NewStaticCatalogue()
	for _, s := range styles {
		cat.Add("DejaVu Sans", s, Handle{Bytes: []byte(s.String())})
	}
	return cat
}

// recordingCatalogue wraps another catalogue and records every query.
type recordingCatalogue struct {
	inner   Catalogue
	queries []Style
}

func (c *recordingCatalogue) SelectBestMatch(family string, style Style) (Handle, error) {
	c.queries = append(c.queries, style)
	return c.inner.SelectBestMatch(family, style)
}

// failingLoader fails for handles whose bytes match a marker and passes the
// rest through.
type failingLoader struct {
	fail string
}

func (l failingLoader) Load(h Handle) (*Data, error) {
	if string(h.Bytes) == l.fail {
		return nil, fmt.Errorf("corrupt font data")
	}
	return &Data{Bytes: h.Bytes, Index: h.Index}, nil
}

func TestResolveAllVariants(t *testing.T) {
	cat := fixtureCatalogue(StyleRegular, StyleOblique, StyleItalic)

	fam, err := Resolve("DejaVu Sans", cat, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !bytes.Equal(fam.Regular.Bytes, []byte("regular")) {
		t.Fatalf("regular slot = %q", fam.Regular.Bytes)
	}
	// the oblique face serves as the bold variant
	if !bytes.Equal(fam.Bold.Bytes, []byte("oblique")) {
		t.Fatalf("bold slot = %q, want the oblique face", fam.Bold.Bytes)
	}
	if !bytes.Equal(fam.Italic.Bytes, []byte("italic")) {
		t.Fatalf("italic slot = %q", fam.Italic.Bytes)
	}
	// bold-italic reuses the regular face even when every style resolves
	if fam.BoldItalic != fam.Regular {
		t.Fatalf("bold-italic should alias the regular face")
	}
	if len(fam.Fallbacks) != 0 {
		t.Fatalf("unexpected fallbacks: %v", fam.Fallbacks)
	}
}

func TestResolveFallsBackToRegular(t *testing.T) {
	cat := fixtureCatalogue(StyleRegular)

	fam, err := Resolve("DejaVu Sans", cat, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if fam.Bold != fam.Regular || fam.Italic != fam.Regular || fam.BoldItalic != fam.Regular {
		t.Fatalf("missing variants should alias the regular face: %+v", fam)
	}
	if len(fam.Fallbacks) != 2 || fam.Fallbacks[0] != StyleOblique || fam.Fallbacks[1] != StyleItalic {
		t.Fatalf("fallbacks = %v, want [oblique italic]", fam.Fallbacks)
	}
}

func TestResolveNoRegularIsFatal(t *testing.T) {
	cat := fixtureCatalogue(StyleOblique, StyleItalic)

	fam, err := Resolve("DejaVu Sans", cat, nil)
	if err == nil {
		t.Fatalf("expected error when the regular face is missing")
	}
	if !errors.Is(err, ErrNoRegularFont) {
		t.Fatalf("error should wrap ErrNoRegularFont: %v", err)
	}
	if fam != nil {
		t.Fatalf("no family should be returned on failure")
	}
}

func TestResolveUnknownFamilyIsFatal(t *testing.T) {
	_, err := Resolve("No Such Family", NewStaticCatalogue(), nil)
	if !errors.Is(err, ErrNoRegularFont) {
		t.Fatalf("unknown family should surface ErrNoRegularFont, got %v", err)
	}
}

func TestResolveRegularLoadFailureIsFatal(t *testing.T) {
	cat := fixtureCatalogue(StyleRegular, StyleOblique, StyleItalic)

	_, err := Resolve("DejaVu Sans", cat, failingLoader{fail: "regular"})
	if !errors.Is(err, ErrNoRegularFont) {
		t.Fatalf("regular load failure should surface ErrNoRegularFont, got %v", err)
	}
}

func TestResolveVariantLoadFailureFallsBack(t *testing.T) {
	cat := fixtureCatalogue(StyleRegular, StyleOblique, StyleItalic)

	fam, err := Resolve("DejaVu Sans", cat, failingLoader{fail: "oblique"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if fam.Bold != fam.Regular {
		t.Fatalf("bold should fall back to regular when the oblique face fails to load")
	}
	if !bytes.Equal(fam.Italic.Bytes, []byte("italic")) {
		t.Fatalf("italic slot should be unaffected: %q", fam.Italic.Bytes)
	}
	if len(fam.Fallbacks) != 1 || fam.Fallbacks[0] != StyleOblique {
		t.Fatalf("fallbacks = %v, want [oblique]", fam.Fallbacks)
	}
}

func TestResolveQueriesExactlyThreeStyles(t *testing.T) {
	rec := &recordingCatalogue{inner: fixtureCatalogue(StyleRegular, StyleOblique, StyleItalic)}

	if _, err := Resolve("DejaVu Sans", rec, nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Style{StyleRegular, StyleOblique, StyleItalic}
	if len(rec.queries) != len(want) {
		t.Fatalf("queries = %v, want %v", rec.queries, want)
	}
	for i := range want {
		if rec.queries[i] != want[i] {
			t.Fatalf("queries = %v, want %v", rec.queries, want)
		}
	}
}

func TestResolveNilCatalogue(t *testing.T) {
	if _, err := Resolve("DejaVu Sans", nil, nil); err == nil {
		t.Fatalf("expected error for nil catalogue")
	}
}

func TestStaticCatalogueNormalizesNames(t *testing.T) {
	cat := NewStaticCatalogue()
	cat.Add("DejaVu Sans", StyleRegular, Handle{Bytes: []byte("r")})

	for _, name := range []string{"DejaVu Sans", "dejavu-sans", "DEJAVU_SANS", "DejaVuSans"} {
		if _, err := cat.SelectBestMatch(name, StyleRegular); err != nil {
			t.Fatalf("lookup %q failed: %v", name, err)
		}
	}
	if _, err := cat.SelectBestMatch("DejaVu Serif", StyleRegular); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown family should report ErrNotFound, got %v", err)
	}
	if _, err := cat.SelectBestMatch("DejaVu Sans", StyleItalic); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing style should report ErrNotFound, got %v", err)
	}
}

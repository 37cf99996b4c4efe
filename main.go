package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/parrotmac/labelbatch/dsl"
	"github.com/parrotmac/labelbatch/fonts"
	"github.com/parrotmac/labelbatch/layout"
	canvasrenderer "github.com/parrotmac/labelbatch/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/address.labels", "label template path")
	output := flag.String("out", "output/labels.pdf", "PDF output path")
	dataJSON := flag.String("data", "", "JSON bound to the label template (object or array of records)")
	dataFile := flag.String("data-file", "", "path to a JSON data file (takes precedence over -data)")
	debugPath := flag.String("debug", "", "layout debug JSON output path")
	outlines := flag.Bool("outlines", false, "draw label cell outlines for registration checks")
	fontOverride := flag.String("font", "", "font family override (defaults to the template's font section)")
	fontDir := flag.String("font-dir", "", "extra font directory scanned in addition to the platform defaults")
	flag.Parse()

	raw := []byte(*dataJSON)
	if *dataFile != "" {
		b, err := os.ReadFile(*dataFile)
		if err != nil {
			log.Fatalf("failed to read data file: %v", err)
		}
		raw = b
	}
	var inputData any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &inputData); err != nil {
			log.Fatalf("failed to parse JSON data: %v", err)
		}
	}

	if err := run(*input, *output, *debugPath, *fontOverride, *fontDir, *outlines, inputData); err != nil {
		log.Fatalf("failed to generate PDF: %v", err)
	}
	fmt.Printf("wrote PDF: %s\n", *output)
}

// run chains parsing, font resolution, layout and rendering.
func run(inputPath, outputPath, debugPath, fontOverride, fontDir string, outlines bool, data any) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("cannot open template %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	fontSpec, err := layout.DocumentFont(doc)
	if err != nil {
		return fmt.Errorf("read font section: %w", err)
	}
	familyName := fontSpec.Family
	if fontOverride != "" {
		familyName = fontOverride
	}

	dirs := fonts.DefaultFontDirs()
	if fontDir != "" {
		dirs = append(dirs, fontDir)
	}
	catalogue := fonts.NewSystemCatalogue(dirs...)
	family, err := fonts.Resolve(familyName, catalogue, canvasrenderer.NewFontLoader())
	if err != nil {
		return fmt.Errorf("resolve font family %q: %w", familyName, err)
	}
	for _, style := range family.Fallbacks {
		fmt.Printf("warning: no %s face for %q, substituting the regular face\n", style, familyName)
	}

	r := canvasrenderer.NewRenderer(family)
	result, err := layout.Build(doc, data, layout.BuildOptions{
		Typesetter: r,
		Debug:      layout.DebugOptions{Outlines: outlines},
	})
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("render PDF: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("write PDF file: %w", err)
	}

	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("create debug directory: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("write debug JSON: %w", err)
	}
	return nil
}

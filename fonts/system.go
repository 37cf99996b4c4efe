package fonts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// SystemCatalogue locates installed fonts by scanning the platform font
// directories and classifying files by name. The scan runs once, on first
// query; the catalogue state is then fixed for the lifetime of the value,
// which keeps repeated resolutions deterministic.
type SystemCatalogue struct {
	dirs     []string
	once     sync.Once
	families map[string]map[Style]Handle
}

// NewSystemCatalogue creates a catalogue over the given directories, or the
// platform defaults when none are given.
func NewSystemCatalogue(dirs ...string) *SystemCatalogue {
	if len(dirs) == 0 {
		dirs = DefaultFontDirs()
	}
	return &SystemCatalogue{dirs: dirs}
}

// DefaultFontDirs returns the conventional font directories for the
// current platform. Missing directories are harmless; the scan skips them.
func DefaultFontDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/System/Library/Fonts/Supplemental", "/Library/Fonts"}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	case "windows":
		root := os.Getenv("SYSTEMROOT")
		if root == "" {
			root = `C:\Windows`
		}
		return []string{filepath.Join(root, "Fonts")}
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs,
				filepath.Join(home, ".fonts"),
				filepath.Join(home, ".local", "share", "fonts"),
			)
		}
		return dirs
	}
}

// SelectBestMatch implements Catalogue.
func (c *SystemCatalogue) SelectBestMatch(family string, style Style) (Handle, error) {
	c.once.Do(c.scan)
	variants, ok := c.families[normalizeFamily(family)]
	if !ok {
		return Handle{}, fmt.Errorf("family %q: %w", family, ErrNotFound)
	}
	h, ok := variants[style]
	if !ok {
		return Handle{}, fmt.Errorf("family %q style %s: %w", family, style, ErrNotFound)
	}
	return h, nil
}

func (c *SystemCatalogue) scan() {
	families := map[string]map[Style]Handle{}
	for _, dir := range c.dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				// unreadable entries and directories are skipped, not fatal
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			switch ext {
			case ".ttf", ".otf", ".ttc", ".otc":
			default:
				return nil
			}
			family, style, ok := classifyFileName(strings.TrimSuffix(filepath.Base(path), ext))
			if !ok {
				return nil
			}
			variants := families[family]
			if variants == nil {
				variants = map[Style]Handle{}
				families[family] = variants
			}
			if _, exists := variants[style]; !exists {
				// first match wins within a scan; collections default to index 0
				variants[style] = Handle{Path: path}
			}
			return nil
		})
	}
	c.families = families
}

// weightWords mark faces we never query. Keeping them out of the index
// prevents eg "Arial Bold.ttf" from being served as the regular face.
var weightWords = []string{
	"thin", "extralight", "ultralight", "light",
	"medium", "semibold", "demibold", "bold", "extrabold", "ultrabold",
	"black", "heavy",
}

// styleWords are stripped from the file name when deriving the family key.
var styleWords = []string{"oblique", "italic", "regular", "book", "roman", "normal"}

// classifyFileName derives the family key and style variant from a font
// file's base name, eg "DejaVuSans-Oblique" → ("dejavusans", StyleOblique).
// Weighted faces are rejected entirely.
func classifyFileName(base string) (string, Style, bool) {
	lower := strings.ToLower(base)
	for _, w := range weightWords {
		if strings.Contains(lower, w) {
			return "", 0, false
		}
	}
	style := StyleRegular
	switch {
	case strings.Contains(lower, "oblique"):
		style = StyleOblique
	case strings.Contains(lower, "italic"):
		style = StyleItalic
	}
	for _, w := range styleWords {
		lower = strings.ReplaceAll(lower, w, "")
	}
	family := normalizeFamily(lower)
	if family == "" {
		return "", 0, false
	}
	return family, style, true
}

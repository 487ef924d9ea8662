package inputs

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ziadkadry99/usediagram/internal/render"
)

// KindMarkdown marks documents whose diagrams live in fenced code blocks.
const KindMarkdown = "markdown"

// extensionToKind maps file extensions to diagram kinds.
var extensionToKind = map[string]string{
	// Mermaid
	".mmd":     render.KindMermaid,
	".mermaid": render.KindMermaid,
	// PlantUML
	".puml":     render.KindPlantUML,
	".plantuml": render.KindPlantUML,
	".pu":       render.KindPlantUML,
	".iuml":     render.KindPlantUML,
	".wsd":      render.KindPlantUML,
	// Markdown
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
}

// DetectKind returns the diagram kind for a filename, or "" when the file is
// not a diagram source.
func DetectKind(filename string) string {
	return extensionToKind[strings.ToLower(filepath.Ext(filename))]
}

// OutputName returns the rendered file name for a source path: the
// extension is replaced by ext. An index > 0 is appended for the nth diagram
// found in a markdown document.
func OutputName(relPath string, index int, ext string) string {
	base := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	if index > 0 {
		return base + "-" + strconv.Itoa(index) + "." + ext
	}
	return base + "." + ext
}

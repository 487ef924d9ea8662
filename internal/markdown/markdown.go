// Package markdown finds Mermaid and PlantUML fences in markdown documents
// and renders documents to HTML with those fences replaced by diagrams.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ziadkadry99/usediagram/internal/render"
)

// fenceKinds maps fence info-string languages to diagram kinds.
var fenceKinds = map[string]string{
	"mermaid":  render.KindMermaid,
	"plantuml": render.KindPlantUML,
	"puml":     render.KindPlantUML,
}

// Block is one diagram fence found in a document.
type Block struct {
	Index  int    // 1-based position among the document's diagram fences.
	Kind   string // render.KindMermaid or render.KindPlantUML.
	Source string
	Line   int // 1-based line of the first source line.
}

// FenceKind returns the diagram kind for a fence language, or "".
func FenceKind(lang string) string {
	return fenceKinds[strings.ToLower(lang)]
}

// Extract returns the non-empty diagram fences in src in document order.
func Extract(src []byte) []Block {
	doc := newParser().Parser().Parse(text.NewReader(src))
	var blocks []Block
	for _, f := range diagramFences(doc, src) {
		blocks = append(blocks, f.block)
	}
	return blocks
}

type fence struct {
	node  *ast.FencedCodeBlock
	block Block
}

func diagramFences(doc ast.Node, src []byte) []fence {
	var out []fence
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		kind := FenceKind(string(fc.Language(src)))
		if kind == "" || fc.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		var buf bytes.Buffer
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		first := lines.At(0)
		out = append(out, fence{
			node: fc,
			block: Block{
				Index:  len(out) + 1,
				Kind:   kind,
				Source: buf.String(),
				Line:   bytes.Count(src[:first.Start], []byte("\n")) + 1,
			},
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

func newParser() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// RenderFunc renders one diagram fence to sanitized SVG markup.
type RenderFunc func(b Block) (string, error)

// BlockError records a fence that failed to render.
type BlockError struct {
	Block Block
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("diagram %d (line %d): %v", e.Block.Index, e.Block.Line, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// KindDiagram is the AST node kind that replaces rendered fences.
var KindDiagram = ast.NewNodeKind("Diagram")

type diagramNode struct {
	ast.BaseBlock
	block  Block
	svg    string
	failed bool
}

func (n *diagramNode) Kind() ast.NodeKind { return KindDiagram }

func (n *diagramNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Kind": n.block.Kind}, nil)
}

type diagramRenderer struct{}

func (r *diagramRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagram, r.render)
}

func (r *diagramRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*diagramNode)
	if n.failed {
		fmt.Fprintf(w, "<pre class=\"diagram-error\" data-kind=\"%s\">", n.block.Kind)
		w.Write(util.EscapeHTML([]byte(n.block.Source)))
		w.WriteString("</pre>\n")
		return ast.WalkSkipChildren, nil
	}
	fmt.Fprintf(w, "<div class=\"diagram\" data-kind=\"%s\">", n.block.Kind)
	w.WriteString(n.svg)
	w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
.diagram { overflow-x: auto; margin: 1rem 0; }
.diagram-error { border-left: 4px solid #b91c1c; padding: .5rem 1rem; background: #fef2f2; }
pre { overflow-x: auto; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML converts a markdown document to a standalone HTML page. Diagram
// fences are rendered with fn and inlined; other code blocks are syntax
// highlighted. Fences that fail to render are shown as source and reported
// in the returned BlockErrors. err is set only when the page itself could
// not be produced.
func RenderHTML(w io.Writer, title string, src []byte, fn RenderFunc) (failed []*BlockError, err error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&diagramRenderer{}, 100)),
		),
	)

	doc := md.Parser().Parse(text.NewReader(src))
	for _, f := range diagramFences(doc, src) {
		n := &diagramNode{block: f.block}
		svg, rerr := fn(f.block)
		if rerr != nil {
			n.failed = true
			failed = append(failed, &BlockError{Block: f.block, Err: rerr})
		} else {
			n.svg = svg
		}
		parent := f.node.Parent()
		parent.ReplaceChild(parent, f.node, n)
	}

	var body bytes.Buffer
	if err := md.Renderer().Render(&body, src, doc); err != nil {
		return failed, fmt.Errorf("rendering markdown: %w", err)
	}

	err = pageTmpl.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return failed, fmt.Errorf("writing page: %w", err)
	}
	return failed, nil
}

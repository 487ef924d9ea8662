// Package sanitize strips executable content from rendered SVG markup before
// it is handed to a browser.
package sanitize

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotSVG is returned when the markup's root element is not <svg>.
var ErrNotSVG = errors.New("markup is not an svg document")

// droppedElements are removed together with everything inside them.
var droppedElements = map[string]bool{
	"script":   true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"frame":    true,
	"frameset": true,
	"applet":   true,
	"base":     true,
	"meta":     true,
	"link":     true,
	"handler":  true,
	"listener": true,
}

// voidElements are HTML elements Mermaid may emit inside foreignObject
// without a closing tag.
var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"wbr":   true,
	"col":   true,
}

// urlAttributes carry URLs that could hold a script scheme.
var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"from":       true,
	"to":         true,
	"values":     true,
	"by":         true,
}

// SVG returns markup with scripts, event handler attributes and script URLs
// removed. Prefixes are preserved as written, so xlink:href stays xlink:href.
func SVG(markup string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		out      bytes.Buffer
		skip     int
		sawRoot  bool
		rootName string
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if !sawRoot {
				sawRoot = true
				rootName = name
				if name != "svg" {
					return "", ErrNotSVG
				}
			}
			if skip > 0 || droppedElements[name] {
				skip++
				continue
			}
			writeStart(&out, t, voidElements[name])

		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			if skip > 0 {
				skip--
				continue
			}
			if voidElements[name] {
				continue
			}
			out.WriteString("</")
			out.WriteString(qualified(t.Name))
			out.WriteString(">")

		case xml.CharData:
			if skip > 0 {
				continue
			}
			xml.EscapeText(&out, t)

		case xml.Comment, xml.ProcInst, xml.Directive:
			// Dropped: comments can smuggle conditional markup, and the XML
			// declaration and DOCTYPE are meaningless once inlined.
		}
	}

	if rootName != "svg" {
		return "", ErrNotSVG
	}
	return out.String(), nil
}

func writeStart(out *bytes.Buffer, t xml.StartElement, selfClose bool) {
	out.WriteString("<")
	out.WriteString(qualified(t.Name))
	for _, attr := range t.Attr {
		if !safeAttr(attr) {
			continue
		}
		out.WriteString(" ")
		out.WriteString(qualified(attr.Name))
		out.WriteString(`="`)
		xml.EscapeText(out, []byte(attr.Value))
		out.WriteString(`"`)
	}
	if selfClose {
		out.WriteString("/>")
		return
	}
	out.WriteString(">")
}

func safeAttr(attr xml.Attr) bool {
	local := strings.ToLower(attr.Name.Local)
	if strings.HasPrefix(local, "on") {
		return false
	}
	if local == "values" {
		// Animation values are a semicolon-separated list of targets.
		for _, v := range strings.Split(attr.Value, ";") {
			if dangerousURL(v) {
				return false
			}
		}
		return true
	}
	if urlAttributes[local] && dangerousURL(attr.Value) {
		return false
	}
	if local == "style" {
		v := strings.ToLower(attr.Value)
		if strings.Contains(v, "expression(") || strings.Contains(v, "javascript:") {
			return false
		}
	}
	return true
}

// dangerousURL reports whether v uses a scheme that executes code. Control
// characters and whitespace are removed first since browsers ignore them
// inside scheme names.
func dangerousURL(v string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, v)
	cleaned = strings.ToLower(cleaned)

	switch {
	case strings.HasPrefix(cleaned, "javascript:"), strings.HasPrefix(cleaned, "vbscript:"):
		return true
	case strings.HasPrefix(cleaned, "data:"):
		return !strings.HasPrefix(cleaned, "data:image/") || strings.HasPrefix(cleaned, "data:image/svg")
	}
	return false
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

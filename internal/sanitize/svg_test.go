package sanitize

import (
	"errors"
	"strings"
	"testing"
)

func TestSVGRemovesScripts(t *testing.T) {
	in := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script><g><script type="text/javascript"><![CDATA[steal()]]></script><rect width="10" height="10"/></g></svg>`

	got, err := SVG(in)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if strings.Contains(strings.ToLower(got), "<script") {
		t.Errorf("script element survived: %s", got)
	}
	for _, payload := range []string{"alert(1)", "steal()"} {
		if strings.Contains(got, payload) {
			t.Errorf("script body %q survived: %s", payload, got)
		}
	}
	if !strings.Contains(got, `<rect width="10" height="10"></rect>`) {
		t.Errorf("expected rect to be kept, got: %s", got)
	}
}

func TestSVGRemovesEventHandlers(t *testing.T) {
	in := `<svg xmlns="http://www.w3.org/2000/svg" onload="evil()"><circle r="5" onclick="evil()" ONMOUSEOVER="evil()" fill="red"/></svg>`

	got, err := SVG(in)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if strings.Contains(got, "evil()") {
		t.Errorf("event handler survived: %s", got)
	}
	if !strings.Contains(got, `fill="red"`) {
		t.Errorf("benign attribute dropped: %s", got)
	}
}

func TestSVGRemovesScriptURLs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"javascript href", `<a href="javascript:alert(1)">x</a>`, false},
		{"obfuscated scheme", `<a xlink:href=" java&#x09;script:alert(1)">x</a>`, false},
		{"data html", `<a href="data:text/html;base64,PHNjcmlwdD4=">x</a>`, false},
		{"https link", `<a href="https://example.com">x</a>`, true},
		{"data png", `<image href="data:image/png;base64,iVBORw0KGgo="/>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">` + tt.in + `</svg>`
			got, err := SVG(in)
			if err != nil {
				t.Fatalf("SVG: %v", err)
			}
			hasHref := strings.Contains(got, "href=")
			if hasHref != tt.keep {
				t.Errorf("href kept = %v, want %v: %s", hasHref, tt.keep, got)
			}
		})
	}
}

func TestSVGRemovesScriptURLsInAnimationValues(t *testing.T) {
	tests := []struct {
		name string
		anim string
		keep bool
	}{
		{"second entry", `<animate attributeName="href" values="x;javascript:alert(1)"/>`, false},
		{"padded entry", `<set attributeName="href" values="#a; JavaScript:alert(1) "/>`, false},
		{"plain values", `<animate attributeName="opacity" values="0;0.5;1"/>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `<svg xmlns="http://www.w3.org/2000/svg"><a>` + tt.anim + `<text>x</text></a></svg>`
			got, err := SVG(in)
			if err != nil {
				t.Fatalf("SVG: %v", err)
			}
			if strings.Contains(strings.ToLower(got), "javascript:") {
				t.Errorf("script URL survived: %s", got)
			}
			if hasValues := strings.Contains(got, "values="); hasValues != tt.keep {
				t.Errorf("values kept = %v, want %v: %s", hasValues, tt.keep, got)
			}
		})
	}
}

func TestSVGPreservesPrefixesAndStyles(t *testing.T) {
	in := `<?xml version="1.0" encoding="UTF-8"?><!-- generated --><svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 10"><style>.node > rect { fill: #fff; }</style><use xlink:href="#a"/></svg>`

	got, err := SVG(in)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !strings.HasPrefix(got, "<svg") {
		t.Errorf("expected output to start at the svg root, got: %s", got)
	}
	if !strings.Contains(got, `viewBox="0 0 10 10"`) {
		t.Errorf("viewBox case not preserved: %s", got)
	}
	if !strings.Contains(got, `xlink:href="#a"`) {
		t.Errorf("xlink prefix not preserved: %s", got)
	}
	if !strings.Contains(got, ".node &gt; rect") {
		t.Errorf("style content missing: %s", got)
	}
	if strings.Contains(got, "generated") {
		t.Errorf("comment survived: %s", got)
	}
}

func TestSVGSelfClosesVoidHTML(t *testing.T) {
	in := `<svg xmlns="http://www.w3.org/2000/svg"><foreignObject><div>line one<br>line two</div></foreignObject></svg>`

	got, err := SVG(in)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !strings.Contains(got, "line one<br/>line two") {
		t.Errorf("expected self-closed br, got: %s", got)
	}
}

func TestSVGRejectsNonSVG(t *testing.T) {
	_, err := SVG(`<html><body>nope</body></html>`)
	if !errors.Is(err, ErrNotSVG) {
		t.Errorf("expected ErrNotSVG, got %v", err)
	}

	_, err = SVG("")
	if !errors.Is(err, ErrNotSVG) {
		t.Errorf("expected ErrNotSVG for empty input, got %v", err)
	}
}

package inputs

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates files (relative path -> content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"flow.mmd":                  "graph TD\n A-->B\n",
		"seq.puml":                  "@startuml\nA -> B\n@enduml\n",
		"docs/guide.md":             "# Guide\n",
		"docs/nested/arch.plantuml": "@startuml\n@enduml\n",
		"main.go":                   "package main\n",
		"node_modules/x/y.mmd":      "graph LR\n",
		"blob.mmd":                  "graph\x00TD",
	})
}

func relPaths(list []Source) []string {
	var out []string
	for _, s := range list {
		out = append(out, s.RelPath)
	}
	return out
}

func TestWalk(t *testing.T) {
	dir := sampleTree(t)

	list, err := Walk(Config{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{"docs/guide.md", "docs/nested/arch.plantuml", "flow.mmd", "seq.puml"}
	got := relPaths(list)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] got %q, want %q", i, got[i], want[i])
		}
	}

	for _, s := range list {
		if s.ContentHash == "" || s.Kind == "" || !filepath.IsAbs(s.Path) {
			t.Errorf("incomplete source: %+v", s)
		}
	}
}

func TestWalkIncludeExclude(t *testing.T) {
	dir := sampleTree(t)

	list, err := Walk(Config{
		RootDir: dir,
		Include: []string{"docs/**"},
		Exclude: []string{"*.md"},
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := relPaths(list)
	if len(got) != 1 || got[0] != "docs/nested/arch.plantuml" {
		t.Errorf("got %v", got)
	}
}

func TestWalkMaxFileSize(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"small.mmd": "graph TD",
		"large.mmd": "graph TD\n  A-->B\n  B-->C\n",
	})
	list, err := Walk(Config{RootDir: dir, MaxFileSize: 10})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := relPaths(list)
	if len(got) != 1 || got[0] != "small.mmd" {
		t.Errorf("got %v", got)
	}
}

func TestExpand(t *testing.T) {
	dir := sampleTree(t)

	list, err := Expand([]string{
		filepath.Join(dir, "flow.mmd"),
		filepath.Join(dir, "docs"),
		filepath.Join(dir, "*.puml"),
		filepath.Join(dir, "flow.mmd"),
	}, Config{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("expected 4 unique sources, got %v", relPaths(list))
	}
}

func TestExpandRejectsNonDiagram(t *testing.T) {
	dir := sampleTree(t)
	if _, err := Expand([]string{filepath.Join(dir, "main.go")}, Config{}); err == nil {
		t.Error("expected error for non-diagram file")
	}
	if _, err := Expand([]string{filepath.Join(dir, "missing.mmd")}, Config{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"a.mmd", "mermaid"},
		{"a.MERMAID", "mermaid"},
		{"a.puml", "plantuml"},
		{"a.wsd", "plantuml"},
		{"README.md", KindMarkdown},
		{"main.go", ""},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.name); got != tt.want {
			t.Errorf("DetectKind(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	if got := OutputName("docs/seq.puml", 0, "svg"); got != "docs/seq.svg" {
		t.Errorf("got %q", got)
	}
	if got := OutputName("README.md", 2, "png"); got != "README-2.png" {
		t.Errorf("got %q", got)
	}
}

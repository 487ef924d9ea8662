package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultMermaidCommand is the Mermaid CLI binary.
const DefaultMermaidCommand = "mmdc"

// mermaidConfig mirrors the options the editor has always rendered with.
type mermaidConfig struct {
	StartOnLoad   bool                 `json:"startOnLoad"`
	SecurityLevel string               `json:"securityLevel"`
	Theme         string               `json:"theme"`
	Flowchart     mermaidFlowchartOpts `json:"flowchart"`
	HTMLLabels    bool                 `json:"htmlLabels"`
}

type mermaidFlowchartOpts struct {
	UseMaxWidth bool `json:"useMaxWidth"`
}

// Mermaid renders locally by running the Mermaid CLI.
type Mermaid struct {
	command []string
	theme   string
}

// NewMermaid creates a Mermaid renderer. command is the CLI invocation split
// into fields; an empty command uses DefaultMermaidCommand.
func NewMermaid(command []string, theme string) *Mermaid {
	if len(command) == 0 {
		command = []string{DefaultMermaidCommand}
	}
	if theme == "" {
		theme = "neutral"
	}
	return &Mermaid{command: command, theme: theme}
}

func (m *Mermaid) Kind() string { return KindMermaid }

func (m *Mermaid) Render(ctx context.Context, source string) (*Result, error) {
	dir, err := os.MkdirTemp("", "usediagram-mermaid-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.mmd")
	output := filepath.Join(dir, "output.svg")
	configPath := filepath.Join(dir, "config.json")

	if err := os.WriteFile(input, []byte(source), 0o600); err != nil {
		return nil, fmt.Errorf("writing mermaid source: %w", err)
	}
	cfg, err := json.Marshal(mermaidConfig{
		StartOnLoad:   true,
		SecurityLevel: "strict",
		Theme:         m.theme,
		Flowchart:     mermaidFlowchartOpts{UseMaxWidth: false},
		HTMLLabels:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling mermaid config: %w", err)
	}
	if err := os.WriteFile(configPath, cfg, 0o600); err != nil {
		return nil, fmt.Errorf("writing mermaid config: %w", err)
	}

	args := append([]string{}, m.command[1:]...)
	args = append(args, "-q", "-i", input, "-o", output, "-c", configPath, "-b", "transparent")
	cmd := exec.CommandContext(ctx, m.command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("mermaid cli %q not found: %w", m.command[0], err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s", ErrSyntax, lastLine(stderr.String()))
		}
		return nil, fmt.Errorf("running mermaid cli: %w", err)
	}

	svg, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("reading mermaid output: %w", err)
	}
	return &Result{Kind: KindMermaid, Markup: string(svg)}, nil
}

// lastLine returns the last non-empty line of s, which is where the Mermaid
// CLI prints the parse error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return "mermaid cli failed"
}

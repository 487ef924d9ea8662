package config

import (
	"strings"
	"time"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/viewport"
)

// DefaultExcludes are glob patterns skipped by batch rendering by default.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			BaseURL:            "http://localhost:8080",
			DownloadTTLSeconds: 120,
		},
		DataDir: ".usediagram",
		PlantUML: PlantUMLConfig{
			ServerURL:      plantuml.DefaultServerURL,
			TimeoutSeconds: 30,
		},
		Mermaid: MermaidConfig{
			Command: render.DefaultMermaidCommand,
			Theme:   "neutral",
		},
		Editor: EditorConfig{
			DebounceMS:  400,
			DefaultKind: render.KindPlantUML,
		},
		Viewport: ViewportConfig{
			MinScale: viewport.DefaultMinScale,
			MaxScale: viewport.DefaultMaxScale,
			Step:     viewport.DefaultStep,
		},
		Batch: BatchConfig{
			Include:   []string{"**/*.{mmd,mermaid,puml,plantuml,md}"},
			Exclude:   append([]string(nil), DefaultExcludes...),
			OutputDir: "diagrams",
			Format:    "svg",
		},
	}
}

// Debounce returns the editor debounce delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Editor.DebounceMS) * time.Millisecond
}

// PlantUMLTimeout returns the upstream request timeout.
func (c *Config) PlantUMLTimeout() time.Duration {
	return time.Duration(c.PlantUML.TimeoutSeconds) * time.Second
}

// DownloadTTL returns how long unclaimed downloads are kept.
func (c *Config) DownloadTTL() time.Duration {
	return time.Duration(c.Server.DownloadTTLSeconds) * time.Second
}

// MermaidCommand splits the configured Mermaid command into argv form.
func (c *Config) MermaidCommand() []string {
	return strings.Fields(c.Mermaid.Command)
}

// ViewportOptions converts the viewport section for the viewport controller.
func (c *Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		MinScale: c.Viewport.MinScale,
		MaxScale: c.Viewport.MaxScale,
		Step:     c.Viewport.Step,
	}
}

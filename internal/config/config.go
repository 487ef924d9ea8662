package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/usediagram/internal/render"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: USEDIAGRAM_PLANTUML__SERVER_URL sets plantuml.server_url.
const EnvPrefix = "USEDIAGRAM_"

// DefaultPath is the config file read when none is given.
const DefaultPath = ".usediagram.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (USEDIAGRAM_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validFormats is the set of recognized batch output formats.
var validFormats = map[string]bool{
	"svg":  true,
	"png":  true,
	"html": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.DownloadTTLSeconds < 0 {
		return fmt.Errorf("server.download_ttl_seconds must be non-negative")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.PlantUML.ServerURL == "" {
		return fmt.Errorf("plantuml.server_url is required")
	}
	if c.PlantUML.TimeoutSeconds <= 0 {
		return fmt.Errorf("plantuml.timeout_seconds must be positive")
	}

	if len(c.MermaidCommand()) == 0 {
		return fmt.Errorf("mermaid.command is required")
	}

	if c.Editor.DebounceMS < 0 {
		return fmt.Errorf("editor.debounce_ms must be non-negative")
	}
	if !render.ValidKind(c.Editor.DefaultKind) {
		return fmt.Errorf("invalid editor.default_kind %q: must be one of mermaid, plantuml", c.Editor.DefaultKind)
	}

	if c.Viewport.MinScale <= 0 {
		return fmt.Errorf("viewport.min_scale must be positive")
	}
	if c.Viewport.MaxScale < c.Viewport.MinScale {
		return fmt.Errorf("viewport.max_scale must not be below viewport.min_scale")
	}
	if c.Viewport.Step <= 0 {
		return fmt.Errorf("viewport.step must be positive")
	}

	if c.Batch.Format != "" && !validFormats[c.Batch.Format] {
		return fmt.Errorf("invalid batch.format %q: must be one of svg, png, html", c.Batch.Format)
	}

	return nil
}

package config

// Config is the top-level usediagram configuration, corresponding to .usediagram.yml.
type Config struct {
	Server         ServerConfig   `yaml:"server" koanf:"server"`
	DataDir        string         `yaml:"data_dir" koanf:"data_dir"`
	PlantUML       PlantUMLConfig `yaml:"plantuml" koanf:"plantuml"`
	Mermaid        MermaidConfig  `yaml:"mermaid" koanf:"mermaid"`
	RenderEndpoint string         `yaml:"render_endpoint" koanf:"render_endpoint"`
	Editor         EditorConfig   `yaml:"editor" koanf:"editor"`
	Viewport       ViewportConfig `yaml:"viewport" koanf:"viewport"`
	Batch          BatchConfig    `yaml:"batch" koanf:"batch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               int    `yaml:"port" koanf:"port"`
	AllowAll           bool   `yaml:"allow_all" koanf:"allow_all"`
	BaseURL            string `yaml:"base_url" koanf:"base_url"`
	DownloadTTLSeconds int    `yaml:"download_ttl_seconds" koanf:"download_ttl_seconds"`
}

// PlantUMLConfig points at the upstream PlantUML server.
type PlantUMLConfig struct {
	ServerURL      string `yaml:"server_url" koanf:"server_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// MermaidConfig controls the local Mermaid CLI.
type MermaidConfig struct {
	Command string `yaml:"command" koanf:"command"`
	Theme   string `yaml:"theme" koanf:"theme"`
}

// EditorConfig holds live editing settings.
type EditorConfig struct {
	DebounceMS  int    `yaml:"debounce_ms" koanf:"debounce_ms"`
	DefaultKind string `yaml:"default_kind" koanf:"default_kind"`
}

// ViewportConfig bounds the preview zoom.
type ViewportConfig struct {
	MinScale float64 `yaml:"min_scale" koanf:"min_scale"`
	MaxScale float64 `yaml:"max_scale" koanf:"max_scale"`
	Step     float64 `yaml:"step" koanf:"step"`
}

// BatchConfig holds defaults for the render command.
type BatchConfig struct {
	Include   []string `yaml:"include" koanf:"include"`
	Exclude   []string `yaml:"exclude" koanf:"exclude"`
	OutputDir string   `yaml:"output_dir" koanf:"output_dir"`
	Format    string   `yaml:"format" koanf:"format"`
}

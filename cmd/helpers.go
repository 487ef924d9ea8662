package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ziadkadry99/usediagram/internal/config"
	"github.com/ziadkadry99/usediagram/internal/db"
	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/plantuml"
	"github.com/ziadkadry99/usediagram/internal/render"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `usediagram init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// renderStack is the set of renderers built from config.
type renderStack struct {
	Registry *render.Registry
	PNG      export.PNGFetcher
	// Upstream talks to the PlantUML server directly and backs the
	// /api/svg and /api/png endpoints.
	Upstream *plantuml.Client
}

// buildRenderers creates the Mermaid and PlantUML renderers. When
// render_endpoint is set, PlantUML diagrams are rendered through another
// usediagram server instead of the PlantUML server.
func buildRenderers(cfg *config.Config) *renderStack {
	upstream := plantuml.NewClient(cfg.PlantUML.ServerURL, cfg.PlantUMLTimeout())
	mermaid := render.NewMermaid(cfg.MermaidCommand(), cfg.Mermaid.Theme)

	if cfg.RenderEndpoint != "" {
		remote := render.NewRemote(cfg.RenderEndpoint, cfg.PlantUMLTimeout())
		return &renderStack{
			Registry: render.NewRegistry(mermaid, remote),
			PNG:      remote,
			Upstream: upstream,
		}
	}
	return &renderStack{
		Registry: render.NewRegistry(mermaid, render.NewPlantUML(upstream)),
		PNG:      upstream,
		Upstream: upstream,
	}
}

// openDatabase opens the share database under the configured data dir.
func openDatabase(cfg *config.Config) (*db.DB, string, error) {
	dbPath := filepath.Join(cfg.DataDir, "usediagram.db")
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	return database, dbPath, nil
}

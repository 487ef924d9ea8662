package config

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/usediagram/internal/render"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to usediagram! Let's configure your editor.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Default diagram kind.
	kindPrompt := promptui.Select{
		Label: "Default diagram kind",
		Items: []string{render.KindPlantUML, render.KindMermaid},
	}
	_, kind, err := kindPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("kind selection: %w", err)
	}
	cfg.Editor.DefaultKind = kind

	// 2. PlantUML server.
	serverPrompt := promptui.Prompt{
		Label:   "PlantUML server URL",
		Default: cfg.PlantUML.ServerURL,
		Validate: func(s string) error {
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return fmt.Errorf("must be an http(s) URL")
			}
			return nil
		},
	}
	serverURL, err := serverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("plantuml server: %w", err)
	}
	cfg.PlantUML.ServerURL = strings.TrimRight(serverURL, "/")

	// 3. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.Server.BaseURL = "http://localhost:" + portStr

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for shared diagrams",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := exec.LookPath(cfg.MermaidCommand()[0]); err != nil {
		fmt.Printf("\nNote: %s was not found in PATH. Install @mermaid-js/mermaid-cli to render Mermaid diagrams.\n", cfg.Mermaid.Command)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

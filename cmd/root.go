package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/usediagram/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "usediagram",
	Short: "Live Mermaid and PlantUML diagram editor",
	Long: `usediagram serves a browser editor that renders Mermaid and PlantUML
source as you type, exports SVG and PNG, and stores shareable diagrams.
It can also render diagram files in batch, watch a file for changes, and
expose rendering tools to AI agents over MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

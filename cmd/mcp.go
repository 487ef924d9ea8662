package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/usediagram/internal/mcp"
	"github.com/ziadkadry99/usediagram/internal/shares"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing diagram rendering, token encoding and sharing tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var store *shares.Store
		database, _, err := openDatabase(cfg)
		if err != nil {
			// Rendering still works without the share database.
			fmt.Fprintf(os.Stderr, "Warning: %v\nShare tools are disabled.\n", err)
		} else {
			defer database.Close()
			store = shares.NewStore(database)
		}

		mcpserver.Version = Version
		stack := buildRenderers(cfg)

		fmt.Fprintf(os.Stderr, "usediagram MCP server started on stdio (renderers=%v)\n", stack.Registry.Kinds())

		srv := mcpserver.NewServer(stack.Registry, store, cfg.PlantUML.ServerURL, cfg.Server.BaseURL)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

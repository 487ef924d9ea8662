package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/usediagram/internal/inputs"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/shares"
)

var shareCmd = &cobra.Command{
	Use:   "share [FILE]",
	Short: "Store a diagram as a read-only share and print its URL",
	Long: `Stores the contents of FILE in the share database and prints the URL the
editor serves it at. With --list, prints the most recent shares instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, _, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store := shares.NewStore(database)
		ctx := context.Background()
		base := strings.TrimSuffix(cfg.Server.BaseURL, "/")

		if list, _ := cmd.Flags().GetBool("list"); list {
			limit, _ := cmd.Flags().GetInt("limit")
			recent, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(recent) == 0 {
				fmt.Println("No shared diagrams yet.")
				return nil
			}
			for _, sh := range recent {
				fmt.Printf("%s  %-8s  %s  %s\n", sh.CreatedAt.Format("2006-01-02 15:04"), sh.Kind, sh.ShareID, base+shares.URL(sh.ShareID))
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("a diagram file is required (or pass --list)")
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		kind, _ := cmd.Flags().GetString("kind")
		if kind == "" {
			kind = inputs.DetectKind(args[0])
		}
		if !render.ValidKind(kind) {
			return fmt.Errorf("cannot tell the diagram kind of %s; pass --kind mermaid|plantuml", args[0])
		}

		sh, err := store.Create(ctx, shares.Share{Kind: kind, Content: string(content)})
		if err != nil {
			return fmt.Errorf("storing share: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Stored %s share %s (%d bytes)\n", sh.Kind, sh.ShareID, len(sh.Content))
		}
		fmt.Println(base + shares.URL(sh.ShareID))
		return nil
	},
}

func init() {
	shareCmd.Flags().String("kind", "", "diagram kind: mermaid or plantuml (default: from extension)")
	shareCmd.Flags().Bool("list", false, "list recent shares")
	shareCmd.Flags().Int("limit", 20, "number of shares to list")
	rootCmd.AddCommand(shareCmd)
}

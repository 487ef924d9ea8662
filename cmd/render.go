package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/usediagram/internal/batch"
	"github.com/ziadkadry99/usediagram/internal/inputs"
	"github.com/ziadkadry99/usediagram/internal/progress"
)

var renderCmd = &cobra.Command{
	Use:   "render [PATH|PATTERN...]",
	Short: "Render diagram files to SVG, PNG or HTML",
	Long: `Renders Mermaid and PlantUML files, and the diagram fences inside markdown
documents, into the output directory. Arguments may be files, directories or
doublestar patterns such as 'docs/**/*.md'. With no arguments the current
directory is scanned. Sources unchanged since the last run are skipped.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output directory (overrides config)")
	renderCmd.Flags().StringP("format", "f", "", "output format: svg, png or html (overrides config)")
	renderCmd.Flags().Int("concurrency", 4, "max parallel renders")
	renderCmd.Flags().Bool("force", false, "re-render sources that have not changed")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Batch.OutputDir = out
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Batch.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	force, _ := cmd.Flags().GetBool("force")

	if len(args) == 0 {
		args = []string{"."}
	}
	fmt.Fprintf(os.Stderr, "Scanning %v...\n", args)
	sources, err := inputs.Expand(args, inputs.Config{
		Include: cfg.Batch.Include,
		Exclude: cfg.Batch.Exclude,
	})
	if err != nil {
		return fmt.Errorf("collecting sources: %w", err)
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "No diagram sources found.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "Found %d sources to render\n", len(sources))

	stack := buildRenderers(cfg)

	reporter := progress.NewReporter()
	reporter.Start(len(sources))
	result, err := batch.Run(ctx, sources, batch.Options{
		Renderers:   stack.Registry,
		PNG:         stack.PNG,
		OutputDir:   cfg.Batch.OutputDir,
		Format:      cfg.Batch.Format,
		Concurrency: concurrency,
		Force:       force,
		OnProgress: func(processed, total int, relPath string) {
			reporter.Update(processed, relPath)
		},
	})
	reporter.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("\nRender complete!\n")
	fmt.Printf("  Files written:   %d\n", len(result.Written))
	fmt.Printf("  Sources skipped: %d (unchanged)\n", result.Skipped)
	fmt.Printf("  Failures:        %d\n", len(result.Errors))
	fmt.Printf("  Duration:        %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Output:          %s\n", cfg.Batch.OutputDir)

	if verbose {
		for _, path := range result.Written {
			fmt.Printf("    %s\n", path)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nWarnings (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
		return fmt.Errorf("%d diagrams failed to render", len(result.Errors))
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/usediagram/internal/inputs"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-render a diagram file to SVG whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		source := args[0]
		kind, _ := cmd.Flags().GetString("kind")
		if kind == "" {
			kind = inputs.DetectKind(source)
		}
		if !render.ValidKind(kind) {
			return fmt.Errorf("cannot tell the diagram kind of %s; pass --kind mermaid|plantuml", source)
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = inputs.OutputName(source, 0, "svg")
		}

		stack := buildRenderers(cfg)
		renderer, ok := stack.Registry.Get(kind)
		if !ok {
			return fmt.Errorf("no renderer for %s", kind)
		}

		w, err := watch.New(watch.Options{
			Source:   source,
			Output:   output,
			Renderer: renderer,
			Debounce: cfg.Debounce(),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Watching %s (%s) -> %s, Ctrl+C to stop\n", source, kind, output)
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringP("output", "o", "", "output SVG path (default: FILE with .svg extension)")
	watchCmd.Flags().String("kind", "", "diagram kind: mermaid or plantuml (default: from extension)")
	rootCmd.AddCommand(watchCmd)
}

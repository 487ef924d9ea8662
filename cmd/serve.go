package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/server"
	"github.com/ziadkadry99/usediagram/internal/session"
	"github.com/ziadkadry99/usediagram/internal/shares"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagram editor web server",
	Long:  `Starts the usediagram HTTP server: the live editor, render endpoints, exports and shared diagrams.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("allow-all") {
			cfg.Server.AllowAll = serveAllowAll
		}

		database, dbPath, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		stack := buildRenderers(cfg)
		shareStore := shares.NewStore(database)
		blobs := export.NewBlobs("/downloads", cfg.DownloadTTL())
		sessions := session.NewHandler(session.Options{
			Renderers:   stack.Registry,
			PNG:         stack.PNG,
			Blobs:       blobs,
			Shares:      shareStore,
			Debounce:    cfg.Debounce(),
			Viewport:    cfg.ViewportOptions(),
			DefaultKind: cfg.Editor.DefaultKind,
		})

		srv := server.New(server.Config{
			Port:        cfg.Server.Port,
			AllowAll:    cfg.Server.AllowAll,
			DefaultKind: cfg.Editor.DefaultKind,
		}, server.Deps{
			DB:       database,
			Shares:   shareStore,
			Upstream: stack.Upstream,
			Blobs:    blobs,
			Sessions: sessions,
		})

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "usediagram server v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  PlantUML: %s\n", cfg.PlantUML.ServerURL)
		fmt.Fprintf(os.Stderr, "  Renderers: %v\n", stack.Registry.Kinds())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all", false, "allow all CORS origins (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

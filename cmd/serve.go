package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heritage-moments/album-studio/internal/config"
	"github.com/heritage-moments/album-studio/internal/database"
	"github.com/heritage-moments/album-studio/internal/database/postgres"
	"github.com/heritage-moments/album-studio/internal/storage"
	"github.com/heritage-moments/album-studio/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Album Studio web server.
The web server provides the browser-based album editor: album management,
page editing with undo/redo, media uploads, and layout templates.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides HTTP_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides HTTP_HOST)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (overrides SESSION_SECRET)")
	serveCmd.Flags().String("media-root", "", "Directory for uploaded media files (overrides MEDIA_ROOT)")
}

// applyServeFlags overlays command-line flags on the environment config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
	if root := mustGetString(cmd, "media-root"); root != "" {
		cfg.Media.Root = root
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyServeFlags(cmd, cfg)

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := connectDatabase(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	albums, err := database.GetAlbumWriter()
	if err != nil {
		return fmt.Errorf("album storage unavailable: %w", err)
	}
	library, err := database.GetMediaStore()
	if err != nil {
		return fmt.Errorf("media library unavailable: %w", err)
	}
	sessionRepo := postgres.NewSessionRepository(pool)
	fmt.Printf("Session persistence enabled (PostgreSQL)\n")

	fileStore, err := storage.NewLocal(cfg.Media.Root, cfg.Media.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to prepare media directory: %w", err)
	}
	fmt.Printf("Media files stored in %s\n", cfg.Media.Root)

	server := web.NewServer(cfg, albums, library, fileStore, sessionRepo)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Album Studio on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

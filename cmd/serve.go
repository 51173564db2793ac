package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/blobstore"
	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Marathon Booth web server.
The server exposes the registration API for the entry desk and the staff
photo booth API (runner lookup, camera control, countdown capture and
photo publishing).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("session-secret", "", "Secret for signing staff session cookies (defaults to SESSION_SECRET or random)")
}

// resolveServeHostPort resolves port and host from flags; WEB_PORT and WEB_HOST
// take precedence when set.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
	if cfg.Web.Port > 0 {
		port = cfg.Web.Port
	}
	if cfg.Web.Host != "" {
		host = cfg.Web.Host
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Driver)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	blobs, err := blobstore.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open photo storage: %w", err)
	}
	defer blobs.Close()
	fmt.Printf("Photo storage: %s\n", cfg.Storage.Backend)

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	if analyzer != nil {
		fmt.Printf("Face analysis: %s\n", analyzer.Name())
	} else {
		fmt.Println("Face analysis disabled")
	}

	if cfg.Web.StaffPassword == "" {
		fmt.Println("Warning: STAFF_PASSWORD is not set, staff routes are open")
	}

	port, host := resolveServeHostPort(cmd, cfg)

	server := web.NewServer(cfg, port, host, web.Deps{
		Store:    store,
		Blobs:    blobs,
		Camera:   newCameraProvider(cfg),
		Analyzer: analyzer,
		Catalog:  messages.Default(),
	})

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
		printAnalyzerUsage(analyzer)
	}()

	fmt.Printf("Starting Marathon Booth on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/marathon-booth/internal/camera"
	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/faceanalysis"

	// Storage backends register themselves with the database package.
	_ "github.com/kozaktomas/marathon-booth/internal/database/mariadb"
	_ "github.com/kozaktomas/marathon-booth/internal/database/postgres"
	_ "github.com/kozaktomas/marathon-booth/internal/database/sqlite"
)

// openStore connects to the configured runner database.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	store, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// newCameraProvider combines the configured HTTP cameras and the camera directory.
func newCameraProvider(cfg *config.Config) camera.Provider {
	var providers camera.Multi
	if len(cfg.Capture.Cameras) > 0 {
		providers = append(providers, camera.NewHTTPProvider(cfg.Capture.Cameras))
	}
	if cfg.Capture.CameraDir != "" {
		providers = append(providers, camera.NewDirProvider(cfg.Capture.CameraDir))
	}
	return providers
}

// newAnalyzer returns the configured face analyzer, or nil when disabled.
func newAnalyzer(ctx context.Context, cfg *config.Config) (faceanalysis.Analyzer, error) {
	analyzer, err := faceanalysis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create face analyzer: %w", err)
	}
	return analyzer, nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// printAnalyzerUsage prints the token usage and cost of a vision analyzer.
func printAnalyzerUsage(analyzer faceanalysis.Analyzer) {
	if analyzer == nil {
		return
	}
	usage, ok := faceanalysis.UsageOf(analyzer)
	if !ok {
		return
	}
	fmt.Printf("\nFace analysis usage (%s):\n", analyzer.Name())
	fmt.Printf("  Input tokens: %d\n", usage.InputTokens)
	fmt.Printf("  Output tokens: %d\n", usage.OutputTokens)
	fmt.Printf("  Total cost: $%.4f\n", usage.TotalCost)
}

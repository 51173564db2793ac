package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/kozaktomas/marathon-booth/internal/blobstore"
	"github.com/kozaktomas/marathon-booth/internal/capture"
	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture <runner-id>",
	Short: "Take a booth photo for a runner",
	Long: `Run one photo booth session from the terminal.

Looks up the runner, opens the selected camera, counts down and takes one
still. The still is written to --out and, with --publish, stored in the photo
storage and attached to the runner record.

Examples:
  marathon-booth capture 01234 --out aki.jpg
  marathon-booth capture 01234 --device camera-2 --publish`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("device", "", "Camera device ID (defaults to the first device)")
	captureCmd.Flags().String("out", "", "Write the still to this file")
	captureCmd.Flags().Bool("publish", false, "Publish the still and attach it to the runner")
	captureCmd.Flags().Duration("tick", 0, "Countdown tick interval (defaults to CAPTURE_TICK_INTERVAL)")
	captureCmd.Flags().Bool("json", false, "Output the final session as JSON")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outPath := mustGetString(cmd, "out")
	publish := mustGetBool(cmd, "publish")
	jsonOutput := mustGetBool(cmd, "json")
	if outPath == "" && !publish {
		return fmt.Errorf("nothing to do: set --out and/or --publish")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := capture.Deps{
		Store:  store,
		Camera: newCameraProvider(cfg),
	}
	deps.Analyzer, err = newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	if publish {
		blobs, err := blobstore.New(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to open photo storage: %w", err)
		}
		defer blobs.Close()
		deps.Blobs = blobs
	}

	opts := capture.Options{
		CountdownTicks:  cfg.Capture.CountdownTicks,
		TickInterval:    cfg.Capture.TickInterval,
		ProcessingDelay: 0,
	}
	if tick := mustGetDuration(cmd, "tick"); tick > 0 {
		opts.TickInterval = tick
	}

	session := capture.NewSession(uuid.NewString(), deps, opts)
	defer session.Close()

	rec, err := session.Search(ctx, args[0])
	if err != nil {
		return fmt.Errorf("runner lookup: %w", err)
	}
	if !jsonOutput {
		fmt.Printf("Runner %s: %s\n", rec.RunnerID, rec.Nickname)
	}

	devices, err := session.Devices(ctx)
	if err != nil {
		return fmt.Errorf("listing cameras: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no camera devices configured (set CAMERAS or CAMERA_DIR)")
	}
	if device := mustGetString(cmd, "device"); device != "" {
		if err := session.SelectDevice(device); err != nil {
			return err
		}
	}

	if err := session.OpenCamera(ctx); err != nil {
		return fmt.Errorf("opening camera: %w", err)
	}
	if !jsonOutput {
		fmt.Printf("Camera %s ready\n\n", session.View().DeviceID)
	}

	if err := runCountdown(ctx, session, opts.CountdownTicks, !jsonOutput); err != nil {
		return err
	}

	view := session.View()
	if !jsonOutput && view.Detection != nil {
		fmt.Printf("Estimated age group: %s, gender: %s\n", view.Detection.AgeGroup(), view.Detection.Gender)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, session.Still(), 0o600); err != nil {
			return fmt.Errorf("failed to write still: %w", err)
		}
		if !jsonOutput {
			fmt.Printf("Still written to %s\n", outPath)
		}
	}

	if publish {
		url, err := session.Publish(ctx)
		if err != nil {
			return fmt.Errorf("publishing: %w", err)
		}
		if !jsonOutput {
			fmt.Printf("Published %s\n", url)
		}
	}

	if jsonOutput {
		return outputJSON(session.View())
	}
	printAnalyzerUsage(deps.Analyzer)
	return nil
}

// runCountdown captures synchronously, rendering the countdown ticks as a bar.
func runCountdown(ctx context.Context, session *capture.Session, ticks int, showProgress bool) error {
	if !showProgress {
		return session.Capture(ctx)
	}

	events := session.AddListener()
	defer session.RemoveListener(events)

	bar := progressbar.NewOptions(ticks,
		progressbar.OptionSetDescription("Countdown"),
		progressbar.OptionShowCount(),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Type == capture.EventCountdown {
				_ = bar.Add(1)
			}
		}
	}()

	err := session.Capture(ctx)
	session.RemoveListener(events)
	<-done
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	fmt.Println("Photo taken")
	return nil
}

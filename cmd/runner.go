package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/constants"
	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/runner"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var runnerCmd = &cobra.Command{
	Use:   "runner",
	Short: "Inspect registered runners",
}

var runnerGetCmd = &cobra.Command{
	Use:   "get <runner-id>",
	Short: "Show one runner record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunnerGet,
}

var runnerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent registrations",
	Long: `List the most recent registrations, newest first.

With --export the listed records are also written to a CSV file.

Examples:
  marathon-booth runner list --limit 20
  marathon-booth runner list --limit 1000 --export runners.csv`,
	RunE: runRunnerList,
}

func init() {
	rootCmd.AddCommand(runnerCmd)
	runnerCmd.AddCommand(runnerGetCmd)
	runnerCmd.AddCommand(runnerListCmd)

	runnerGetCmd.Flags().Bool("json", false, "Output as JSON")

	runnerListCmd.Flags().Int("limit", database.DefaultListLimit, "Maximum number of records")
	runnerListCmd.Flags().String("export", "", "Write the records to this CSV file")
	runnerListCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRunnerGet(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	id := args[0]
	if !runner.ValidID(id) {
		return fmt.Errorf("invalid runner ID %q: expected %d digits", id, runner.IDDigits)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get runner: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("runner %s not found", id)
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(rec)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Runner ID:\t%s\n", rec.RunnerID)
	fmt.Fprintf(w, "Nickname:\t%s\n", rec.Nickname)
	fmt.Fprintf(w, "Language:\t%s\n", rec.Language)
	fmt.Fprintf(w, "Target time:\t%s (bracket %d)\n", displayTargetTime(rec.TargetTime), rec.TargetTimeNumber)
	fmt.Fprintf(w, "Message:\t%d. %s\n", rec.MessageNumber, rec.Message)
	fmt.Fprintf(w, "Upper phrase:\t%s\n", rec.UpperPhrase)
	fmt.Fprintf(w, "Lower phrase:\t%s\n", rec.LowerPhrase)
	fmt.Fprintf(w, "Registered:\t%s\n", rec.CreatedAt.Local().Format(time.DateTime))
	if rec.HasCapture() {
		fmt.Fprintf(w, "Photo:\t%s\n", rec.PhotoURL)
		fmt.Fprintf(w, "Age group:\t%s\n", rec.AgeGroup)
		fmt.Fprintf(w, "Gender:\t%s\n", rec.Gender)
	}
	return w.Flush()
}

func runRunnerList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	limit := mustGetInt(cmd, "limit")
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	if limit > constants.MaxRunnerListLimit {
		limit = constants.MaxRunnerListLimit
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runners: %w", err)
	}
	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count runners: %w", err)
	}

	jsonOutput := mustGetBool(cmd, "json")
	if path := mustGetString(cmd, "export"); path != "" {
		if err := exportRunnersCSV(path, records, !jsonOutput); err != nil {
			return err
		}
	}

	if jsonOutput {
		return outputJSON(map[string]any{"runners": records, "total": total})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNICKNAME\tLANG\tBRACKET\tREGISTERED\tPHOTO")
	for _, rec := range records {
		photo := "-"
		if rec.HasCapture() {
			photo = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			rec.RunnerID, rec.Nickname, rec.Language, rec.TargetTimeNumber,
			rec.CreatedAt.Local().Format(time.DateTime), photo)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nShowing %d of %d runners\n", len(records), total)
	return nil
}

var runnerCSVHeader = []string{
	"runner_id", "nickname", "language", "target_time", "target_time_number",
	"message_number", "message", "upper_phrase", "lower_phrase",
	"created_at", "photo_url", "age_group", "gender",
}

func exportRunnersCSV(path string, records []runner.Record, showProgress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(records),
			progressbar.OptionSetDescription("Exporting runners"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("runners"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(runnerCSVHeader); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.RunnerID, rec.Nickname, rec.Language, rec.TargetTime,
			strconv.Itoa(rec.TargetTimeNumber), strconv.Itoa(rec.MessageNumber),
			rec.Message, rec.UpperPhrase, rec.LowerPhrase,
			rec.CreatedAt.UTC().Format(time.RFC3339), rec.PhotoURL, rec.AgeGroup, rec.Gender,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Printf("\nExported %d runners to %s\n\n", len(records), path)
	}
	return f.Close()
}

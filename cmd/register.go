package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/registration"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a runner from the command line",
	Long: `Register a runner at the entry desk without the web UI.

The form is validated and the display phrases are drawn, then the resolved
registration is printed for confirmation before it is saved. The assigned
runner ID is printed on success.

Examples:
  marathon-booth register --nickname Aki --language ja --target-time 03:15:00 --message 2
  marathon-booth register --nickname Sam --language en --bracket 3 --message 1 --yes --json`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("nickname", "", "Runner nickname shown on the booth photo")
	registerCmd.Flags().String("language", "", "Message language (defaults to LOCALE)")
	registerCmd.Flags().String("target-time", "", "Target finish time as HHMMSS or HH:MM:SS")
	registerCmd.Flags().Int("bracket", 0, "Target time bracket (1-3), used when --target-time is empty")
	registerCmd.Flags().Int("message", 0, "Message number from the locale's intent list")
	registerCmd.Flags().Bool("yes", false, "Save without asking for confirmation")
	registerCmd.Flags().Bool("json", false, "Output as JSON")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	jsonOutput := mustGetBool(cmd, "json")
	language := mustGetString(cmd, "language")
	if language == "" {
		language = cfg.Locale
	}

	form := registration.Form{
		Nickname:      mustGetString(cmd, "nickname"),
		Language:      language,
		TargetTime:    mustGetString(cmd, "target-time"),
		Bracket:       mustGetInt(cmd, "bracket"),
		MessageNumber: mustGetInt(cmd, "message"),
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	flow := registration.NewFlow(messages.Default(), store, nil)
	if err := flow.Confirm(form); err != nil {
		if fields := registration.FieldErrors(err); len(fields) > 0 {
			if jsonOutput {
				_ = outputJSON(flow.View())
			}
			for _, f := range fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
			}
			return errors.New("invalid registration")
		}
		return err
	}

	view := flow.View()
	if !jsonOutput {
		printResolved(view.Resolved)
	}

	if !mustGetBool(cmd, "yes") {
		ok, err := confirmPrompt("Save this registration?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Registration cancelled")
			return nil
		}
	}

	rec, err := flow.Submit(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(flow.View())
	}
	fmt.Printf("\nRegistered runner %s\n", rec.RunnerID)
	return nil
}

func printResolved(r *registration.Resolved) {
	if r == nil {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Nickname:\t%s\n", r.Nickname)
	fmt.Fprintf(w, "Language:\t%s\n", r.Locale)
	fmt.Fprintf(w, "Target time:\t%s (bracket %d)\n", displayTargetTime(r.TargetTime), r.Bracket)
	fmt.Fprintf(w, "Message:\t%d. %s\n", r.MessageNum, r.Message)
	fmt.Fprintf(w, "Upper phrase:\t%s\n", r.Phrases.Upper)
	fmt.Fprintf(w, "Lower phrase:\t%s\n", r.Phrases.Lower)
	w.Flush()
}

func displayTargetTime(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// confirmPrompt asks a yes/no question on stdin. Anything but y/yes is a no.
func confirmPrompt(question string) (bool, error) {
	fmt.Printf("\n%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

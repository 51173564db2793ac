package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:   "messages [locale]",
	Short: "Show the registration message tables",
	Long: `Show the intents, target time brackets and phrase candidates of a locale.

Without a locale the available locales are listed. --accept resolves a locale
from an Accept-Language value the way the web API does.

Examples:
  marathon-booth messages
  marathon-booth messages ja
  marathon-booth messages --accept "en-US,en;q=0.9"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMessages,
}

func init() {
	rootCmd.AddCommand(messagesCmd)

	messagesCmd.Flags().String("accept", "", "Pick the locale from an Accept-Language header value")
	messagesCmd.Flags().Bool("json", false, "Output as JSON")
}

func runMessages(cmd *cobra.Command, args []string) error {
	catalog := messages.Default()
	jsonOutput := mustGetBool(cmd, "json")

	var locale messages.Locale
	switch {
	case len(args) == 1:
		locale = messages.Locale(args[0])
	case mustGetString(cmd, "accept") != "":
		locale = catalog.Match(mustGetString(cmd, "accept"))
	default:
		locales := catalog.Locales()
		if jsonOutput {
			return outputJSON(map[string]any{"locales": locales})
		}
		for _, l := range locales {
			t, _ := catalog.Table(l)
			fmt.Printf("%s\t%s\n", l, t.Name)
		}
		return nil
	}

	table, ok := catalog.Table(locale)
	if !ok {
		return fmt.Errorf("unknown locale %q", locale)
	}
	if jsonOutput {
		return outputJSON(table)
	}

	fmt.Printf("%s (%s)\n\n", table.Name, table.Locale)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BRACKET\tLABEL")
	for i, label := range table.Brackets {
		fmt.Fprintf(w, "%d\t%s\n", i+1, label)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "MESSAGE\tINTENT\tINITIAL PHRASES")
	for i, intent := range table.Intents {
		var initial string
		if i < len(table.Messages) {
			initial = strings.Join(table.Messages[i].Initial, " / ")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, intent, initial)
	}
	return w.Flush()
}

package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "marathon-booth",
	Short: "Marathon registration desk and photo booth",
	Long: `Marathon Booth registers runners, generates their cheer phrases and
drives the on-site photo booth: look a runner up by ID, run a countdown,
capture a still, estimate age and gender and attach the photo to the record.

Configuration is read from the environment. A .env file in the working
directory is loaded first when present; --env-file picks another one.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file instead of .env")
}

// initConfig loads the env file. Variables already set in the environment win.
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", envFile, err)
		}
		return
	}
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

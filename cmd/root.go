package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Root command flags
	verbose bool

	// Root command
	rootCmd = &cobra.Command{
		Use:               "hht-term",
		Short:             "RS232 hand-held terminal emulator for maintenance panels",
		Long: `hht-term reconstructs the LCD display of field devices that speak the
7E-framed hand-held terminal protocol, and sends the panel's ESC, UP,
DN and ENT buttons back over the wire.`,
		Version:           "1.0.0",
		Run:               runRoot,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(connectCmd)
}

// initConfig loads a local .env so HHT_PORT / HHT_BAUD can supply
// defaults without retyping flags. Missing files are fine.
func initConfig() {
	godotenv.Load()
}

// envDefault returns the environment value for key or the fallback.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// runRoot shows help when called without a subcommand.
func runRoot(cmd *cobra.Command, args []string) {
	cmd.Help()
}

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hht-term/pkg/app"
	"hht-term/pkg/config"
	"hht-term/pkg/serial"
)

var (
	// Config command flags
	configPort     string
	configBaudRate int
	configDataBits int
	configStopBits int
	configParity   string
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved port profiles",
	Long: `Manage saved serial port profiles.

This command allows you to save, load, list, and delete port profiles
for quick access to frequently used devices.`,
}

// saveCmd saves a profile
var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a port profile",
	Long: `Save a serial port profile with a given name.

Example:
  hht-term config save carA -p /dev/ttyUSB0 -b 115200`,
	Args: cobra.ExactArgs(1),
	Run:  runSaveProfile,
}

// loadCmd loads a profile and connects
var loadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load a profile and open a session",
	Long: `Load a saved profile and immediately connect to the device.

Example:
  hht-term config load carA`,
	Args: cobra.ExactArgs(1),
	Run:  runLoadProfile,
}

// listProfilesCmd lists all profiles
var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved profiles",
	Long:  `Display a list of all saved port profiles.`,
	Run:   runListProfiles,
}

// deleteCmd deletes a profile
var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Long: `Delete a saved port profile.

Example:
  hht-term config delete carA`,
	Aliases: []string{"rm", "remove"},
	Args:    cobra.ExactArgs(1),
	Run:     runDeleteProfile,
}

// showCmd shows details of a profile
var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show details of a saved profile",
	Args:  cobra.ExactArgs(1),
	Run:   runShowProfile,
}

func init() {
	configCmd.AddCommand(saveCmd)
	configCmd.AddCommand(loadCmd)
	configCmd.AddCommand(listProfilesCmd)
	configCmd.AddCommand(deleteCmd)
	configCmd.AddCommand(showCmd)

	saveCmd.Flags().StringVarP(&configPort, "port", "p", "", "serial port")
	saveCmd.Flags().IntVarP(&configBaudRate, "baud", "b", 115200, "baud rate")
	saveCmd.Flags().IntVarP(&configDataBits, "data", "d", 8, "data bits (5-8)")
	saveCmd.Flags().IntVarP(&configStopBits, "stop", "s", 1, "stop bits (1 or 2)")
	saveCmd.Flags().StringVar(&configParity, "parity", "N", "parity (N, E, O, M, S)")
	saveCmd.MarkFlagRequired("port")
}

func runSaveProfile(cmd *cobra.Command, args []string) {
	name := args[0]

	cfg := serial.DefaultConfig()
	cfg.Port = configPort
	cfg.BaudRate = configBaudRate
	cfg.DataBits = configDataBits
	cfg.StopBits = configStopBits
	cfg.Parity = configParity

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	manager := config.NewFileManager("")
	if err := manager.SaveProfile(name, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Profile '%s' saved.\n", name)
	fmt.Printf("  Port:     %s\n", cfg.Port)
	fmt.Printf("  Settings: %d %d-%s-%d\n", cfg.BaudRate, cfg.DataBits, cfg.Parity, cfg.StopBits)
}

func runLoadProfile(cmd *cobra.Command, args []string) {
	name := args[0]

	manager := config.NewFileManager("")
	cfg, err := manager.LoadProfile(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading profile '%s': %v\n", name, err)
		os.Exit(1)
	}

	fmt.Printf("Loading profile '%s'...\n", name)
	fmt.Printf("Connecting to %s at %d baud...\n", cfg.Port, cfg.BaudRate)

	if err := app.RunInteractive(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running session: %v\n", err)
		os.Exit(1)
	}
}

func runListProfiles(cmd *cobra.Command, args []string) {
	manager := config.NewFileManager("")
	profiles, err := manager.ListProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing profiles: %v\n", err)
		os.Exit(1)
	}

	if len(profiles) == 0 {
		fmt.Println("No saved profiles found.")
		fmt.Println("\nUse 'hht-term config save <name>' to save a profile.")
		return
	}

	fmt.Printf("Found %d saved profile(s):\n\n", len(profiles))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPORT\tBAUD\tLAST USED\tCREATED")
	fmt.Fprintln(w, "----\t----\t----\t---------\t-------")

	for _, p := range profiles {
		lastUsed := "Never"
		if !p.LastUsedAt.IsZero() {
			lastUsed = p.LastUsedAt.Format("2006-01-02 15:04")
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			p.Name,
			p.Config.Port,
			p.Config.BaudRate,
			lastUsed,
			p.CreatedAt.Format("2006-01-02 15:04"))
	}

	w.Flush()

	fmt.Println("\nUse 'hht-term config load <name>' to open a session with a profile.")
}

func runDeleteProfile(cmd *cobra.Command, args []string) {
	name := args[0]

	manager := config.NewFileManager("")
	if err := manager.DeleteProfile(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting profile '%s': %v\n", name, err)
		os.Exit(1)
	}

	fmt.Printf("Profile '%s' deleted.\n", name)
}

func runShowProfile(cmd *cobra.Command, args []string) {
	name := args[0]

	manager := config.NewFileManager("")
	profiles, err := manager.ListProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading profiles: %v\n", err)
		os.Exit(1)
	}

	var found *config.ProfileInfo
	for i := range profiles {
		if profiles[i].Name == name {
			found = &profiles[i]
			break
		}
	}

	if found == nil {
		fmt.Fprintf(os.Stderr, "Profile '%s' not found.\n", name)
		os.Exit(1)
	}

	fmt.Printf("Profile: %s\n", found.Name)
	fmt.Printf("  Port:      %s\n", found.Config.Port)
	fmt.Printf("  Baud Rate: %d\n", found.Config.BaudRate)
	fmt.Printf("  Data Bits: %d\n", found.Config.DataBits)
	fmt.Printf("  Stop Bits: %d\n", found.Config.StopBits)
	fmt.Printf("  Parity:    %s\n", found.Config.Parity)
	fmt.Printf("  Created:   %s\n", found.CreatedAt.Format(time.RFC3339))

	if !found.LastUsedAt.IsZero() {
		fmt.Printf("  Last Used: %s\n", found.LastUsedAt.Format(time.RFC3339))
	} else {
		fmt.Printf("  Last Used: Never\n")
	}
}

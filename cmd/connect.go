package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hht-term/pkg/app"
	"hht-term/pkg/config"
	"hht-term/pkg/serial"
)

var (
	baudRate int
	dataBits int
	stopBits int
	parity   string

	connectHex        bool
	connectTimestamps bool
	connectSaveLog    bool
	connectEventLog   string
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect <port|profile>",
	Short: "Open a terminal session with a device",
	Long: `Connect to a device directly or using a saved profile.

You can specify either:
  - A port name (e.g., COM3, /dev/ttyUSB0) with optional parameters
  - A saved profile name

The session shows the device's reconstructed LCD on the right and the
raw traffic log on the left. Arrow keys move the menu cursor, Enter
confirms, Escape goes back; each keypress sends the matching panel
command byte to the device.

Examples:
  # Connect with default settings
  hht-term connect /dev/ttyUSB0

  # Connect with a custom baud rate and even parity
  hht-term connect /dev/ttyUSB0 -b 9600 --parity E

  # Connect using a saved profile
  hht-term connect carA

With no argument, the HHT_PORT environment variable (or a .env file in
the working directory) supplies the port.`,
	Args:    cobra.MaximumNArgs(1),
	Aliases: []string{"open", "c"},
	Run:     runConnect,
}

func init() {
	connectCmd.Flags().IntVarP(&baudRate, "baud", "b", 115200, "baud rate (HHT_BAUD overrides the default)")
	connectCmd.Flags().IntVarP(&dataBits, "data", "d", 8, "data bits (5-8)")
	connectCmd.Flags().IntVarP(&stopBits, "stop", "s", 1, "stop bits (1 or 2)")
	connectCmd.Flags().StringVar(&parity, "parity", "N", "parity (N, E, O, M, S)")

	connectCmd.Flags().BoolVar(&connectHex, "hex", true, "show traffic log in hex")
	connectCmd.Flags().BoolVar(&connectTimestamps, "timestamps", true, "timestamp traffic log entries")
	connectCmd.Flags().BoolVar(&connectSaveLog, "save-log", false, "save the traffic log on exit")
	connectCmd.Flags().StringVar(&connectEventLog, "log", "", "write session events to this file")
}

// resolveEnvBaud applies an HHT_BAUD override when --baud was left at
// its default. It must run after initConfig, once a local .env has had
// the chance to populate the environment.
func resolveEnvBaud(cmd *cobra.Command) {
	if cmd.Flags().Changed("baud") {
		return
	}
	if v, err := strconv.Atoi(envDefault("HHT_BAUD", "")); err == nil {
		baudRate = v
	}
}

func runConnect(cmd *cobra.Command, args []string) {
	resolveEnvBaud(cmd)

	var target string
	if len(args) > 0 {
		target = args[0]
	} else if target = envDefault("HHT_PORT", ""); target == "" {
		fmt.Fprintln(os.Stderr, "Error: no port given and HHT_PORT is not set.")
		os.Exit(1)
	}

	var serialConfig serial.Config

	if isSerialPort(target) {
		serialConfig = serial.DefaultConfig()
		serialConfig.Port = target
		serialConfig.BaudRate = baudRate
		serialConfig.DataBits = dataBits
		serialConfig.StopBits = stopBits
		serialConfig.Parity = parity

		if err := serialConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		if verbose {
			fmt.Printf("Connecting to port %s...\n", target)
			fmt.Printf("  Settings: %d %d-%s-%d\n", baudRate, dataBits, parity, stopBits)
		}
	} else {
		manager := config.NewFileManager("")
		cfg, err := manager.LoadProfile(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: '%s' is neither a valid port nor a saved profile.\n", target)
			printConnectHelp(manager)
			os.Exit(1)
		}

		serialConfig = cfg

		if verbose {
			fmt.Printf("Loading profile '%s'...\n", target)
			fmt.Printf("  Port: %s\n", cfg.Port)
		}
	}

	testConnection(serialConfig)

	fmt.Println("\nStarting terminal session...")
	fmt.Println("Press Ctrl+Q to exit")

	opts := app.Options{
		HexView:      connectHex,
		Timestamps:   connectTimestamps,
		SaveOnExit:   connectSaveLog,
		EventLogPath: connectEventLog,
	}
	if err := app.RunInteractiveWithOptions(serialConfig, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error running session: %v\n", err)
		os.Exit(1)
	}
}

func printConnectHelp(manager config.Manager) {
	fmt.Fprintf(os.Stderr, "\nAvailable ports:\n")
	ports, _ := serial.ListPorts()
	if len(ports) == 0 {
		fmt.Fprintf(os.Stderr, "  No serial ports found.\n")
	} else {
		for _, p := range ports {
			fmt.Fprintf(os.Stderr, "  - %s\n", p)
		}
	}

	profiles, _ := manager.ListProfiles()
	if len(profiles) > 0 {
		fmt.Fprintf(os.Stderr, "\nAvailable profiles:\n")
		for _, p := range profiles {
			fmt.Fprintf(os.Stderr, "  - %s (port: %s)\n", p.Name, p.Config.Port)
		}
	}
}

func isSerialPort(name string) bool {
	lower := strings.ToLower(name)

	// Windows COM ports
	if strings.HasPrefix(lower, "com") {
		return true
	}

	// Unix-like serial devices
	if strings.HasPrefix(name, "/dev/") {
		return true
	}

	return serial.IsPortAvailable(name)
}

func testConnection(cfg serial.Config) {
	fmt.Printf("\nTesting connection to %s...\n", cfg.Port)

	sp := serial.NewPort()
	err := sp.Open(cfg)

	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: Failed to open serial port: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nPossible solutions:\n")

		errStr := err.Error()
		if strings.Contains(errStr, "permission") || strings.Contains(errStr, "access") {
			fmt.Fprintf(os.Stderr, "  - Check if you have permission to access the port\n")
			fmt.Fprintf(os.Stderr, "  - On Linux: Add your user to the 'dialout' group: sudo usermod -a -G dialout $USER\n")
		}
		if strings.Contains(errStr, "busy") || strings.Contains(errStr, "use") {
			fmt.Fprintf(os.Stderr, "  - The port may be in use by another application\n")
		}
		if strings.Contains(errStr, "not found") || strings.Contains(errStr, "no such") {
			fmt.Fprintf(os.Stderr, "  - The specified port does not exist\n")
			fmt.Fprintf(os.Stderr, "  - Use 'hht-term list' to see available ports\n")
		}

		os.Exit(1)
	}

	fmt.Println("Connection successful.")
	fmt.Printf("  Settings: %d %d-%s-%d\n",
		cfg.BaudRate, cfg.DataBits, cfg.Parity, cfg.StopBits)

	sp.Close()
}

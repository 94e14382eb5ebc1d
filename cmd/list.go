package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hht-term/pkg/serial"
)

var (
	listDetails bool
	listFormat  string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans the system for available serial ports and displays
them in a formatted list. On different platforms:
  - Windows: Lists COM ports
  - Linux: Lists /dev/tty* devices
  - macOS: Lists /dev/cu.* and /dev/tty.* devices`,
	Aliases: []string{"ls", "ports"},
	Run:     runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listDetails, "details", "d", false, "show detailed port information")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, csv, json)")
}

func runList(cmd *cobra.Command, args []string) {
	portInfos, err := serial.GetDetailedPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	if len(portInfos) == 0 {
		fmt.Println("No serial ports found.")
		return
	}

	switch listFormat {
	case "csv":
		printPortsCSV(portInfos)
	case "json":
		printPortsJSON(portInfos)
	default:
		printPortsTable(portInfos)
	}
}

func printPortsTable(portInfos []serial.PortInfo) {
	fmt.Printf("Found %d serial port(s):\n", len(portInfos))

	for _, portInfo := range portInfos {
		fmt.Printf("  %s", portInfo.Name)
		if listDetails && portInfo.IsUSB {
			fmt.Printf(" [USB]")
			if portInfo.VID != "" || portInfo.PID != "" {
				fmt.Printf(" VID:%s PID:%s", portInfo.VID, portInfo.PID)
			}
			if portInfo.Product != "" {
				fmt.Printf(" - %s", portInfo.Product)
			}
			if portInfo.SerialNumber != "" {
				fmt.Printf(" (SN: %s)", portInfo.SerialNumber)
			}
		}
		fmt.Println()
	}

	fmt.Println("\nUse 'hht-term connect <port>' to open a session.")
}

func printPortsCSV(portInfos []serial.PortInfo) {
	if listDetails {
		fmt.Println("port,is_usb,vid,pid,product,serial_number")
		for _, portInfo := range portInfos {
			fmt.Printf("%s,%t,%s,%s,%s,%s\n",
				portInfo.Name,
				portInfo.IsUSB,
				portInfo.VID,
				portInfo.PID,
				portInfo.Product,
				portInfo.SerialNumber)
		}
	} else {
		fmt.Println("port")
		for _, portInfo := range portInfos {
			fmt.Println(portInfo.Name)
		}
	}
}

func printPortsJSON(portInfos []serial.PortInfo) {
	data, err := json.MarshalIndent(portInfos, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ports: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

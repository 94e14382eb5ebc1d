package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	want := map[string]bool{
		"list":    false,
		"config":  false,
		"connect": false,
	}

	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConfigCommandHasSubcommands(t *testing.T) {
	want := map[string]bool{
		"save":   false,
		"load":   false,
		"list":   false,
		"delete": false,
		"show":   false,
	}

	for _, c := range configCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("config subcommand %q not registered", name)
		}
	}
}

func TestIsSerialPort(t *testing.T) {
	tests := []struct {
		name string
		port string
		want bool
	}{
		{"windows com port", "COM3", true},
		{"windows com port lowercase", "com1", true},
		{"unix device", "/dev/ttyUSB0", true},
		{"unix cu device", "/dev/cu.usbserial", true},
		{"profile name", "definitely-not-a-port-name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSerialPort(tt.port); got != tt.want {
				t.Errorf("isSerialPort(%q) = %v, want %v", tt.port, got, tt.want)
			}
		})
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv("HHT_TEST_KEY", "value")

	if got := envDefault("HHT_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("envDefault() = %q, want %q", got, "value")
	}
	if got := envDefault("HHT_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("envDefault() = %q, want fallback", got)
	}
}

func TestConnectCommandFlags(t *testing.T) {
	for _, flag := range []string{"baud", "data", "stop", "parity", "hex", "timestamps", "save-log", "log"} {
		if connectCmd.Flags().Lookup(flag) == nil {
			t.Errorf("connect command missing flag %q", flag)
		}
	}

	if got := connectCmd.Flags().Lookup("parity").DefValue; got != "N" {
		t.Errorf("parity default = %q, want N", got)
	}
}

func TestResolveEnvBaud(t *testing.T) {
	restore := func(t *testing.T) {
		old := baudRate
		f := connectCmd.Flags().Lookup("baud")
		wasChanged := f.Changed
		t.Cleanup(func() {
			baudRate = old
			f.Changed = wasChanged
		})
	}

	t.Run("env var overrides default", func(t *testing.T) {
		restore(t)
		t.Setenv("HHT_BAUD", "9600")

		resolveEnvBaud(connectCmd)
		if baudRate != 9600 {
			t.Errorf("baud = %d, want 9600 from HHT_BAUD", baudRate)
		}
	})

	t.Run("explicit flag wins over env", func(t *testing.T) {
		restore(t)
		t.Setenv("HHT_BAUD", "9600")
		if err := connectCmd.Flags().Set("baud", "57600"); err != nil {
			t.Fatalf("Set(baud) error = %v", err)
		}

		resolveEnvBaud(connectCmd)
		if baudRate != 57600 {
			t.Errorf("baud = %d, want the explicit 57600", baudRate)
		}
	})

	// The override must see values loaded from a .env file, which only
	// happens once initConfig has run.
	t.Run("env file overrides default", func(t *testing.T) {
		restore(t)
		t.Setenv("HHT_BAUD", "")
		os.Unsetenv("HHT_BAUD")

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HHT_BAUD=9600\n"), 0644); err != nil {
			t.Fatalf("write .env: %v", err)
		}
		oldWD, err := os.Getwd()
		if err != nil {
			t.Fatalf("Getwd: %v", err)
		}
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("Chdir: %v", err)
		}
		t.Cleanup(func() { os.Chdir(oldWD) })

		initConfig()
		resolveEnvBaud(connectCmd)
		if baudRate != 9600 {
			t.Errorf("baud = %d, want 9600 from .env", baudRate)
		}
	})

	t.Run("unset env keeps default", func(t *testing.T) {
		restore(t)
		t.Setenv("HHT_BAUD", "")
		os.Unsetenv("HHT_BAUD")
		baudRate = 115200

		resolveEnvBaud(connectCmd)
		if baudRate != 115200 {
			t.Errorf("baud = %d, want the 115200 default", baudRate)
		}
	})
}

func TestListCommandAliases(t *testing.T) {
	aliases := map[string]bool{}
	for _, a := range listCmd.Aliases {
		aliases[a] = true
	}
	if !aliases["ls"] || !aliases["ports"] {
		t.Errorf("list aliases = %v, want ls and ports", listCmd.Aliases)
	}
}

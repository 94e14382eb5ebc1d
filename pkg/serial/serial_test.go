package serial

import (
	"testing"
	"time"

	bugst "go.bug.st/serial"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Port:     "/dev/ttyUSB0",
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  20 * time.Millisecond,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"invalid baud rate", func(c *Config) { c.BaudRate = 12345 }, true},
		{"data bits too high", func(c *Config) { c.DataBits = 9 }, true},
		{"data bits too low", func(c *Config) { c.DataBits = 4 }, true},
		{"invalid stop bits", func(c *Config) { c.StopBits = 3 }, true},
		{"invalid parity word", func(c *Config) { c.Parity = "none" }, true},
		{"even parity", func(c *Config) { c.Parity = "E" }, false},
		{"mark parity", func(c *Config) { c.Parity = "M" }, false},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"low baud rate", func(c *Config) { c.BaudRate = 1200 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() with a port set is invalid: %v", err)
	}

	if cfg.BaudRate != 115200 {
		t.Errorf("DefaultConfig() BaudRate = %d, want 115200", cfg.BaudRate)
	}
	if cfg.Parity != "N" {
		t.Errorf("DefaultConfig() Parity = %q, want N", cfg.Parity)
	}
	if cfg.Timeout <= 0 || cfg.Timeout > 100*time.Millisecond {
		t.Errorf("DefaultConfig() Timeout = %v, want a short poll-friendly timeout", cfg.Timeout)
	}
}

func TestConvertParity(t *testing.T) {
	tests := []struct {
		in   string
		want bugst.Parity
	}{
		{"N", bugst.NoParity},
		{"E", bugst.EvenParity},
		{"O", bugst.OddParity},
		{"M", bugst.MarkParity},
		{"S", bugst.SpaceParity},
		{"anything else", bugst.NoParity},
	}

	for _, tt := range tests {
		if got := convertParity(tt.in); got != tt.want {
			t.Errorf("convertParity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConvertStopBits(t *testing.T) {
	if got := convertStopBits(1); got != bugst.OneStopBit {
		t.Errorf("convertStopBits(1) = %v, want OneStopBit", got)
	}
	if got := convertStopBits(2); got != bugst.TwoStopBits {
		t.Errorf("convertStopBits(2) = %v, want TwoStopBits", got)
	}
}

// fakePort simulates a driver that hands out a fixed payload one read at
// a time.
type fakePort struct {
	bugst.Port
	data []byte
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, nil // timeout expiry: no bytes ready
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) { return len(p), nil }
func (f *fakePort) Close() error                { return nil }

func TestDevicePort_AvailableStagesBytes(t *testing.T) {
	dp := NewDevicePort()
	dp.port = &fakePort{data: []byte{0x7E, 0x41, 0x7E}}
	dp.isOpen = true

	n, err := dp.Available()
	if err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("Available() = %d, want 3", n)
	}

	// A second probe must not consume anything new while bytes are staged.
	n, _ = dp.Available()
	if n != 3 {
		t.Errorf("second Available() = %d, want 3", n)
	}

	buf := make([]byte, 2)
	r, err := dp.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if r != 2 || buf[0] != 0x7E || buf[1] != 0x41 {
		t.Errorf("Read() = %d bytes % X, want 2 bytes 7E 41", r, buf[:r])
	}

	n, _ = dp.Available()
	if n != 1 {
		t.Errorf("Available() after partial drain = %d, want 1", n)
	}
}

func TestDevicePort_AvailableQuietLine(t *testing.T) {
	dp := NewDevicePort()
	dp.port = &fakePort{}
	dp.isOpen = true

	n, err := dp.Available()
	if err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Available() on a quiet line = %d, want 0", n)
	}
}

func TestDevicePort_ClosedOperationsFail(t *testing.T) {
	dp := NewDevicePort()

	if _, err := dp.Available(); err == nil {
		t.Error("Available() on a closed port did not fail")
	}
	if _, err := dp.Read(make([]byte, 8)); err == nil {
		t.Error("Read() on a closed port did not fail")
	}
	if _, err := dp.Write([]byte{0x02}); err == nil {
		t.Error("Write() on a closed port did not fail")
	}
	if err := dp.Close(); err == nil {
		t.Error("Close() on a closed port did not fail")
	}
	if dp.IsOpen() {
		t.Error("IsOpen() = true for a fresh port")
	}
}

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateError, "error"},
		{ConnectionState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ConnectionState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

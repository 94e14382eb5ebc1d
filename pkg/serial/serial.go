// Package serial wraps the RS232 transport the hand-held terminal
// protocol rides on. It adds the polled Available/Read surface the stream
// pump needs on top of go.bug.st/serial.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Config defines the port settings for a device session. Parity and stop
// bits use the single-letter / numeric forms the device documentation
// uses (N/E/O/M/S, 1/2).
type Config struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

var validBaudRates = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

// Validate checks if the port configuration is valid.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	validBaud := false
	for _, rate := range validBaudRates {
		if c.BaudRate == rate {
			validBaud = true
			break
		}
	}
	if !validBaud {
		return fmt.Errorf("invalid baud rate: %d", c.BaudRate)
	}

	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("data bits must be between 5 and 8, got: %d", c.DataBits)
	}

	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("stop bits must be 1 or 2, got: %d", c.StopBits)
	}

	switch c.Parity {
	case "N", "E", "O", "M", "S":
	default:
		return fmt.Errorf("invalid parity: %q (want N, E, O, M, or S)", c.Parity)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// DefaultConfig returns the settings the device ships with. The read
// timeout is deliberately short: it bounds how long an Available probe
// can stall the pump's poll loop.
func DefaultConfig() Config {
	return Config{
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  20 * time.Millisecond,
	}
}

// Port is the transport contract the rest of the tool consumes. Available
// and Read satisfy the pump's polled-transport interface.
type Port interface {
	Open(config Config) error
	Close() error
	Available() (int, error)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	IsOpen() bool
	GetConfig() Config
}

// DevicePort implements Port on go.bug.st/serial. The driver has no
// readable-count query, so Available stages bytes from a short-timeout
// read in a pending buffer that Read drains first.
type DevicePort struct {
	port    serial.Port
	config  Config
	isOpen  bool
	pending []byte
	scratch []byte
}

// NewDevicePort creates a closed device port.
func NewDevicePort() *DevicePort {
	return &DevicePort{
		scratch: make([]byte, 1024),
	}
}

// Open opens the serial port with the given configuration.
func (dp *DevicePort) Open(config Config) error {
	if dp.isOpen {
		return fmt.Errorf("serial port is already open")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		StopBits: convertStopBits(config.StopBits),
		Parity:   convertParity(config.Parity),
	}

	port, err := serial.Open(config.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", config.Port, err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	dp.port = port
	dp.config = config
	dp.isOpen = true
	dp.pending = dp.pending[:0]

	return nil
}

// Close closes the serial port and drops any staged bytes.
func (dp *DevicePort) Close() error {
	if !dp.isOpen {
		return fmt.Errorf("serial port is not open")
	}

	err := dp.port.Close()
	dp.port = nil
	dp.isOpen = false
	dp.pending = dp.pending[:0]

	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	return nil
}

// Available reports how many bytes can be handed out without waiting
// beyond the configured read timeout. Bytes pulled by the probe stay
// staged for the next Read.
func (dp *DevicePort) Available() (int, error) {
	if !dp.isOpen {
		return 0, fmt.Errorf("serial port is not open")
	}

	if len(dp.pending) > 0 {
		return len(dp.pending), nil
	}

	n, err := dp.port.Read(dp.scratch)
	if n > 0 {
		dp.pending = append(dp.pending, dp.scratch[:n]...)
	}
	if err != nil {
		return len(dp.pending), fmt.Errorf("failed to probe serial port: %w", err)
	}

	return len(dp.pending), nil
}

// Read returns staged bytes first, then reads from the port.
func (dp *DevicePort) Read(p []byte) (int, error) {
	if !dp.isOpen {
		return 0, fmt.Errorf("serial port is not open")
	}

	if len(dp.pending) > 0 {
		n := copy(p, dp.pending)
		dp.pending = dp.pending[n:]
		return n, nil
	}

	n, err := dp.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("failed to read from serial port: %w", err)
	}

	return n, nil
}

// Write sends data to the device.
func (dp *DevicePort) Write(p []byte) (int, error) {
	if !dp.isOpen {
		return 0, fmt.Errorf("serial port is not open")
	}

	n, err := dp.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("failed to write to serial port: %w", err)
	}

	return n, nil
}

// IsOpen returns true if the serial port is open.
func (dp *DevicePort) IsOpen() bool {
	return dp.isOpen
}

// GetConfig returns the current port configuration.
func (dp *DevicePort) GetConfig() Config {
	return dp.config
}

// NewPort creates a new device port (convenience function).
func NewPort() Port {
	return NewDevicePort()
}

func convertStopBits(stopBits int) serial.StopBits {
	if stopBits == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

func convertParity(parity string) serial.Parity {
	switch parity {
	case "E":
		return serial.EvenParity
	case "O":
		return serial.OddParity
	case "M":
		return serial.MarkParity
	case "S":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

// ConnectionState represents the state of a serial connection.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns the string representation of ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

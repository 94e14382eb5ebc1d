package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hht-term/pkg/serial"
)

// Runner provides a high-level interface to run a terminal session.
type Runner struct {
	app    *Application
	config AppConfig
}

// NewRunner creates a runner for the given serial configuration with
// default application settings.
func NewRunner(serialConfig serial.Config) *Runner {
	cfg := DefaultAppConfig()
	cfg.Serial = serialConfig
	return &Runner{config: cfg}
}

// Run starts the session and blocks until it stops or a signal arrives.
func (r *Runner) Run() error {
	app, err := NewApplication(r.config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	r.app = app

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := app.Start(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	select {
	case <-sigChan:
	case <-app.Done():
	}

	if err := app.Stop(); err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}

	r.printSessionSummary()

	return nil
}

// Stop stops the running session.
func (r *Runner) Stop() error {
	if r.app != nil {
		return r.app.Stop()
	}
	return nil
}

func (r *Runner) printSessionSummary() {
	if r.app == nil {
		return
	}

	bytesRecv, bytesSent, duration := r.app.Stats()

	fmt.Printf("\n=== Session Summary ===\n")
	fmt.Printf("Port:           %s\n", r.config.Serial.Port)
	fmt.Printf("Duration:       %v\n", duration.Round(time.Millisecond))
	fmt.Printf("Bytes Received: %d\n", bytesRecv)
	fmt.Printf("Bytes Sent:     %d\n", bytesSent)
	fmt.Printf("=======================\n")
}

// Options carries session tweaks from the command line.
type Options struct {
	HexView      bool
	Timestamps   bool
	EventLogPath string
	SaveOnExit   bool
}

// RunInteractive runs a session with default options.
func RunInteractive(serialConfig serial.Config) error {
	return NewRunner(serialConfig).Run()
}

// RunInteractiveWithOptions runs a session with command-line options
// applied.
func RunInteractiveWithOptions(serialConfig serial.Config, opts Options) error {
	r := NewRunner(serialConfig)
	r.config.HexView = opts.HexView
	r.config.Timestamps = opts.Timestamps
	r.config.EventLogPath = opts.EventLogPath
	r.config.SaveOnExit = opts.SaveOnExit
	return r.Run()
}

// Package app wires the transport, stream pump, protocol decoder, and
// cursor model into the interactive terminal. Everything below the pump
// runs on one event loop: the cursor model, the traffic log, and the
// blink timer are only ever touched from that goroutine, while the pump
// goroutine owns the framer. The channels between them are the only
// shared state.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-runewidth"

	"hht-term/pkg/history"
	"hht-term/pkg/lcd"
	"hht-term/pkg/protocol"
	"hht-term/pkg/pump"
	"hht-term/pkg/serial"
)

const (
	// The device's cursor blinks and its ENT acknowledge flashes on the
	// same 500ms cadence.
	blinkInterval = 500 * time.Millisecond
	ackHighlight  = 500 * time.Millisecond

	stopTimeout = 2 * time.Second
)

// AppConfig contains application configuration.
type AppConfig struct {
	Serial       serial.Config
	HexView      bool
	Timestamps   bool
	LogDepth     int
	EventLogPath string
	SaveOnExit   bool
	SaveFormat   history.FileFormat
}

// DefaultAppConfig returns default application configuration.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Serial:     serial.DefaultConfig(),
		HexView:    true,
		Timestamps: true,
		LogDepth:   5000,
		SaveFormat: history.FormatTimestamped,
	}
}

// Application is the interactive session controller.
type Application struct {
	port    serial.Port
	pump    *pump.Pump
	model   *lcd.Model
	traffic *history.Log

	screen tcell.Screen
	events chan tcell.Event

	logger  *slog.Logger
	logFile *os.File

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}

	mu        sync.RWMutex
	isRunning bool

	config     AppConfig
	hexView    bool
	timestamps bool
	ackUntil   time.Time
	lastLCD    string
	startTime  time.Time
}

// NewApplication creates a new application instance. The serial port is
// not opened until Start.
func NewApplication(config AppConfig) (*Application, error) {
	if err := config.Serial.Validate(); err != nil {
		return nil, fmt.Errorf("invalid serial config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		port:       serial.NewPort(),
		model:      lcd.NewModel(),
		traffic:    history.NewLog(config.LogDepth),
		events:     make(chan tcell.Event, 16),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		config:     config,
		hexView:    config.HexView,
		timestamps: config.Timestamps,
	}

	if err := app.initLogger(); err != nil {
		cancel()
		return nil, err
	}

	return app, nil
}

// initLogger sets up the session event log. Without a configured path
// events are discarded; the traffic log pane is the operator's view.
func (app *Application) initLogger() error {
	var w io.Writer = io.Discard
	if app.config.EventLogPath != "" {
		f, err := os.OpenFile(app.config.EventLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open event log: %w", err)
		}
		app.logFile = f
		w = f
	}

	app.logger = slog.New(tint.NewHandler(w, &tint.Options{
		NoColor:    true,
		TimeFormat: "15:04:05.000",
	}))

	return nil
}

// Start opens the serial port, initializes the screen, and launches the
// pump and the event loop.
func (app *Application) Start() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.isRunning {
		return fmt.Errorf("application is already running")
	}

	if err := app.port.Open(app.config.Serial); err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	app.logger.Info("connected",
		"port", app.config.Serial.Port,
		"baud", app.config.Serial.BaudRate)

	screen, err := tcell.NewScreen()
	if err != nil {
		app.port.Close()
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		app.port.Close()
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	app.screen = screen

	app.pump = pump.New(app.port)
	app.pump.Start(app.ctx)

	app.startTime = time.Now()
	app.isRunning = true

	app.wg.Add(2)
	go app.pollEvents()
	go app.run()

	return nil
}

// Stop shuts the session down: cancels the workers, closes the port,
// finalizes the screen, and saves the traffic log if configured.
func (app *Application) Stop() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.isRunning {
		return nil
	}
	app.isRunning = false

	app.cancel()

	// Wake the event poller out of PollEvent.
	if app.screen != nil {
		app.screen.PostEvent(tcell.NewEventResize(0, 0))
	}

	// The pump and the event loop must drain before the port closes:
	// both may have a Read or Write in flight, and the short read
	// timeout means they notice the cancel promptly.
	if app.pump != nil {
		app.pump.Wait()
	}

	waited := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(stopTimeout):
		app.logger.Warn("event loop did not stop cleanly")
	}

	if app.port != nil && app.port.IsOpen() {
		app.port.Close()
	}

	if app.screen != nil {
		app.screen.Fini()
		app.screen = nil
	}

	if app.config.SaveOnExit {
		filename := fmt.Sprintf("hht_%s.log", app.startTime.Format("20060102_150405"))
		if err := app.traffic.SaveToFile(filename, app.config.SaveFormat); err != nil {
			app.logger.Error("failed to save traffic log", "err", err)
		} else {
			app.logger.Info("traffic log saved", "file", filename)
		}
	}

	app.logger.Info("disconnected", "port", app.config.Serial.Port)
	if app.logFile != nil {
		app.logFile.Close()
		app.logFile = nil
	}

	return nil
}

// Done returns a channel closed when the event loop exits.
func (app *Application) Done() <-chan struct{} {
	return app.done
}

// IsRunning returns whether the application is running.
func (app *Application) IsRunning() bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.isRunning
}

// Stats returns the session byte totals and duration.
func (app *Application) Stats() (bytesRecv, bytesSent int64, duration time.Duration) {
	rx, tx := app.traffic.Totals()
	return rx, tx, time.Since(app.startTime)
}

// pollEvents pumps tcell events into the event loop's channel. PollEvent
// returns nil once the screen is finalized.
func (app *Application) pollEvents() {
	defer app.wg.Done()

	for {
		ev := app.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case app.events <- ev:
		case <-app.ctx.Done():
			return
		}
	}
}

// run is the single-threaded presentation loop. Frames, raw chunks, key
// events, and blink ticks all land here, so the model and log need no
// locks.
func (app *Application) run() {
	defer app.wg.Done()
	defer close(app.done)

	blink := time.NewTicker(blinkInterval)
	defer blink.Stop()

	frames := app.pump.Frames()
	raw := app.pump.Raw()

	app.draw()

	for {
		select {
		case <-app.ctx.Done():
			return

		case ev := <-app.events:
			app.handleEvent(ev)

		case frame, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			app.handleFrame(frame)

		case chunk, ok := <-raw:
			if !ok {
				raw = nil
				continue
			}
			app.traffic.Append(chunk, history.DirectionRx)
			app.draw()

		case <-blink.C:
			app.model.TickBlink()
			app.draw()
		}
	}
}

// handleFrame decodes a completed frame into lines. An empty decode keeps
// the previous display, mirroring the device's habit of sending transient
// control-only frames.
func (app *Application) handleFrame(frame []byte) {
	lines := protocol.SplitLines(frame)
	if app.model.SetLines(lines) {
		app.draw()
	}
}

func (app *Application) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		app.handleKeyEvent(ev)
	case *tcell.EventResize:
		app.screen.Sync()
		app.draw()
	}
}

func (app *Application) handleKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		app.send(app.model.Escape())
		app.draw()

	case tcell.KeyUp:
		if cmd, ok := app.model.MoveUp(); ok {
			app.send(cmd)
		}
		app.draw()

	case tcell.KeyDown:
		if cmd, ok := app.model.MoveDown(); ok {
			app.send(cmd)
		}
		app.draw()

	case tcell.KeyEnter:
		app.send(app.model.Confirm())
		if app.model.ConsumeAck() {
			app.ackUntil = time.Now().Add(ackHighlight)
		}
		app.draw()

	case tcell.KeyCtrlL:
		app.traffic.Clear()
		app.draw()

	case tcell.KeyCtrlS:
		app.saveTrafficLog()

	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		go app.Stop()

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'x', 'X':
			app.hexView = !app.hexView
			app.draw()
		case 't', 'T':
			app.timestamps = !app.timestamps
			app.draw()
		}
	}
}

// send writes one command byte to the device. A write failure is logged
// and shown in the log pane; cursor and line state stay untouched.
func (app *Application) send(cmd byte) {
	if _, err := app.port.Write([]byte{cmd}); err != nil {
		app.logger.Error("command write failed",
			"cmd", fmt.Sprintf("%02X", cmd), "err", err)
		return
	}
	app.traffic.Append([]byte{cmd}, history.DirectionTx)
	app.logger.Debug("command sent", "cmd", fmt.Sprintf("%02X", cmd))
}

func (app *Application) saveTrafficLog() {
	filename := fmt.Sprintf("hht_%s.log", time.Now().Format("20060102_150405"))
	if err := app.traffic.SaveToFile(filename, app.config.SaveFormat); err != nil {
		app.logger.Error("failed to save traffic log", "err", err)
		return
	}
	app.logger.Info("traffic log saved", "file", filename)
}

// Styling follows the device's front panel: white-on-blue LCD that turns
// yellow while an ENT acknowledge is in flight.
var (
	styleStatus = tcell.StyleDefault.Reverse(true)
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLog    = tcell.StyleDefault
	styleLogTx  = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleLCD    = tcell.StyleDefault.
			Background(tcell.NewRGBColor(0x00, 0x1A, 0x99)).
			Foreground(tcell.ColorWhite)
	styleLCDAck = tcell.StyleDefault.
			Background(tcell.NewRGBColor(0x00, 0x1A, 0x99)).
			Foreground(tcell.ColorYellow)
)

// draw repaints the whole screen: status bar, log pane, LCD pane, key
// hints.
func (app *Application) draw() {
	if app.screen == nil {
		return
	}

	app.screen.Clear()
	w, h := app.screen.Size()
	if w < 10 || h < 4 {
		app.screen.Show()
		return
	}

	status := fmt.Sprintf(" hht-term  %s %d %d-%s-%d",
		app.config.Serial.Port,
		app.config.Serial.BaudRate,
		app.config.Serial.DataBits,
		app.config.Serial.Parity,
		app.config.Serial.StopBits)
	app.drawText(0, 0, w, styleStatus, padRight(status, w))

	split := w / 3
	app.drawLogPane(0, 1, split, h-2)
	for y := 1; y < h-1; y++ {
		app.screen.SetContent(split, y, '│', nil, styleBorder)
	}
	app.drawLCDPane(split+1, 1, w-split-1, h-2)

	hints := " ESC ↑ ↓ ENT send · x hex · t time · ^L clear · ^S save · ^Q quit"
	app.drawText(0, h-1, w, styleStatus, padRight(hints, w))

	app.screen.Show()
}

func (app *Application) drawLogPane(x, y, w, h int) {
	entries := app.traffic.Tail(h)
	for i, e := range entries {
		style := styleLog
		if e.Direction == history.DirectionTx {
			style = styleLogTx
		}
		app.drawText(x, y+i, w, style, e.Format(app.timestamps, app.hexView))
	}
}

func (app *Application) drawLCDPane(x, y, w, h int) {
	// Render only changes while lines exist; a control-only frame leaves
	// the previous text on the panel, like the real device.
	if text, ok := app.model.Render(); ok {
		app.lastLCD = text
	}

	style := styleLCD
	if time.Now().Before(app.ackUntil) {
		style = styleLCDAck
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			app.screen.SetContent(x+col, y+row, ' ', nil, style)
		}
	}

	row := 0
	line := ""
	for _, r := range app.lastLCD + "\n" {
		if r == '\n' {
			if row < h {
				app.drawText(x+1, y+row, w-1, style, line)
			}
			row++
			line = ""
			continue
		}
		line += string(r)
	}
}

// drawText draws a string clipped to width w, placing runes by their
// display width so glyphs cannot smear the layout.
func (app *Application) drawText(x, y, w int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if col+rw > x+w {
			break
		}
		app.screen.SetContent(col, y, r, nil, style)
		col += rw
	}
}

func padRight(s string, w int) string {
	for runewidth.StringWidth(s) < w {
		s += " "
	}
	return s
}

// Package lcd models the reconstructed hand-held terminal display: the
// decoded line set, the selected line, and cursor blink visibility. The
// model holds no timers of its own; blink and acknowledge cadence come
// from the presentation layer, which keeps every transition testable.
package lcd

import (
	"strings"

	"hht-term/pkg/protocol"
)

// CursorPrefix marks the selected line while the blink phase is visible.
// Unselected lines (and the selected line in the dark phase) get a
// two-space prefix so the text column never shifts.
const (
	CursorPrefix = "▶ "
	BlankPrefix  = "  "
)

// Model is the cursor-navigation state machine over the decoded lines.
// It must only be mutated from the presentation context.
type Model struct {
	lines       []string
	cursorIndex int
	blinkOn     bool
	ackPending  bool
}

// NewModel creates an empty model with the blink phase visible.
func NewModel() *Model {
	return &Model{blinkOn: true}
}

// SetLines replaces the line set with a freshly decoded one and reports
// whether the display should re-render. An empty set reports false: the
// device sends transient control-only frames that must not blank the
// screen, so the previous render stays up until real lines arrive. The
// cursor index carries over modulo the new length, never reset to zero.
// The slice is copied, so the caller may reuse it.
func (m *Model) SetLines(lines []string) bool {
	m.lines = append(m.lines[:0:0], lines...)
	if len(lines) == 0 {
		return false
	}
	m.cursorIndex %= len(lines)
	return true
}

// MoveUp selects the previous line, wrapping from the top to the bottom,
// and returns the UP command byte to transmit. With no lines it reports
// false and nothing is sent.
func (m *Model) MoveUp() (byte, bool) {
	if len(m.lines) == 0 {
		return 0, false
	}
	m.cursorIndex = (m.cursorIndex - 1 + len(m.lines)) % len(m.lines)
	return protocol.CmdUp, true
}

// MoveDown selects the next line, wrapping from the bottom to the top,
// and returns the DN command byte to transmit.
func (m *Model) MoveDown() (byte, bool) {
	if len(m.lines) == 0 {
		return 0, false
	}
	m.cursorIndex = (m.cursorIndex + 1) % len(m.lines)
	return protocol.CmdDown, true
}

// Confirm returns the ENT command byte and raises the acknowledge pulse.
// Cursor position and lines are untouched.
func (m *Model) Confirm() byte {
	m.ackPending = true
	return protocol.CmdEnter
}

// Escape returns the ESC command byte. No state changes.
func (m *Model) Escape() byte {
	return protocol.CmdEsc
}

// ConsumeAck reports whether Confirm raised an acknowledge pulse since
// the last call, and clears it. The presentation layer turns the pulse
// into a time-boxed highlight.
func (m *Model) ConsumeAck() bool {
	p := m.ackPending
	m.ackPending = false
	return p
}

// TickBlink toggles the blink phase. Called every 500ms by the
// presentation layer's timer; two ticks restore the original phase.
func (m *Model) TickBlink() {
	m.blinkOn = !m.blinkOn
}

// BlinkVisible reports the current blink phase.
func (m *Model) BlinkVisible() bool {
	return m.blinkOn
}

// CursorIndex returns the selected line index.
func (m *Model) CursorIndex() int {
	return m.cursorIndex
}

// LineCount returns the number of lines currently held.
func (m *Model) LineCount() int {
	return len(m.lines)
}

// Lines returns a copy of the current line set.
func (m *Model) Lines() []string {
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Render produces the display text, one prefixed line per decoded line in
// index order. It reports false when there is nothing to show.
func (m *Model) Render() (string, bool) {
	if len(m.lines) == 0 {
		return "", false
	}

	var sb strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if i == m.cursorIndex && m.blinkOn {
			sb.WriteString(CursorPrefix)
		} else {
			sb.WriteString(BlankPrefix)
		}
		sb.WriteString(line)
	}
	return sb.String(), true
}

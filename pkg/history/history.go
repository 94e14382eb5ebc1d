// Package history keeps the session traffic log: every chunk received
// from the device and every command byte sent to it, tagged by direction.
// The log belongs to the presentation context; nothing else writes it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Direction represents the direction of data flow relative to the tool.
type Direction int

const (
	DirectionRx Direction = iota
	DirectionTx
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	switch d {
	case DirectionRx:
		return "rx"
	case DirectionTx:
		return "tx"
	default:
		return "unknown"
	}
}

// FileFormat represents different log export formats.
type FileFormat int

const (
	FormatPlainText FileFormat = iota
	FormatTimestamped
	FormatJSON
)

// String returns the string representation of FileFormat.
func (f FileFormat) String() string {
	switch f {
	case FormatPlainText:
		return "plain_text"
	case FormatTimestamped:
		return "timestamped"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Entry is a single logged transfer.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
	Data      []byte    `json:"-"`
}

// MarshalJSON renders the payload as spaced uppercase hex, the form
// operators read in the log pane.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp time.Time `json:"timestamp"`
		Direction string    `json:"direction"`
		Data      string    `json:"data"`
	}{e.Timestamp, e.Direction.String(), hexString(e.Data)})
}

// Format renders the entry as one log line. Outbound entries carry the
// [TX] tag; hexView selects spaced hex over replaced-character text.
func (e Entry) Format(timestamps, hexView bool) string {
	var sb strings.Builder

	if timestamps {
		sb.WriteString(e.Timestamp.Format("15:04:05 "))
	}
	if e.Direction == DirectionTx {
		sb.WriteString("[TX] ")
	}
	if hexView {
		sb.WriteString(hexString(e.Data))
	} else {
		sb.WriteString(printableString(e.Data))
	}

	return sb.String()
}

// Log is a fixed-capacity ring of entries plus running byte totals.
type Log struct {
	entries []Entry
	start   int
	count   int
	rxBytes int64
	txBytes int64
}

// NewLog creates a log holding at most maxEntries entries; older entries
// fall off the front.
func NewLog(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Log{entries: make([]Entry, maxEntries)}
}

// Append records a transfer with the current timestamp. The data is
// copied, so callers may reuse their buffer.
func (l *Log) Append(data []byte, dir Direction) {
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	entry := Entry{Timestamp: time.Now(), Direction: dir, Data: dataCopy}

	pos := (l.start + l.count) % len(l.entries)
	l.entries[pos] = entry
	if l.count < len(l.entries) {
		l.count++
	} else {
		l.start = (l.start + 1) % len(l.entries)
	}

	switch dir {
	case DirectionRx:
		l.rxBytes += int64(len(data))
	case DirectionTx:
		l.txBytes += int64(len(data))
	}
}

// Len returns the number of entries currently held.
func (l *Log) Len() int {
	return l.count
}

// Totals returns the running received and transmitted byte counts. The
// counts survive ring eviction.
func (l *Log) Totals() (rx, tx int64) {
	return l.rxBytes, l.txBytes
}

// Entries returns all held entries, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(l.start+i)%len(l.entries)]
	}
	return out
}

// Tail returns the newest n entries, oldest first.
func (l *Log) Tail(n int) []Entry {
	if n >= l.count {
		return l.Entries()
	}
	out := make([]Entry, n)
	first := l.count - n
	for i := 0; i < n; i++ {
		out[i] = l.entries[(l.start+first+i)%len(l.entries)]
	}
	return out
}

// Clear drops all entries. Byte totals are kept for the session summary.
func (l *Log) Clear() {
	l.start = 0
	l.count = 0
	for i := range l.entries {
		l.entries[i] = Entry{}
	}
}

// SaveToFile writes the held entries to a file in the given format.
func (l *Log) SaveToFile(filename string, format FileFormat) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	entries := l.Entries()

	var data []byte
	switch format {
	case FormatJSON:
		var err error
		data, err = json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal log entries: %w", err)
		}
	case FormatPlainText, FormatTimestamped:
		var sb strings.Builder
		for _, e := range entries {
			sb.WriteString(e.Format(format == FormatTimestamped, true))
			sb.WriteByte('\n')
		}
		data = []byte(sb.String())
	default:
		return fmt.Errorf("unknown file format: %d", format)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}

	return nil
}

func hexString(data []byte) string {
	return fmt.Sprintf("% X", data)
}

func printableString(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

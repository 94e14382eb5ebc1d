// Package protocol implements the HHT display protocol: tilde-delimited
// framing, control-byte line splitting, and the glyph substitution table
// used by the device's LCD firmware.
package protocol

import "strings"

// FrameDelimiter opens and closes a frame. Frames do not nest.
const FrameDelimiter byte = 0x7E

// PaddingByte is filtered from every frame before interpretation.
const PaddingByte byte = 0x80

// Printable ASCII range accepted as line content.
const (
	PrintableMin byte = 32
	PrintableMax byte = 126
)

// Command bytes sent back to the device for the panel buttons.
const (
	CmdDown  byte = 0x01
	CmdEnter byte = 0x02
	CmdEsc   byte = 0x04
	CmdUp    byte = 0x08
)

// glyphMap substitutes specific non-printable bytes with LCD glyphs.
// 0xD4 also acts as a line terminator and the terminator check runs first,
// so its glyph mapping is unreachable in practice. The device's protocol
// table lists it anyway, so it is kept rather than silently corrected.
var glyphMap = map[byte]rune{
	0xA3: '↑',
	0xA4: '↓',
	0xD4: '●',
	0xE4: '○',
}

// IsLineTerminator reports whether b ends the current display line.
func IsLineTerminator(b byte) bool {
	return b == 0xC0 || b == 0x94 || b == 0xD4
}

// IsDisplayByte reports whether b contributes visible content to a line.
func IsDisplayByte(b byte) bool {
	if _, ok := glyphMap[b]; ok {
		return true
	}
	return b >= PrintableMin && b <= PrintableMax
}

// DecodeText converts accumulated line bytes to display text. Glyph-map
// bytes become their glyph, printable ASCII becomes itself, everything
// else contributes nothing.
func DecodeText(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		if g, ok := glyphMap[b]; ok {
			sb.WriteRune(g)
		} else if b >= PrintableMin && b <= PrintableMax {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

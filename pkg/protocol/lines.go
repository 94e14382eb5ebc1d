package protocol

import "strings"

// SplitLines decodes one frame's bytes into ordered display lines.
//
// The 0x80 padding byte is removed before interpretation. The control
// bytes 0xC0, 0x94 and 0xD4 terminate the current line and are never
// appended to any line; the terminator check runs before glyph
// substitution, which is why 0xD4 always terminates even though it has a
// glyph mapping. All other bytes are kept only if printable or in the
// glyph table. Completed lines are trimmed, and lines that trim to empty
// are dropped rather than shown as blank rows.
func SplitLines(frame []byte) []string {
	var lines []string
	var buf []byte

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if line := strings.TrimSpace(DecodeText(buf)); line != "" {
			lines = append(lines, line)
		}
		buf = buf[:0]
	}

	for _, b := range frame {
		switch {
		case b == PaddingByte:
			// Protocol padding, no display meaning.
		case IsLineTerminator(b):
			flush()
		case IsDisplayByte(b):
			buf = append(buf, b)
		}
	}
	flush()

	return lines
}

package protocol

// Framer extracts delimiter-bounded frames from an arbitrary byte stream.
// It tolerates fragmentation at any byte boundary: bytes outside a frame
// are discarded as line noise, and a stray empty frame (two consecutive
// delimiters) re-opens the frame instead of emitting an empty one. Nothing
// it sees is an error; malformed input resolves back into the armed or
// disarmed state.
type Framer struct {
	buf   []byte
	armed bool
}

// NewFramer creates a new frame extractor in the disarmed state.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed scans a chunk and returns the frames completed within it, in
// arrival order. A single chunk may complete zero, one, or several frames;
// partial frame state carries over to the next call.
func (f *Framer) Feed(chunk []byte) [][]byte {
	var frames [][]byte

	for _, b := range chunk {
		switch {
		case b == FrameDelimiter:
			if f.armed && len(f.buf) > 0 {
				frame := make([]byte, len(f.buf))
				copy(frame, f.buf)
				frames = append(frames, frame)
				f.buf = f.buf[:0]
				f.armed = false
			} else {
				// Covers both "waiting for start" and an empty 7E 7E pair:
				// discard any partial state and open a fresh frame.
				f.buf = f.buf[:0]
				f.armed = true
			}
		case f.armed:
			f.buf = append(f.buf, b)
		}
		// Bytes outside a frame are protocol noise, dropped silently.
	}

	return frames
}

// Reset discards any partially accumulated frame and disarms the framer.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.armed = false
}

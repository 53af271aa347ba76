package focus

import (
	"bytes"
	"io"
)

// Focus reporting control and event sequences (xterm mode 1004).
const (
	EnableReporting  = "\033[?1004h"
	DisableReporting = "\033[?1004l"
)

var (
	focusInSeq  = []byte("\033[I")
	focusOutSeq = []byte("\033[O")
)

// Handler receives terminal focus transitions.
type Handler interface {
	HandleFocusIn()
	HandleFocusOut()
}

// TerminalReader turns focus reports read from a terminal in raw mode into
// Handler calls. In raw mode the terminal no longer raises SIGINT, so
// Ctrl-C and Ctrl-D bytes are reported through onInterrupt instead.
type TerminalReader struct {
	handler     Handler
	onInterrupt func()

	// Tail of the previous chunk, for sequences split across reads
	buffer []byte
}

// NewTerminalReader creates a reader that reports to handler.
func NewTerminalReader(handler Handler, onInterrupt func()) *TerminalReader {
	return &TerminalReader{
		handler:     handler,
		onInterrupt: onInterrupt,
		buffer:      make([]byte, 0, 8),
	}
}

// Run consumes r until it returns an error.
func (t *TerminalReader) Run(r io.Reader) error {
	chunk := make([]byte, 256)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			t.Feed(chunk[:n])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Feed processes one chunk of terminal input.
func (t *TerminalReader) Feed(data []byte) {
	t.buffer = append(t.buffer, data...)

	i := 0
	for i < len(t.buffer) {
		rest := t.buffer[i:]
		switch {
		case bytes.HasPrefix(rest, focusInSeq):
			t.handler.HandleFocusIn()
			i += len(focusInSeq)
		case bytes.HasPrefix(rest, focusOutSeq):
			t.handler.HandleFocusOut()
			i += len(focusOutSeq)
		case rest[0] == 0x03 || rest[0] == 0x04:
			if t.onInterrupt != nil {
				t.onInterrupt()
			}
			i++
		case rest[0] == 0x1b && len(rest) < len(focusInSeq) && bytes.HasPrefix(focusInSeq[:len(rest)], rest):
			// Possible sequence cut by the read boundary
			t.buffer = append(t.buffer[:0], rest...)
			return
		default:
			i++
		}
	}
	t.buffer = t.buffer[:0]
}

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Veraticus/activity-monitor/pkg/focus"
)

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalFocus puts stdin in raw mode and asks the terminal to report
// focus changes. The returned function undoes both.
func terminalFocus(stdin *os.File, stdout io.Writer) (func(), error) {
	fd := int(stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	if _, err := io.WriteString(stdout, focus.EnableReporting); err != nil {
		_ = term.Restore(fd, state)
		return nil, fmt.Errorf("failed to enable focus reporting: %w", err)
	}

	return func() {
		_, _ = io.WriteString(stdout, focus.DisableReporting)
		_ = term.Restore(fd, state)
	}, nil
}

// crlfWriter translates "\n" to "\r\n". Raw mode turns off the terminal's
// own output translation.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Package termsession owns the terminal's raw mode and alternate-screen
// state for the lifetime of the program, guaranteeing both are restored on
// every exit path including a panic.
package termsession

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/shiguri-01/preview-pdf/internal/apperr"
)

const (
	enterAltScreen = "\x1b[?1049h"
	leaveAltScreen = "\x1b[?1049l"
	showCursor     = "\x1b[?25h"
	hideCursor     = "\x1b[?25l"
)

// Size is the terminal's current dimensions in character cells.
type Size struct {
	Rows int
	Cols int
}

// Session owns stdin's raw-mode state and stdout's alternate-screen state.
// It must be restored exactly once; Restore is idempotent and safe to call
// from a deferred cleanup even after an earlier explicit Restore.
type Session struct {
	out      io.Writer
	fd       int
	oldState *term.State
	mu       sync.Mutex
	active   bool
}

// Enter puts the terminal into raw mode and switches to the alternate
// screen. On any failure it unwinds whatever it already applied before
// returning the error.
func Enter() (*Session, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, apperr.IOWithContext(err, "failed to enable raw mode")
	}

	s := &Session{out: os.Stdout, fd: fd, oldState: oldState, active: true}
	if _, err := io.WriteString(s.out, enterAltScreen+hideCursor); err != nil {
		_ = term.Restore(fd, oldState)
		s.active = false
		return nil, apperr.IOWithContext(err, "failed to enter alternate screen")
	}
	return s, nil
}

// Size reports the current terminal dimensions in rows and columns.
func (s *Session) Size() (Size, error) {
	cols, rows, err := term.GetSize(s.fd)
	if err != nil {
		return Size{}, apperr.IOWithContext(err, "failed to query terminal size")
	}
	return Size{Rows: rows, Cols: cols}, nil
}

// Restore leaves the alternate screen, shows the cursor, and restores the
// original terminal mode. Calling it more than once is a no-op.
func (s *Session) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil
	}
	s.active = false

	_, writeErr := io.WriteString(s.out, showCursor+leaveAltScreen)
	restoreErr := term.Restore(s.fd, s.oldState)

	switch {
	case writeErr != nil && restoreErr != nil:
		return apperr.IOWithContext(writeErr, fmt.Sprintf("failed to leave alternate screen (raw mode restore also failed: %v)", restoreErr))
	case writeErr != nil:
		return apperr.IOWithContext(writeErr, "failed to leave alternate screen")
	case restoreErr != nil:
		return apperr.IOWithContext(restoreErr, "failed to restore terminal mode")
	default:
		return nil
	}
}

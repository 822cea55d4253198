//go:build !windows
// +build !windows

package render

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// TTY wraps the host terminal for native-mode output: raw-mode enter/exit
// and direct writes, grounded on purfecterm/cli/terminal.go's use of
// golang.org/x/term for oldState save/restore around a raw-mode session.
type TTY struct {
	f        *os.File
	oldState *term.State
}

// OpenTTY opens f (typically os.Stdout) as a native-mode render target.
func OpenTTY(f *os.File) *TTY {
	return &TTY{f: f}
}

// EnterRawMode puts the TTY into raw mode, stashing the previous state for
// Restore. Matches purfecterm/cli/terminal.go's New/Start sequence.
func (t *TTY) EnterRawMode() error {
	state, err := term.MakeRaw(int(t.f.Fd()))
	if err != nil {
		return fmt.Errorf("render: enter raw mode: %w", err)
	}
	t.oldState = state
	return nil
}

// Restore reverts the TTY to its pre-raw-mode state. Safe to call without
// a prior EnterRawMode (no-op).
func (t *TTY) Restore() error {
	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(int(t.f.Fd()), t.oldState); err != nil {
		return fmt.Errorf("render: restore tty state: %w", err)
	}
	t.oldState = nil
	return nil
}

// Write sends raw bytes to the TTY (the blocking suspension point spec §5
// names for native output mode).
func (t *TTY) Write(p []byte) (int, error) {
	return t.f.Write(p)
}

// Size reads the current terminal dimensions via TIOCGWINSZ, used as the
// authoritative source when golang.org/x/term's GetSize is unavailable
// (e.g. under SIGWINCH-driven resize handling).
func (t *TTY) Size() (cols, rows int, err error) {
	ws, err := unix.IoctlGetWinsize(int(t.f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("render: get window size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

// WatchResize delivers SIGWINCH notifications to cb until stop is closed,
// mirroring purfecterm/cli/terminal.go's resize-handling goroutine.
func WatchResize(stop <-chan struct{}, cb func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	defer signal.Stop(ch)
	for {
		select {
		case <-ch:
			cb()
		case <-stop:
			return
		}
	}
}

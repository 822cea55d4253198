package render

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PTY is the interface a suspension-point demo spawns a child process
// under, mirroring purfecterm/pty.go's platform-agnostic interface split:
// core code depends only on this interface, never on the concrete
// implementation.
type PTY interface {
	Start(cmd *exec.Cmd) error
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Resize(cols, rows int) error
	Close() error
}

// CreackPTY implements PTY atop github.com/creack/pty, replacing the
// teacher's cgo-based UnixPTY/WindowsPTY pair with a single
// cross-platform, cgo-free implementation — the same interface, a
// different (and more portable) backing library.
type CreackPTY struct {
	f *os.File
}

// NewPTY allocates a PTY via creack/pty. Returned as the PTY interface so
// callers never depend on CreackPTY directly.
func NewPTY() PTY {
	return &CreackPTY{}
}

func (p *CreackPTY) Start(cmd *exec.Cmd) error {
	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("render: start pty: %w", err)
	}
	p.f = f
	return nil
}

func (p *CreackPTY) Read(buf []byte) (int, error)  { return p.f.Read(buf) }
func (p *CreackPTY) Write(buf []byte) (int, error) { return p.f.Write(buf) }

func (p *CreackPTY) Resize(cols, rows int) error {
	if err := pty.Setsize(p.f, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		return fmt.Errorf("render: resize pty: %w", err)
	}
	return nil
}

func (p *CreackPTY) Close() error {
	if p.f == nil {
		return nil
	}
	return p.f.Close()
}

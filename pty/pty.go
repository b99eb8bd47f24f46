// Package pty opens pseudo-terminals for child processes, grounded on
// github.com/creack/pty the same way the wider example pack
// (johnfelixespinosa-agent-tui) drives it, and on the session-isolation
// semantics of the original Rust implementation's nix::pty::openpty path.
package pty

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// Size is the terminal dimensions a new PTY should be opened at.
type Size struct {
	Rows uint16
	Cols uint16
}

// Factory opens a new pseudo-terminal and spawns cmd on its slave side,
// returning an owning handle to the master end. Implementations must put
// the child in a new session so it does not share the caller's controlling
// terminal.
type Factory interface {
	Start(cmd *exec.Cmd, size Size) (*os.File, error)
}

// Error wraps a failure to open a PTY and spawn the child on it. SystemFactory
// performs both in one StartWithSize call, so it always reports Op "spawn".
type Error struct {
	Op  string // the failed step; SystemFactory sets "spawn"
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("pty %s failed: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// SystemFactory is the production Factory.
type SystemFactory struct{}

func (SystemFactory) Start(cmd *exec.Cmd, size Size) (*os.File, error) {
	ws := &pty.Winsize{Rows: size.Rows, Cols: size.Cols}
	if ws.Rows == 0 {
		ws.Rows = 24
	}
	if ws.Cols == 0 {
		ws.Cols = 80
	}
	master, err := pty.StartWithSize(cmd, ws)
	if err != nil {
		return nil, &Error{Op: "spawn", Err: err}
	}
	return master, nil
}

// Close releases the master handle. Dropping the *os.File is sufficient;
// this helper exists so callers don't need to remember the right method.
func Close(master *os.File) error {
	if master == nil {
		return nil
	}
	return master.Close()
}

// Setsize resizes an already-open PTY. The tmux session resizes its window
// with tmux resize-window instead, so nothing in this module calls it.
func Setsize(master *os.File, size Size) error {
	return pty.Setsize(master, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
}

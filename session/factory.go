package session

import (
	"league/cmd"
	"league/pty"
	"league/session/tmux"
)

// NewMultiplexer constructs the tmux-backed Multiplexer Session for a new
// instance. Earlier iterations of this tool picked between several
// multiplexer backends at this seam (zellij, Docker-isolated variants);
// league keeps only the seam itself, narrowed to the one real backend the
// specification describes, so call sites and tests still depend on the
// Multiplexer interface rather than *tmux.Session directly.
func NewMultiplexer(title, program string, exec cmd.Executor, ptys pty.Factory) Multiplexer {
	return tmux.New(title, program, exec, ptys)
}

// IsMultiplexerAvailable reports whether the tmux binary can be found.
func IsMultiplexerAvailable(exec cmd.Executor) bool {
	return exec.Run("tmux", "-V") == nil
}

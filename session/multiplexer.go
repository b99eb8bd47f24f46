package session

import "io"

// Multiplexer is the subset of session/tmux.Session the Instance aggregate
// depends on. Keeping this as an interface (rather than depending on
// *tmux.Session directly) lets tests substitute a fake multiplexer session,
// the same way the wider example pack keeps a capability interface between
// the session aggregate and its concrete backend.
type Multiplexer interface {
	Start(workDir string) error
	Restore() error
	CapturePaneContent(fullHistory bool) (string, error)
	HasUpdated() (bool, error)
	SendKeys(keys string) error
	AttachInteractive(stdin io.Reader, stdout io.Writer, pollSize func() (int, int)) error
	Detach()
	Close() error
	SetSize(width, height uint16) error
	Name() string
}

package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var errBoxStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("9")).
	Bold(true)

// ErrBox renders the single-line error/status strip at the bottom of the
// screen, cleared automatically a few seconds after each error (see the
// Controller's hideErrMsg timer).
type ErrBox struct {
	err           error
	width, height int
}

func NewErrBox() *ErrBox {
	return &ErrBox{}
}

func (e *ErrBox) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// SetError displays the given error. A nil error clears the box.
func (e *ErrBox) SetError(err error) {
	e.err = err
}

// Clear removes any displayed error.
func (e *ErrBox) Clear() {
	e.err = nil
}

func (e *ErrBox) String() string {
	if e.err == nil {
		return lipgloss.NewStyle().Width(e.width).Render("")
	}
	return errBoxStyle.Width(e.width).Render(e.err.Error())
}

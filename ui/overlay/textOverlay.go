package overlay

import (
	"github.com/charmbracelet/lipgloss"
)

// TextOverlay renders a block of read-only text (the help screen) in a
// bordered modal.
type TextOverlay struct {
	title string
	body  string
	width int
}

// NewTextOverlay creates a text overlay with the given title and body.
func NewTextOverlay(title, body string) *TextOverlay {
	return &TextOverlay{title: title, body: body, width: 60}
}

// SetWidth sets the overlay's rendered width.
func (t *TextOverlay) SetWidth(width int) {
	t.width = width
}

func (t *TextOverlay) Render(opts ...WhitespaceOption) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Width(t.width)

	if t.title == "" {
		return style.Render(t.body)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(t.title), "", t.body))
}

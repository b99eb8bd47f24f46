package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	confirmHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ConfirmationOverlay is a yes/no modal. HandleKeyPress invokes
// OnConfirm/OnCancel itself and then reports that the overlay should close.
type ConfirmationOverlay struct {
	message string
	width   int

	OnConfirm func()
	OnCancel  func()

	confirmed bool
}

// NewConfirmationOverlay creates a confirmation overlay with the given
// message.
func NewConfirmationOverlay(message string) *ConfirmationOverlay {
	return &ConfirmationOverlay{message: message, width: 50}
}

// SetWidth sets the overlay's rendered width.
func (c *ConfirmationOverlay) SetWidth(width int) {
	c.width = width
}

// HandleKeyPress processes one key event, invoking OnConfirm/OnCancel as
// appropriate, and returns true when the overlay should close.
func (c *ConfirmationOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "y", "Y":
		c.confirmed = true
		if c.OnConfirm != nil {
			c.OnConfirm()
		}
		return true
	case "n", "N", "esc":
		if c.OnCancel != nil {
			c.OnCancel()
		}
		return true
	default:
		return false
	}
}

func (c *ConfirmationOverlay) Render(opts ...WhitespaceOption) string {
	hint := confirmHintStyle.Render("y/Y to confirm · n/N/Esc to cancel")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("196")).
		Padding(1, 2).
		Width(c.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, confirmTitleStyle.Render(c.message), "", hint))
}

package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	textInputTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	textInputFieldStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
	textInputHintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TextInputOverlay is a single-line text entry modal used for session
// titles, prompts, and renames. Titles (new or renamed) are capped at 32
// characters, free text (prompts) at 64.
type TextInputOverlay struct {
	title     string
	value     []rune
	cursor    int
	maxLength int

	submitted bool
	canceled  bool

	width int
}

// NewTextInputOverlay creates a text input overlay pre-filled with initial.
// The length cap is chosen by the overlay's title: "Enter prompt" gets 64,
// every other title (new session names, renames) gets 32.
func NewTextInputOverlay(title string, initial string) *TextInputOverlay {
	maxLength := 32
	if title == "Enter prompt" {
		maxLength = 64
	}
	return &TextInputOverlay{
		title:     title,
		value:     []rune(initial),
		cursor:    len([]rune(initial)),
		maxLength: maxLength,
		width:     60,
	}
}

// SetSize sets the overlay's rendered width (height is determined by content).
func (t *TextInputOverlay) SetSize(width, _ int) {
	t.width = width
}

// HandleKeyPress processes one key event and returns true when the overlay
// should be closed (submit or cancel).
func (t *TextInputOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEnter:
		t.submitted = true
		return true
	case tea.KeyEsc:
		t.canceled = true
		return true
	case tea.KeyBackspace:
		if t.cursor > 0 {
			t.value = append(t.value[:t.cursor-1], t.value[t.cursor:]...)
			t.cursor--
		}
		return false
	case tea.KeyDelete:
		if t.cursor < len(t.value) {
			t.value = append(t.value[:t.cursor], t.value[t.cursor+1:]...)
		}
		return false
	case tea.KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
		return false
	case tea.KeyRight:
		if t.cursor < len(t.value) {
			t.cursor++
		}
		return false
	case tea.KeyHome:
		t.cursor = 0
		return false
	case tea.KeyEnd:
		t.cursor = len(t.value)
		return false
	case tea.KeyRunes, tea.KeySpace:
		if len(t.value) >= t.maxLength {
			return false
		}
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		t.value = append(t.value[:t.cursor], append(append([]rune{}, runes...), t.value[t.cursor:]...)...)
		t.cursor += len(runes)
		return false
	}
	return false
}

// IsSubmitted reports whether the last HandleKeyPress closed the overlay via
// Enter rather than Esc.
func (t *TextInputOverlay) IsSubmitted() bool {
	return t.submitted
}

// IsCanceled reports whether the overlay was dismissed via Esc.
func (t *TextInputOverlay) IsCanceled() bool {
	return t.canceled
}

// GetValue returns the current text value.
func (t *TextInputOverlay) GetValue() string {
	return string(t.value)
}

func (t *TextInputOverlay) Render(opts ...WhitespaceOption) string {
	display := string(t.value)
	if t.cursor == len(t.value) {
		display += "█"
	} else {
		before := string(t.value[:t.cursor])
		at := string(t.value[t.cursor])
		after := string(t.value[t.cursor+1:])
		display = before + lipgloss.NewStyle().Reverse(true).Render(at) + after
	}

	field := textInputFieldStyle.Width(t.width - 4).Render(display)
	hint := textInputHintStyle.Render("Enter to submit · Esc to cancel")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Width(t.width).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			textInputTitleStyle.Render(t.title),
			"",
			field,
			"",
			hint,
		))
}

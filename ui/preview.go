package ui

import (
	"fmt"
	"regexp"

	"league/session"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

const fallbackText = "No session selected.\n\nPress n to start a new one."

var ansiPattern = regexp.MustCompile(`\x1b(?:\[[0-9;]*[A-Za-z]|\][^\x07]*(?:\x07|\x1b\\))`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

var scrollIndicatorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("11")).
	Align(lipgloss.Center)

var previewBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder())

type previewState struct {
	text     string
	fallback bool
}

// PreviewPane renders the live tmux pane content for the selected instance,
// with a scroll-back mode backed by PreviewFullHistory.
type PreviewPane struct {
	viewport     viewport.Model
	previewState previewState
	isScrolling  bool
	width, height int
}

func NewPreviewPane() *PreviewPane {
	vp := viewport.New(0, 0)
	return &PreviewPane{viewport: vp}
}

// SetSize sets the pane's outer dimensions, accounting for the border.
func (p *PreviewPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = width - 2
	innerHeight := height - 2
	if p.isScrolling {
		innerHeight--
	}
	if innerHeight < 0 {
		innerHeight = 0
	}
	p.viewport.Height = innerHeight
}

// IsEmpty reports whether the preview has no content to show.
func (p *PreviewPane) IsEmpty() bool {
	return p.previewState.text == ""
}

// setContent replaces the displayed content, stripping ANSI escapes and
// pinning the viewport to the bottom of the new content when not scrolling.
func (p *PreviewPane) setContent(text string) {
	p.previewState.text = stripANSI(text)
	if !p.isScrolling {
		p.viewport.SetContent(p.previewState.text)
		p.viewport.GotoBottom()
	}
}

// SetFallback shows a placeholder when no instance is selected.
func (p *PreviewPane) SetFallback() {
	p.previewState.fallback = true
	p.setContent(fallbackText)
}

// UpdateContent refreshes the preview from the instance's current pane
// content.
func (p *PreviewPane) UpdateContent(instance *session.Instance) error {
	if instance == nil {
		p.SetFallback()
		return nil
	}
	p.previewState.fallback = false

	content, err := instance.Preview()
	if err != nil {
		return fmt.Errorf("could not get preview: %w", err)
	}
	p.setContent(content)
	return nil
}

// ScrollUp enters scroll mode (loading the instance's full scroll-back) the
// first time it's called, then scrolls further up on each subsequent call.
func (p *PreviewPane) ScrollUp(instance *session.Instance) error {
	if !p.isScrolling {
		full, err := instance.PreviewFullHistory()
		if err != nil {
			return fmt.Errorf("could not get full history: %w", err)
		}
		p.isScrolling = true
		p.viewport.Height--
		p.previewState.text = stripANSI(full)
		p.viewport.SetContent(p.previewState.text)
		p.viewport.GotoBottom()
	}
	p.viewport.LineUp(1)
	return nil
}

// ScrollDown scrolls toward the bottom, exiting scroll mode once it reaches
// the latest content.
func (p *PreviewPane) ScrollDown(instance *session.Instance) error {
	if !p.isScrolling {
		return nil
	}
	p.viewport.LineDown(1)
	if p.viewport.AtBottom() {
		return p.ResetToNormalMode(instance)
	}
	return nil
}

// ResetToNormalMode exits scroll mode and restores the live preview.
func (p *PreviewPane) ResetToNormalMode(instance *session.Instance) error {
	if !p.isScrolling {
		return nil
	}
	p.isScrolling = false
	p.viewport.Height++
	return p.UpdateContent(instance)
}

// IsScrolling reports whether the pane is currently in scroll-back mode.
func (p *PreviewPane) IsScrolling() bool {
	return p.isScrolling
}

func (p *PreviewPane) String() string {
	style := previewBorderStyle.Width(p.width - 2).Height(p.height - 2)
	body := p.viewport.View()
	if p.isScrolling {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			scrollIndicatorStyle.Width(p.width-2).Render("-- SCROLL MODE (Esc to exit) --"))
	}
	return style.Render(body)
}

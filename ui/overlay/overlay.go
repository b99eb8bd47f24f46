package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WhitespaceOption sets a styling rule for the padding rendered around an
// overlay, e.g. WithWhitespaceChars, WithWhitespaceForeground.
type WhitespaceOption func(*whitespace)

// whitespace fills the background behind an overlay with a repeating
// character run, styled like any other lipgloss content.
type whitespace struct {
	style lipgloss.Style
	chars string
}

func newWhitespace(opts ...WhitespaceOption) whitespace {
	w := whitespace{chars: " "}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

func (w whitespace) render(width int) string {
	if width <= 0 {
		return ""
	}
	if w.chars == "" {
		w.chars = " "
	}
	r := []rune(w.chars)
	var b strings.Builder
	for i, j := 0, 0; i < width; i++ {
		b.WriteRune(r[j])
		j = (j + 1) % len(r)
	}
	return w.style.Render(b.String())
}

// WithWhitespaceChars sets the characters used to fill whitespace.
func WithWhitespaceChars(s string) WhitespaceOption {
	return func(w *whitespace) { w.chars = s }
}

// WithWhitespaceForeground sets the foreground color of the whitespace.
func WithWhitespaceForeground(c lipgloss.TerminalColor) WhitespaceOption {
	return func(w *whitespace) { w.style = w.style.Foreground(c) }
}

// WithWhitespaceBackground sets the background color of the whitespace.
func WithWhitespaceBackground(c lipgloss.TerminalColor) WhitespaceOption {
	return func(w *whitespace) { w.style = w.style.Background(c) }
}

// PlaceOverlay composites fg on top of bg at position (x, y). When center is
// true, x and y are ignored and fg is centered over bg instead. fg is
// shifted up/left to fit inside bg where it can; fg rows beyond bg's height
// are dropped, but fg lines wider than bg are not truncated. Any remaining
// bg columns/rows around it are preserved, padded with whitespace where bg
// runs short.
func PlaceOverlay(x, y int, fg, bg string, shadow bool, center bool, opts ...WhitespaceOption) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	fgWidth := 0
	for _, l := range fgLines {
		if w := lipgloss.Width(l); w > fgWidth {
			fgWidth = w
		}
	}
	fgHeight := len(fgLines)

	bgWidth := 0
	for _, l := range bgLines {
		if w := lipgloss.Width(l); w > bgWidth {
			bgWidth = w
		}
	}
	bgHeight := len(bgLines)

	if center {
		x = (bgWidth - fgWidth) / 2
		y = (bgHeight - fgHeight) / 2
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+fgWidth > bgWidth {
		x = bgWidth - fgWidth
		if x < 0 {
			x = 0
		}
	}
	if y+fgHeight > bgHeight {
		y = bgHeight - fgHeight
		if y < 0 {
			y = 0
		}
	}

	ws := newWhitespace(opts...)
	shadowStyle := lipgloss.NewStyle().Faint(true)

	var b strings.Builder
	for i := 0; i < bgHeight; i++ {
		if i > 0 {
			b.WriteRune('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLines[i])
			continue
		}

		fgLine := fgLines[i-y]
		fgLineWidth := lipgloss.Width(fgLine)

		bgLine := bgLines[i]
		bgLineWidth := lipgloss.Width(bgLine)

		left := bgLine
		if bgLineWidth > x {
			left = truncateWidth(bgLine, x)
		} else if bgLineWidth < x {
			left = bgLine + ws.render(x-bgLineWidth)
		}

		var right string
		rightStart := x + fgLineWidth
		if bgLineWidth > rightStart {
			right = cutLeftWidth(bgLine, rightStart)
		}
		if shadow {
			right = shadowStyle.Render(right)
		}

		b.WriteString(left)
		b.WriteString(fgLine)
		b.WriteString(right)
	}

	return b.String()
}

// truncateWidth returns the first n printable columns of s, ignoring ANSI
// escape sequences when counting.
func truncateWidth(s string, n int) string {
	var b strings.Builder
	var width int
	var inEsc bool
	for _, r := range s {
		if inEsc {
			b.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
			continue
		}
		if r == '\x1b' {
			inEsc = true
			b.WriteRune(r)
			continue
		}
		if width >= n {
			break
		}
		b.WriteRune(r)
		width++
	}
	return b.String()
}

// cutLeftWidth returns s with its first n printable columns removed,
// ignoring ANSI escape sequences when counting.
func cutLeftWidth(s string, n int) string {
	var b strings.Builder
	var width int
	var inEsc bool
	for _, r := range s {
		if inEsc {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
			continue
		}
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if width < n {
			width++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

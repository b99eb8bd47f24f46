package ui

import (
	"fmt"
	"strings"

	"league/session"

	"github.com/charmbracelet/lipgloss"
)

var (
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	diffHunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	diffHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	diffBorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
)

// DiffPane renders the cached git diff for the selected instance.
type DiffPane struct {
	content       string
	added, removed int
	err           error
	width, height int
}

func NewDiffPane() *DiffPane {
	return &DiffPane{}
}

func (d *DiffPane) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// UpdateDiff refreshes the pane from the instance's cached diff stats.
func (d *DiffPane) UpdateDiff(instance *session.Instance) {
	if instance == nil {
		d.content = ""
		d.added, d.removed = 0, 0
		d.err = nil
		return
	}
	stats := instance.GetDiffStats()
	if stats == nil {
		d.content = ""
		d.added, d.removed = 0, 0
		d.err = nil
		return
	}
	d.content = stats.Content
	d.added = stats.Added
	d.removed = stats.Removed
	d.err = stats.Error
}

// Summary returns a short "+N -M" string for the menu/status line.
func (d *DiffPane) Summary() string {
	return fmt.Sprintf("+%d -%d", d.added, d.removed)
}

func classifyDiffLine(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"),
		strings.HasPrefix(line, "diff"), strings.HasPrefix(line, "index"):
		return diffHeaderStyle
	case strings.HasPrefix(line, "+"):
		return diffAddedStyle
	case strings.HasPrefix(line, "-"):
		return diffRemovedStyle
	case strings.HasPrefix(line, "@@"):
		return diffHunkStyle
	default:
		return lipgloss.NewStyle()
	}
}

func (d *DiffPane) String() string {
	style := diffBorderStyle.Width(d.width - 2).Height(d.height - 2)

	if d.err != nil {
		return style.Render(fmt.Sprintf("diff error: %v", d.err))
	}
	if strings.TrimSpace(d.content) == "" {
		return style.Render("No changes")
	}

	var b strings.Builder
	lines := strings.Split(d.content, "\n")
	for i, line := range lines {
		b.WriteString(classifyDiffLine(line).Render(line))
		if i != len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return style.Render(b.String())
}

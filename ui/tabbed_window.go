package ui

import (
	"fmt"

	"league/session"

	"github.com/charmbracelet/lipgloss"
)

// Tab identifies which pane is shown in the right-hand TabbedWindow.
type Tab int

const (
	PreviewTab Tab = iota
	DiffTab
)

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tabBarStyle      = lipgloss.NewStyle().PaddingLeft(1)
)

// TabbedWindow owns a PreviewPane and a DiffPane and switches between them.
type TabbedWindow struct {
	preview *PreviewPane
	diff    *DiffPane

	activeTab     Tab
	width, height int
}

func NewTabbedWindow(preview *PreviewPane, diff *DiffPane) *TabbedWindow {
	return &TabbedWindow{preview: preview, diff: diff, activeTab: PreviewTab}
}

// SetSize sets the outer window size; the tab bar takes one row, the rest is
// handed to whichever pane is active.
func (t *TabbedWindow) SetSize(width, height int) {
	t.width = width
	t.height = height
	contentHeight := height - 1
	if contentHeight < 0 {
		contentHeight = 0
	}
	t.preview.SetSize(width, contentHeight)
	t.diff.SetSize(width, contentHeight)
}

// GetPreviewSize returns the size available to the preview pane's content,
// used by Instance.SetPreviewSize to size the underlying tmux pane.
func (t *TabbedWindow) GetPreviewSize() (width, height int) {
	return t.preview.width - 2, t.preview.height - 2
}

// SetInstance shows the preview's fallback placeholder when instance is nil.
// It does not touch the preview's scroll state; Esc leaves scroll mode.
func (t *TabbedWindow) SetInstance(instance *session.Instance) {
	if instance == nil {
		t.preview.SetFallback()
	}
}

// UpdatePreview refreshes the preview pane from the instance's live content.
func (t *TabbedWindow) UpdatePreview(instance *session.Instance) error {
	return t.preview.UpdateContent(instance)
}

// UpdateDiff refreshes the diff pane from the instance's cached diff stats.
func (t *TabbedWindow) UpdateDiff(instance *session.Instance) {
	t.diff.UpdateDiff(instance)
}

// Toggle switches between the preview and diff tabs.
func (t *TabbedWindow) Toggle() {
	if t.activeTab == PreviewTab {
		t.activeTab = DiffTab
	} else {
		t.activeTab = PreviewTab
	}
}

// IsInDiffTab reports whether the diff tab is currently active.
func (t *TabbedWindow) IsInDiffTab() bool {
	return t.activeTab == DiffTab
}

// ScrollUp forwards to the preview pane's scroll-back; a no-op on the diff
// tab, which has no scroll state of its own.
func (t *TabbedWindow) ScrollUp(instance *session.Instance) error {
	if t.activeTab == DiffTab || instance == nil {
		return nil
	}
	return t.preview.ScrollUp(instance)
}

// ScrollDown forwards to the preview pane's scroll-back.
func (t *TabbedWindow) ScrollDown(instance *session.Instance) error {
	if t.activeTab == DiffTab || instance == nil {
		return nil
	}
	return t.preview.ScrollDown(instance)
}

// IsPreviewInScrollMode reports whether the preview pane is scrolled back.
func (t *TabbedWindow) IsPreviewInScrollMode() bool {
	return t.preview.IsScrolling()
}

// ResetPreviewToNormalMode exits the preview pane's scroll-back mode.
func (t *TabbedWindow) ResetPreviewToNormalMode(instance *session.Instance) error {
	return t.preview.ResetToNormalMode(instance)
}

func (t *TabbedWindow) String() string {
	var previewLabel, diffLabel string
	if t.activeTab == PreviewTab {
		previewLabel = tabActiveStyle.Render("Preview")
		diffLabel = tabInactiveStyle.Render("Diff")
	} else {
		previewLabel = tabInactiveStyle.Render("Preview")
		diffLabel = tabActiveStyle.Render(fmt.Sprintf("Diff %s", t.diff.Summary()))
	}
	tabBar := tabBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, previewLabel, " | ", diffLabel))

	var body string
	if t.activeTab == PreviewTab {
		body = t.preview.String()
	} else {
		body = t.diff.String()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, body)
}

package ui

import (
	"fmt"
	"strings"
	"testing"

	"league/session"
	"league/session/tmux"

	"github.com/stretchr/testify/require"
)

// fakeTmuxExecutor answers tmux capture-pane calls with canned content,
// distinguishing a full-history capture (-S -) from a normal one.
type fakeTmuxExecutor struct {
	full  string
	short string
}

func (f *fakeTmuxExecutor) Run(name string, args ...string) error { return nil }

func (f *fakeTmuxExecutor) Output(name string, args ...string) (string, error) {
	if name != "tmux" {
		return "", nil
	}
	for _, a := range args {
		if a == "-S" {
			return f.full, nil
		}
	}
	return f.short, nil
}

// newTestInstance builds an Instance with a tmux session wired to exec,
// without going through Start (which would require a real tmux binary).
func newTestInstance(t *testing.T, title string, exec *fakeTmuxExecutor) *session.Instance {
	t.Helper()
	instance, err := session.NewInstance(session.InstanceOptions{
		Title:   title,
		Path:    t.TempDir(),
		Program: "bash",
	})
	require.NoError(t, err)

	instance.SetSession(tmux.New(title, "bash", exec, nil))
	instance.MarkAsStartedForTesting()
	return instance
}

// TestPreviewScrolling tests the scrolling functionality in the preview pane.
func TestPreviewScrolling(t *testing.T) {
	const numLines = 100
	lines := make([]string, numLines+1)
	lines[0] = "$ seq 100"
	for i := 1; i <= numLines; i++ {
		lines[i] = fmt.Sprintf("%d", i)
	}
	fullContent := strings.Join(lines, "\n")

	const visibleLines = 20
	startLine := numLines + 1 - visibleLines
	shortContent := strings.Join(lines[startLine:], "\n")

	instance := newTestInstance(t, "test-preview-scroll", &fakeTmuxExecutor{
		full:  fullContent,
		short: shortContent,
	})

	previewPane := NewPreviewPane()
	previewPane.SetSize(80, 30)

	// Step 1: normal preview mode
	err := previewPane.UpdateContent(instance)
	require.NoError(t, err)
	require.False(t, previewPane.isScrolling, "should not be in scrolling mode initially")

	// Step 2: full history includes both the command and earliest output
	fullHistory, err := instance.PreviewFullHistory()
	require.NoError(t, err)
	require.Contains(t, fullHistory, "$ seq 100")
	require.Contains(t, fullHistory, "1")

	// Step 3: entering scroll mode
	err = previewPane.ScrollUp(instance)
	require.NoError(t, err)
	require.True(t, previewPane.isScrolling, "should be in scrolling mode after ScrollUp")

	// Step 4/5: scroll 50 more lines up (not all the way to the top)
	for range 50 {
		err = previewPane.ScrollUp(instance)
		require.NoError(t, err)
	}
	t.Logf("viewport after scrolling up: %q", previewPane.viewport.View())

	// Step 6: scroll back toward the bottom
	for range 25 {
		err = previewPane.ScrollDown(instance)
		require.NoError(t, err)
	}
	t.Logf("viewport after scrolling down: %q", previewPane.viewport.View())

	// Step 7: reset to normal mode
	err = previewPane.ResetToNormalMode(instance)
	require.NoError(t, err)
	require.False(t, previewPane.isScrolling, "should not be in scrolling mode after reset")
}

// TestPreviewContentWithoutScrolling tests that the preview pane correctly
// displays content for a new instance without requiring scrolling.
func TestPreviewContentWithoutScrolling(t *testing.T) {
	expectedContent := "$ echo test\ntest"

	instance := newTestInstance(t, "test-preview-content", &fakeTmuxExecutor{
		full:  expectedContent,
		short: expectedContent,
	})

	previewPane := NewPreviewPane()
	previewPane.SetSize(80, 30)

	err := previewPane.UpdateContent(instance)
	require.NoError(t, err)

	require.False(t, previewPane.isScrolling, "should not be in scrolling mode")
	require.False(t, previewPane.previewState.fallback, "preview should not be in fallback mode")
	require.Equal(t, expectedContent, previewPane.previewState.text)

	renderedString := previewPane.String()
	require.Contains(t, renderedString, "test")
}

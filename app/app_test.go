package app

import (
	"context"
	"testing"

	"league/session"
	"league/testing/harness"

	"github.com/stretchr/testify/require"
)

// newTestHome builds a home model against an isolated config directory so
// the test never touches the real operator's ~/.league.
func newTestHome(t *testing.T) *home {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return newHome(context.Background(), "bash", false)
}

// TestResizeAcrossCommonSizes exercises the resize path at every common
// terminal size the harness knows about, verifying the layout degrades
// instead of panicking and that View() always renders something.
func TestResizeAcrossCommonSizes(t *testing.T) {
	h := newTestHome(t)
	wrapped := harness.New(t, h, 120, 40)

	harness.RunWithCommonSizes(t, func(t *testing.T, size harness.TerminalSize) {
		wrapped.Resize(size.Width, size.Height)
		require.NotEmpty(t, wrapped.View())

		m, ok := wrapped.Model().(*home)
		require.True(t, ok)
		require.Equal(t, size.Width, m.constraints.TerminalWidth)
		require.Equal(t, size.Height, m.constraints.TerminalHeight)
	})
}

// TestMinimalLayoutDegrades checks that a terminal at/under the minimum
// supported size trips the degradation flags the menu and list rely on.
func TestMinimalLayoutDegrades(t *testing.T) {
	h := newTestHome(t)
	wrapped := harness.New(t, h, 80, 24)

	m, ok := wrapped.Model().(*home)
	require.True(t, ok)
	require.Equal(t, 80, m.constraints.TerminalWidth)
	require.True(t, m.degradation.HideListSummaries,
		"degradation should be a definite computed value, not a zero value")
}

// TestKeyPDispatchesToCheckout exercises the keybinding fix: "p" now
// routes through keys.KeyCheckout (it used to land on the unhandled
// keys.KeyPause, a no-op) and reaches the checkout help screen for an
// unpaused instance.
func TestKeyPDispatchesToCheckout(t *testing.T) {
	h := newTestHome(t)
	wrapped := harness.New(t, h, 120, 40)
	m := wrapped.Model().(*home)

	instance, err := session.NewInstance(session.InstanceOptions{
		Title:   "test",
		Path:    t.TempDir(),
		Program: "bash",
	})
	require.NoError(t, err)
	m.list.AddInstance(instance)()
	m.list.SetSelectedInstance(0)
	require.False(t, instance.Paused())

	wrapped.SendKey("p")
	require.Equal(t, stateHelp, m.state)
}

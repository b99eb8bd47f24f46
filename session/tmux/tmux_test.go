package tmux

import (
	"fmt"
	"os"
	"os/exec"
	"testing"

	"league/pty"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExecutor is a record-and-replay Command Executor fake, mirroring
// original_source's RecordingCmdExec test double.
type recordingExecutor struct {
	calls     []call
	failMatch func(name string, args []string) bool
	outputs   []string
	idx       int
}

type call struct {
	name string
	args []string
}

func (r *recordingExecutor) Run(name string, args ...string) error {
	r.calls = append(r.calls, call{name, args})
	if r.failMatch != nil && r.failMatch(name, args) {
		return assert.AnError
	}
	return nil
}

func (r *recordingExecutor) Output(name string, args ...string) (string, error) {
	r.calls = append(r.calls, call{name, args})
	if r.failMatch != nil && r.failMatch(name, args) {
		return "", assert.AnError
	}
	if r.idx < len(r.outputs) {
		out := r.outputs[r.idx]
		r.idx++
		return out, nil
	}
	return "", nil
}

// mockPtyFactory hands out temp files standing in for a real master fd.
type mockPtyFactory struct {
	started int
}

func (m *mockPtyFactory) Start(cmd *exec.Cmd, size pty.Size) (*os.File, error) {
	m.started++
	f, err := os.CreateTemp("", "league-mock-pty")
	if err != nil {
		return nil, err
	}
	return f, nil
}

func TestSanitizeNameSimple(t *testing.T) {
	assert.Equal(t, "league_feature", SanitizeName("feature"))
}

func TestSanitizeNameSpecialChars(t *testing.T) {
	assert.Equal(t, "league_a_sd_f_asdf", SanitizeName("a sd f . . asdf"))
}

func TestStartTmuxSession(t *testing.T) {
	re := &recordingExecutor{failMatch: func(name string, args []string) bool {
		return name == "tmux" && len(args) > 0 && args[0] == "has-session"
	}}
	mp := &mockPtyFactory{}
	s := New("my-feature", "claude", re, mp)

	require.NoError(t, s.Start("/workdir"))
	assert.Equal(t, 2, mp.started, "start should open exactly two PTYs: creation + monitor")
}

func TestStartTmuxSessionKillsExisting(t *testing.T) {
	re := &recordingExecutor{} // has-session succeeds => session exists
	mp := &mockPtyFactory{}
	s := New("my-feature", "claude", re, mp)

	require.NoError(t, s.Start("/workdir"))

	var killed bool
	for _, c := range re.calls {
		if c.name == "tmux" && len(c.args) > 0 && c.args[0] == "kill-session" {
			killed = true
		}
	}
	assert.True(t, killed)
}

func TestHasUpdatedDetectsChange(t *testing.T) {
	re := &recordingExecutor{outputs: []string{"frame one", "frame one", "frame two"}}
	s := New("t", "other", re, &mockPtyFactory{})

	changed1, err := s.HasUpdated()
	require.NoError(t, err)
	assert.True(t, changed1, "first capture always counts as a change from the zero hash")

	changed2, err := s.HasUpdated()
	require.NoError(t, err)
	assert.False(t, changed2)

	changed3, err := s.HasUpdated()
	require.NoError(t, err)
	assert.True(t, changed3)
}

func TestHasUpdatedDetectsAiPrompt(t *testing.T) {
	re := &recordingExecutor{outputs: []string{"No, and tell Claude what to do differently"}}
	s := New("t", "claude", re, &mockPtyFactory{})

	changed, err := s.HasUpdated()
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestHasAttentionPromptAider(t *testing.T) {
	assert.True(t, hasAttentionPrompt("(Y)es/(N)o/(D)on't ask again", "aider"))
	assert.False(t, hasAttentionPrompt("nothing interesting", "aider"))
}

func TestHasAttentionPromptGemini(t *testing.T) {
	assert.True(t, hasAttentionPrompt("Yes, allow once", "gemini"))
}

func TestSendKeys(t *testing.T) {
	re := &recordingExecutor{}
	s := New("t", "claude", re, &mockPtyFactory{})

	require.NoError(t, s.SendKeys("Enter"))
	require.Len(t, re.calls, 1)
	assert.Equal(t, []string{"send-keys", "-t", "league_t", "Enter"}, re.calls[0].args)
}

func TestCloseKillsSession(t *testing.T) {
	re := &recordingExecutor{}
	s := New("t", "claude", re, &mockPtyFactory{})

	require.NoError(t, s.Close())
	found := false
	for _, c := range re.calls {
		if c.name == "tmux" && len(c.args) > 1 && c.args[0] == "kill-session" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSetSize(t *testing.T) {
	re := &recordingExecutor{}
	s := New("t", "claude", re, &mockPtyFactory{})

	require.NoError(t, s.SetSize(120, 40))
	assert.Equal(t, []string{"resize-window", "-t", "league_t", "-x", "120", "-y", "40"}, re.calls[0].args)
}

func TestCleanupAllKillsNamespacedSessions(t *testing.T) {
	re := &recordingExecutor{outputs: []string{"league_one\nother_session\nleague_two\n"}}
	require.NoError(t, CleanupAll(re))

	killed := map[string]bool{}
	for _, c := range re.calls {
		if c.name == "tmux" && len(c.args) > 1 && c.args[0] == "kill-session" {
			killed[c.args[2]] = true
		}
	}
	assert.True(t, killed["league_one"])
	assert.True(t, killed["league_two"])
	assert.False(t, killed["other_session"])
}

// noServerExecutor simulates `tmux list-sessions` failing because no tmux
// server is running at all.
type noServerExecutor struct{ recordingExecutor }

func (n *noServerExecutor) Output(name string, args ...string) (string, error) {
	n.calls = append(n.calls, call{name, args})
	return "", fmt.Errorf("no server running on /tmp/tmux-0/default")
}

func TestCleanupAllNoServerIsSuccess(t *testing.T) {
	ns := &noServerExecutor{}
	assert.NoError(t, CleanupAll(ns))
}

func TestRestoreMissingSessionReturnsNotFound(t *testing.T) {
	re := &recordingExecutor{failMatch: func(name string, args []string) bool {
		return name == "tmux" && len(args) > 0 && args[0] == "has-session"
	}}
	s := New("t", "claude", re, &mockPtyFactory{})

	err := s.Restore()
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

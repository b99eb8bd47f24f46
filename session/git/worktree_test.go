package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBranchName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"feature", "feature"},
		{"new feature branch", "new-feature-branch"},
		{"FeAtUrE BrAnCh", "feature-branch"},
		{"feature!@#$%^&*()", "feature"},
		{"feature/sub_branch.v1", "feature/sub_branch.v1"},
		{"feature---branch", "feature-branch"},
		{"-feature-branch-", "feature-branch"},
		{"/feature/branch/", "feature/branch"},
		{"", ""},
		{"USER/Feature Branch!@#$%^&*()/v1.0", "user/feature-branch/v1.0"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, sanitizeBranchName(c.in), "sanitizeBranchName(%q)", c.in)
	}
}

func TestSanitizeBranchNameIdempotent(t *testing.T) {
	inputs := []string{"USER/Feature Branch!@#$%^&*()/v1.0", "a sd f . . asdf", "Test Feature"}
	for _, in := range inputs {
		once := sanitizeBranchName(in)
		twice := sanitizeBranchName(once)
		assert.Equal(t, once, twice)
	}
}

// fakeExecutor returns a queued sequence of Output results, recording every
// invocation, matching the teacher's record-and-replay test style.
type fakeExecutor struct {
	outputs []string
	errs    []error
	calls   []string
}

func (f *fakeExecutor) Run(name string, args ...string) error {
	_, err := f.Output(name, args...)
	return err
}

func (f *fakeExecutor) Output(name string, args ...string) (string, error) {
	f.calls = append(f.calls, name)
	i := len(f.calls) - 1
	var out string
	var err error
	if i < len(f.outputs) {
		out = f.outputs[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return out, err
}

func TestDiffCounting(t *testing.T) {
	diffText := "diff --git a/x b/x\n--- a/x\n+++ b/x\n@@ -1,1 +1,1 @@\n+added line\n-removed line\n"
	fe := &fakeExecutor{outputs: []string{"", diffText}}
	g := NewGitWorktreeFromStorage(fe, "/repo", "/repo/wt", "sess", "x/test", "base123")

	stats := g.Diff()
	require.NoError(t, stats.Error)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Removed)
}

func TestIsDirty(t *testing.T) {
	fe := &fakeExecutor{outputs: []string{" M file.go\n"}}
	g := NewGitWorktreeFromStorage(fe, "/repo", "/repo/wt", "sess", "x/test", "base123")

	dirty, err := g.IsDirty()
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestCommitChangesSkipsWhenClean(t *testing.T) {
	fe := &fakeExecutor{outputs: []string{""}}
	g := NewGitWorktreeFromStorage(fe, "/repo", "/repo/wt", "sess", "x/test", "base123")

	require.NoError(t, g.CommitChanges("save"))
	assert.Len(t, fe.calls, 1, "only the dirty-check should run")
}

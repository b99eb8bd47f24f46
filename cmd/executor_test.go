package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemExecutorOutput(t *testing.T) {
	e := MakeExecutor()
	out, err := e.Output("echo", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestSystemExecutorRunFailure(t *testing.T) {
	e := MakeExecutor()
	err := e.Run("false")
	require.Error(t, err)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
}

func TestSystemExecutorNotFound(t *testing.T) {
	e := MakeExecutor()
	_, err := e.Output("league-definitely-not-a-real-binary")
	require.Error(t, err)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

// RecordingExecutor is a test double matching the teacher's record-and-replay
// style for substituting the Command Executor in unit tests.
type RecordingExecutor struct {
	Calls     []Call
	FailMatch func(name string, args []string) bool
	Outputs   []string
	callIdx   int
}

type Call struct {
	Name string
	Args []string
}

func (r *RecordingExecutor) Run(name string, args ...string) error {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	if r.FailMatch != nil && r.FailMatch(name, args) {
		return &Error{Name: name, Args: args, Err: assert.AnError}
	}
	return nil
}

func (r *RecordingExecutor) Output(name string, args ...string) (string, error) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
	if r.FailMatch != nil && r.FailMatch(name, args) {
		return "", &Error{Name: name, Args: args, Err: assert.AnError}
	}
	if r.callIdx < len(r.Outputs) {
		out := r.Outputs[r.callIdx]
		r.callIdx++
		return out, nil
	}
	return "", nil
}

func TestRecordingExecutorRecordsCalls(t *testing.T) {
	r := &RecordingExecutor{Outputs: []string{"one", "two"}}
	out1, err := r.Output("git", "status")
	require.NoError(t, err)
	assert.Equal(t, "one", out1)
	out2, err := r.Output("git", "diff")
	require.NoError(t, err)
	assert.Equal(t, "two", out2)
	require.Len(t, r.Calls, 2)
	assert.Equal(t, "git", r.Calls[0].Name)
	assert.Equal(t, []string{"status"}, r.Calls[0].Args)
}

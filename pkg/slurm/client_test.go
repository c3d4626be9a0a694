package slurm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner returns canned results keyed by the command name.
type fakeRunner struct {
	results map[string]fakeResult
	calls   []string
}

type fakeResult struct {
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	res := f.results[name]
	return res.stdout, res.stderr, res.err
}

func TestClientSubmit(t *testing.T) {
	t.Run("success returns trimmed job id", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"sbatch": {stdout: "12345\n"},
		}}
		client := NewClient(runner, Config{})

		jobID, err := client.Submit(context.Background(), "/tmp/job.sh")
		require.NoError(t, err)
		assert.Equal(t, "12345", jobID)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, "sbatch --parsable /tmp/job.sh", runner.calls[0])
	})

	t.Run("non-zero exit surfaces stderr verbatim", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"sbatch": {stderr: "sbatch: error: invalid partition\n", err: fmt.Errorf("exit status 1")},
		}}
		client := NewClient(runner, Config{})

		_, err := client.Submit(context.Background(), "/tmp/job.sh")
		require.Error(t, err)

		var se *SubmitError
		require.True(t, errors.As(err, &se))
		assert.Contains(t, se.Stderr, "sbatch: error: invalid partition")
		assert.Contains(t, se.Error(), "sbatch: error: invalid partition")
	})

	t.Run("empty stdout is a submit error", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"sbatch": {stdout: "\n"},
		}}
		client := NewClient(runner, Config{})

		_, err := client.Submit(context.Background(), "/tmp/job.sh")
		require.Error(t, err)
	})
}

func TestClientQueryLive(t *testing.T) {
	t.Run("running with node", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"squeue": {stdout: "RUNNING node042\n"},
		}}
		client := NewClient(runner, Config{})

		live, err := client.QueryLive(context.Background(), "99")
		require.NoError(t, err)
		assert.Equal(t, LiveStatus{State: StateRunning, Node: "node042"}, live)
	})

	t.Run("empty output means gone", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"squeue": {stdout: ""},
		}}
		client := NewClient(runner, Config{})

		live, err := client.QueryLive(context.Background(), "99")
		require.NoError(t, err)
		assert.True(t, live.Gone)
	})

	t.Run("command failure also means gone", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"squeue": {stderr: "slurm_load_jobs error: Invalid job id", err: fmt.Errorf("exit status 1")},
		}}
		client := NewClient(runner, Config{})

		live, err := client.QueryLive(context.Background(), "99")
		require.NoError(t, err)
		assert.True(t, live.Gone)
	})

	t.Run("cancelled context propagates", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"squeue": {err: context.Canceled},
		}}
		client := NewClient(runner, Config{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.QueryLive(ctx, "99")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClientQueryFinal(t *testing.T) {
	t.Run("completed record", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"sacct": {stdout: "COMPLETED|\n"},
		}}
		client := NewClient(runner, Config{})

		state, err := client.QueryFinal(context.Background(), "99")
		require.NoError(t, err)
		assert.Equal(t, StateCompleted, state)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, "sacct -j 99 --format=State --parsable2 --noheader", runner.calls[0])
	})

	t.Run("no records maps to unknown", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"sacct": {stdout: "\n"},
		}}
		client := NewClient(runner, Config{})

		state, err := client.QueryFinal(context.Background(), "99")
		require.NoError(t, err)
		assert.Equal(t, StateUnknown, state)
	})

	t.Run("command failure returns unknown with error", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"sacct": {stderr: "sacct: fatal: slurmdbd down", err: fmt.Errorf("exit status 1")},
		}}
		client := NewClient(runner, Config{})

		state, err := client.QueryFinal(context.Background(), "99")
		require.Error(t, err)
		assert.Equal(t, StateUnknown, state)
		assert.Contains(t, err.Error(), "slurmdbd down")
	})
}

func TestClientCancel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"scancel": {},
		}}
		client := NewClient(runner, Config{})
		assert.NoError(t, client.Cancel(context.Background(), "99"))
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]fakeResult{
			"scancel": {stderr: "scancel: error: job 99 not found", err: fmt.Errorf("exit status 1")},
		}}
		client := NewClient(runner, Config{})

		err := client.Cancel(context.Background(), "99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestClientConfigDefaults(t *testing.T) {
	runner := &fakeRunner{results: map[string]fakeResult{
		"mysbatch": {stdout: "7\n"},
	}}
	client := NewClient(runner, Config{SbatchBin: "mysbatch"})

	jobID, err := client.Submit(context.Background(), "x.sh")
	require.NoError(t, err)
	assert.Equal(t, "7", jobID)
}

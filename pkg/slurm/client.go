// Package slurm is the only point of contact with the external Slurm
// scheduler. Every other package operates on the structured results returned
// here, which keeps the lifecycle poller testable against a fake
// CommandRunner instead of a real cluster.
package slurm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes one external command and returns captured stdout,
// captured stderr, and the invocation error (non-zero exit included).
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// SubmitError is a failed sbatch invocation. Stderr carries the scheduler's
// own message verbatim for display.
type SubmitError struct {
	Stderr string
	Err    error
}

func (e *SubmitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("sbatch failed: %s", msg)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Config names the scheduler binaries. Overridable for clusters that wrap
// the Slurm commands.
type Config struct {
	SbatchBin  string
	SqueueBin  string
	SacctBin   string
	ScancelBin string
}

func DefaultConfig() Config {
	return Config{
		SbatchBin:  "sbatch",
		SqueueBin:  "squeue",
		SacctBin:   "sacct",
		ScancelBin: "scancel",
	}
}

// Client issues the four Slurm subcommands slurmboard consumes.
type Client struct {
	runner CommandRunner
	cfg    Config
}

func NewClient(runner CommandRunner, cfg Config) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	def := DefaultConfig()
	if cfg.SbatchBin == "" {
		cfg.SbatchBin = def.SbatchBin
	}
	if cfg.SqueueBin == "" {
		cfg.SqueueBin = def.SqueueBin
	}
	if cfg.SacctBin == "" {
		cfg.SacctBin = def.SacctBin
	}
	if cfg.ScancelBin == "" {
		cfg.ScancelBin = def.ScancelBin
	}
	return &Client{runner: runner, cfg: cfg}
}

// Submit enqueues the script and returns the assigned job id. Exit 0 means
// success and the trimmed stdout is the id; anything else is a SubmitError
// carrying the captured stderr.
func (c *Client) Submit(ctx context.Context, scriptPath string) (string, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.cfg.SbatchBin, "--parsable", scriptPath)
	if err != nil {
		return "", &SubmitError{Stderr: stderr, Err: err}
	}
	jobID := ParseSubmitOutput(stdout)
	if jobID == "" {
		return "", &SubmitError{Stderr: "sbatch produced no job id", Err: nil}
	}
	return jobID, nil
}

// QueryLive polls the live queue for the job's state and assigned node.
// A job absent from the queue is reported as Gone, never as an error:
// squeue exits non-zero for unknown ids once they age out, and that carries
// the same meaning as empty output.
func (c *Client) QueryLive(ctx context.Context, jobID string) (LiveStatus, error) {
	stdout, _, err := c.runner.Run(ctx, c.cfg.SqueueBin, "-h", "-j", jobID, "-o", "%T %N")
	if err != nil {
		if ctx.Err() != nil {
			return LiveStatus{}, ctx.Err()
		}
		return LiveStatus{Gone: true}, nil
	}
	return ParseLiveStatus(stdout), nil
}

// QueryFinal reads the historical accounting record for the job's terminal
// state. Absence of any record maps to UNKNOWN.
func (c *Client) QueryFinal(ctx context.Context, jobID string) (State, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.cfg.SacctBin,
		"-j", jobID, "--format=State", "--parsable2", "--noheader")
	if err != nil {
		if ctx.Err() != nil {
			return StateUnknown, ctx.Err()
		}
		return StateUnknown, fmt.Errorf("sacct failed: %s", firstOf(stderr, err.Error()))
	}
	return ParseFinalState(stdout), nil
}

// Cancel asks the scheduler to cancel the job. Best-effort; the caller
// decides whether a failure matters.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	_, stderr, err := c.runner.Run(ctx, c.cfg.ScancelBin, jobID)
	if err != nil {
		return fmt.Errorf("scancel %s: %s", jobID, firstOf(stderr, err.Error()))
	}
	return nil
}

func firstOf(s, fallback string) string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return fallback
}

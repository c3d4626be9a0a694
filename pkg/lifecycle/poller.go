package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/presleydc/slurmboard/pkg/script"
	"github.com/presleydc/slurmboard/pkg/slurm"
	"github.com/presleydc/slurmboard/pkg/spool"
)

var (
	// ErrRunInFlight means a launch was refused because a run is active.
	// Re-triggering while polling would race two flows over the shared
	// record, so the trigger is disabled instead.
	ErrRunInFlight = errors.New("a job run is already in flight")

	// ErrNoActiveRun means there was nothing to cancel.
	ErrNoActiveRun = errors.New("no job run is in flight")
)

// SchedulerClient is the poller's view of the Slurm client. A fake
// implementation substitutes canned results in tests.
type SchedulerClient interface {
	Submit(ctx context.Context, scriptPath string) (string, error)
	QueryLive(ctx context.Context, jobID string) (slurm.LiveStatus, error)
	QueryFinal(ctx context.Context, jobID string) (slurm.State, error)
	Cancel(ctx context.Context, jobID string) error
}

// LogCollector produces the display bundle for a terminal job.
type LogCollector interface {
	Collect(jobID string) string
}

// Config tunes poller behavior.
type Config struct {
	// PollInterval is the suspension between live-queue queries.
	// Default: 5s.
	PollInterval time.Duration

	// ScriptParams are the directives rendered into the job script.
	ScriptParams script.Params
}

// Poller orchestrates one launch: render script, submit, poll until the job
// leaves the live queue, classify via the historical record, collect logs,
// clean up. At most one run is in flight at a time.
type Poller struct {
	client  SchedulerClient
	logs    LogCollector
	spool   *spool.Spool
	tracker *Tracker
	logger  *zap.Logger
	cfg     Config

	mu        sync.Mutex
	inFlight  bool
	cancelRun context.CancelFunc
	done      chan struct{}
}

func NewPoller(client SchedulerClient, logs LogCollector, sp *spool.Spool, tracker *Tracker, logger *zap.Logger, cfg Config) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:  client,
		logs:    logs,
		spool:   sp,
		tracker: tracker,
		logger:  logger,
		cfg:     cfg,
	}
}

// Tracker exposes the state owned by this poller for read-only consumers.
func (p *Poller) Tracker() *Tracker {
	return p.tracker
}

// InFlight reports whether a run is currently active.
func (p *Poller) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// TryLaunch starts a run in the background. It returns ErrRunInFlight if one
// is already active. The run's lifetime is bound to parent: cancelling
// parent stops the poll loop.
func (p *Poller) TryLaunch(parent context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return "", ErrRunInFlight
	}

	runID := uuid.New().String()[:8]
	ctx, cancel := context.WithCancel(parent)
	p.inFlight = true
	p.cancelRun = cancel
	p.done = make(chan struct{})
	done := p.done

	go func() {
		defer func() {
			p.mu.Lock()
			p.inFlight = false
			p.cancelRun = nil
			p.mu.Unlock()
			cancel()
			close(done)
		}()
		p.run(ctx, runID)
	}()

	return runID, nil
}

// Run executes one full lifecycle synchronously. Outcomes are reported
// through the tracker, not the return value; only a refused launch errors.
func (p *Poller) Run(parent context.Context) error {
	if _, err := p.TryLaunch(parent); err != nil {
		return err
	}
	p.Wait()
	return nil
}

// Wait blocks until the in-flight run (if any) finishes.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// CancelRun aborts the in-flight run: the poll loop's context is cancelled
// and, if a job was submitted, scancel is attempted best-effort.
func (p *Poller) CancelRun(ctx context.Context) error {
	p.mu.Lock()
	if !p.inFlight {
		p.mu.Unlock()
		return ErrNoActiveRun
	}
	cancel := p.cancelRun
	p.mu.Unlock()

	if jobID := p.tracker.Snapshot().Record.JobID; jobID != "" {
		if err := p.client.Cancel(ctx, jobID); err != nil {
			p.logger.Warn("scancel failed", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	cancel()
	return nil
}

// run drives one launch end to end. All failures are terminal for the run
// and are reported as narrative messages; nothing is retried.
func (p *Poller) run(ctx context.Context, runID string) {
	scriptPath := p.spool.ScriptPath(runID)
	var jobID string

	// Cleanup runs on every exit path: success, submission failure,
	// cancellation, and recovered panics.
	defer p.cleanup(scriptPath, &jobID)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("run panicked", zap.String("run_id", runID), zap.Any("panic", r))
			p.tracker.SetNotLaunched()
			p.tracker.Publish(fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	p.tracker.Reset(runID)
	p.publish("attempting job submission")

	if err := p.spool.Ensure(); err != nil {
		p.tracker.SetNotLaunched()
		p.publish(fmt.Sprintf("failed to prepare spool dir: %v", err))
		return
	}
	if err := script.Write(scriptPath, p.cfg.ScriptParams); err != nil {
		p.tracker.SetNotLaunched()
		p.publish(fmt.Sprintf("failed to write job script: %v", err))
		return
	}

	id, err := p.client.Submit(ctx, scriptPath)
	if err != nil {
		p.tracker.SetNotLaunched()
		p.publish(fmt.Sprintf("submission failed: %s", submitDetail(err)))
		return
	}
	jobID = id
	p.tracker.SetPending(jobID)
	p.publish(fmt.Sprintf("submitted job %s, pending", jobID))

	if !p.pollLive(ctx, jobID) {
		return
	}

	p.finalize(ctx, jobID)
}

// pollLive watches the live queue until the job leaves it. Returns false if
// the run was cancelled before reaching the historical query.
func (p *Poller) pollLive(ctx context.Context, jobID string) bool {
	for {
		live, err := p.client.QueryLive(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				p.markCancelled(jobID)
				return false
			}
			// QueryLive only errors on context cancellation.
			p.logger.Warn("live query failed", zap.String("job_id", jobID), zap.Error(err))
			return true
		}

		switch {
		case live.Gone:
			return true
		case live.State == slurm.StateRunning:
			p.tracker.SetRunning(live.Node)
			host := p.tracker.Snapshot().Record.Hostname
			p.publish(fmt.Sprintf("job %s running on %s", jobID, host))
		case live.State == slurm.StatePending:
			p.publish(fmt.Sprintf("job %s pending, waiting for allocation", jobID))
		default:
			// Any other live state carries no useful information;
			// the historical record decides the outcome.
			return true
		}

		select {
		case <-ctx.Done():
			p.markCancelled(jobID)
			return false
		case <-time.After(p.cfg.PollInterval):
		}
	}
}

// finalize classifies the outcome from the historical record and appends the
// log bundle to the published message.
func (p *Poller) finalize(ctx context.Context, jobID string) {
	final, err := p.client.QueryFinal(ctx, jobID)
	if err != nil {
		if ctx.Err() != nil {
			p.markCancelled(jobID)
			return
		}
		p.logger.Warn("historical query failed", zap.String("job_id", jobID), zap.Error(err))
		final = slurm.StateUnknown
	}

	var msg string
	switch {
	case final == slurm.StateCompleted:
		p.tracker.SetCompleted()
		msg = fmt.Sprintf("job %s completed", jobID)
	case final.AbnormalTerminal():
		p.tracker.SetFailed()
		msg = fmt.Sprintf("job %s ended in state %s", jobID, final)
	default:
		p.tracker.SetFailed()
		msg = fmt.Sprintf("job %s ended in unrecognized state %s; consult sacct or scontrol directly", jobID, final)
	}

	p.publish(msg + "\n" + p.logs.Collect(jobID))
}

// markCancelled records a dashboard-initiated abort as a Failed terminal
// transition with the log bundle attached.
func (p *Poller) markCancelled(jobID string) {
	p.tracker.SetFailed()
	p.publish(fmt.Sprintf("job %s run cancelled from dashboard\n%s", jobID, p.logs.Collect(jobID)))
}

// cleanup removes the generated script and, once a job id exists, its two
// log files. Deletion failures are logged, never surfaced and never retried.
func (p *Poller) cleanup(scriptPath string, jobID *string) {
	if err := p.spool.Remove(scriptPath); err != nil {
		p.logger.Warn("failed to remove job script", zap.String("path", scriptPath), zap.Error(err))
	}
	if jobID == nil || *jobID == "" {
		return
	}
	for _, path := range []string{p.spool.StdoutPath(*jobID), p.spool.StderrPath(*jobID)} {
		if err := p.spool.Remove(path); err != nil {
			p.logger.Warn("failed to remove job log", zap.String("path", path), zap.Error(err))
		}
	}
}

func (p *Poller) publish(text string) {
	p.tracker.Publish(text)
	p.logger.Info(firstLine(text))
}

func submitDetail(err error) string {
	var se *slurm.SubmitError
	if errors.As(err, &se) && strings.TrimSpace(se.Stderr) != "" {
		return strings.TrimSpace(se.Stderr)
	}
	return err.Error()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

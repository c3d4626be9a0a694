// Package lifecycle owns the job lifecycle state machine: submit, poll the
// live queue until the job leaves it, classify the outcome from the
// historical record, and collect logs.
package lifecycle

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the dashboard-side lifecycle phase of the tracked job.
type Phase string

const (
	PhaseNotLaunched Phase = "not_launched"
	PhasePending     Phase = "pending"
	PhaseRunning     Phase = "running"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
)

// UnknownHost is the hostname shown until a running job reports one.
const UnknownHost = "unknown"

// JobRecord is the single unit of state tracked per submission. A new
// launch supersedes the previous record entirely.
//
// Invariant: EndedAt is set if and only if Phase is Completed or Failed.
type JobRecord struct {
	RunID     string     `json:"run_id"`
	JobID     string     `json:"job_id,omitempty"`
	Phase     Phase      `json:"phase"`
	Hostname  string     `json:"hostname"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Terminal reports whether the record reached a terminal phase.
func (r JobRecord) Terminal() bool {
	return r.Phase == PhaseCompleted || r.Phase == PhaseFailed
}

// Duration is the wall time between submission and terminal transition.
func (r JobRecord) Duration() time.Duration {
	if r.StartedAt == nil || r.EndedAt == nil {
		return 0
	}
	return r.EndedAt.Sub(*r.StartedAt)
}

// Message is one narrative entry published by the poller.
type Message struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Snapshot is a consistent read of tracker state for presentation.
type Snapshot struct {
	Record     JobRecord `json:"record"`
	StatusLine string    `json:"status_line"`
	Messages   []Message `json:"messages"`
}

// Tracker is the owned, mutex-guarded home of the current JobRecord and its
// narrative log. Only the Poller mutates it; the HTTP layer and CLI read
// snapshots.
type Tracker struct {
	mu       sync.Mutex
	record   JobRecord
	messages []Message
}

func NewTracker() *Tracker {
	return &Tracker{record: JobRecord{Phase: PhaseNotLaunched, Hostname: UnknownHost}}
}

// Reset discards the previous record and narrative and starts a fresh
// NotLaunched record for runID.
func (t *Tracker) Reset(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record = JobRecord{RunID: runID, Phase: PhaseNotLaunched, Hostname: UnknownHost}
	t.messages = nil
}

// Publish appends a narrative message.
func (t *Tracker) Publish(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, Message{At: time.Now().UTC(), Text: text})
}

// SetPending records a successful submission.
func (t *Tracker) SetPending(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	t.record.JobID = jobID
	t.record.Phase = PhasePending
	t.record.StartedAt = &now
	t.record.EndedAt = nil
}

// SetRunning marks the job running. An empty node report never overwrites a
// previously observed hostname.
func (t *Tracker) SetRunning(node string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record.Phase = PhaseRunning
	if node != "" {
		t.record.Hostname = node
	}
}

// SetCompleted marks the terminal success transition.
func (t *Tracker) SetCompleted() {
	t.setTerminal(PhaseCompleted)
}

// SetFailed marks a terminal non-success transition.
func (t *Tracker) SetFailed() {
	t.setTerminal(PhaseFailed)
}

func (t *Tracker) setTerminal(phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	t.record.Phase = phase
	t.record.EndedAt = &now
}

// SetNotLaunched collapses the record back to NotLaunched after a submission
// failure or unexpected error. The narrative keeps the failure detail; the
// record drops terminal fields so the status line shows the default phrase.
func (t *Tracker) SetNotLaunched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record.Phase = PhaseNotLaunched
	t.record.JobID = ""
	t.record.StartedAt = nil
	t.record.EndedAt = nil
	t.record.Hostname = UnknownHost
}

// Snapshot returns a copy of the record, the rendered status line, and the
// narrative messages.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := make([]Message, len(t.messages))
	copy(msgs, t.messages)
	return Snapshot{
		Record:     t.record,
		StatusLine: statusLine(t.record),
		Messages:   msgs,
	}
}

// StatusLine renders the compact status display.
func (t *Tracker) StatusLine() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return statusLine(t.record)
}

// statusLine has exactly three renderings. NotLaunched, Pending, and Failed
// all collapse to the default phrase; the narrative carries the detail.
func statusLine(r JobRecord) string {
	switch r.Phase {
	case PhaseRunning:
		return fmt.Sprintf("job running on host: %s", r.Hostname)
	case PhaseCompleted:
		return fmt.Sprintf("job completed in %.0f seconds", r.Duration().Seconds())
	default:
		return "no job launched"
	}
}

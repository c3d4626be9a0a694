package slurm

import "strings"

// LiveStatus is one parsed squeue report for a job.
type LiveStatus struct {
	// Gone means the job is no longer in the live queue; the historical
	// record decides the outcome.
	Gone bool

	// State is the reported live state (PENDING, RUNNING, or passthrough).
	State State

	// Node is the assigned node name; empty means not yet assigned.
	Node string
}

// ParseSubmitOutput extracts the job id from sbatch --parsable output.
//
// The parsable form is "<jobid>" or "<jobid>;<cluster>". Older non-parsable
// output ("Submitted batch job <jobid>") is tolerated by taking the last
// field.
func ParseSubmitOutput(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	if i := strings.IndexByte(out, ';'); i >= 0 {
		out = out[:i]
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// ParseLiveStatus parses headerless "state node" squeue output. Empty output
// means the job has left the live queue. The node column may be absent or
// empty while the job is pending.
func ParseLiveStatus(out string) LiveStatus {
	line := firstNonEmptyLine(out)
	if line == "" {
		return LiveStatus{Gone: true}
	}
	fields := strings.Fields(line)
	status := LiveStatus{State: Normalize(fields[0])}
	if len(fields) > 1 {
		status.Node = fields[1]
	}
	return status
}

// ParseFinalState parses headerless --parsable2 sacct output. The first
// record's first pipe-delimited field is the canonical terminal state; no
// records at all maps to UNKNOWN.
func ParseFinalState(out string) State {
	line := firstNonEmptyLine(out)
	if line == "" {
		return StateUnknown
	}
	field, _, _ := strings.Cut(line, "|")
	return Normalize(field)
}

func firstNonEmptyLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

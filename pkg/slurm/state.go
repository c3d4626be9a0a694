package slurm

import "strings"

// State is a Slurm-reported job state. Known values get constants below;
// anything else passes through verbatim so callers can decide how to treat
// states this package has never heard of.
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
	StateCancelled State = "CANCELLED"
	StateTimeout   State = "TIMEOUT"
	StateNodeFail  State = "NODE_FAIL"
	StatePreempted State = "PREEMPTED"
	StateOOM       State = "OUT_OF_MEMORY"
	StateUnknown   State = "UNKNOWN"
)

// abnormalTerminal is the set of recognized terminal-non-success states.
var abnormalTerminal = map[State]bool{
	StateFailed:    true,
	StateCancelled: true,
	StateTimeout:   true,
	StateNodeFail:  true,
	StatePreempted: true,
	StateOOM:       true,
}

// Normalize upper-cases and trims a raw state token. sacct suffixes some
// states ("CANCELLED by 1000", "FAILED+"); the first whitespace-delimited
// token with trailing '+' stripped is the canonical value.
func Normalize(raw string) State {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "+")
	if s == "" {
		return StateUnknown
	}
	return State(s)
}

// Terminal reports whether no further transition can occur from s.
func (s State) Terminal() bool {
	return s == StateCompleted || abnormalTerminal[s]
}

// AbnormalTerminal reports whether s is a recognized terminal failure.
func (s State) AbnormalTerminal() bool {
	return abnormalTerminal[s]
}

func (s State) String() string {
	return string(s)
}

// Package remind decides which candidates are due for a start-date reminder
// and dispatches it exactly once.
//
// Per-candidate state graph:
//
//	PENDING ──► DUE ──► SENT
//	    ▲        │
//	    └────────┘  (no recipient or send failure: retried next cycle)
//
// DUE is computed at evaluation time and never persisted; SENT is terminal.
package remind

import (
	"fmt"
	"time"

	"github.com/beluccky/candidate-bot/internal/model"
)

// State of a candidate in the reminder lifecycle.
type State string

const (
	StatePending State = "PENDING"
	StateDue     State = "DUE"
	StateSent    State = "SENT"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[State][]State{
	StatePending: {StateDue},
	StateDue:     {StateSent, StatePending},
	// SENT is terminal — no outgoing transitions
}

// ParseState converts a raw string to a State, returning an error for
// unknown values.
func ParseState(s string) (State, error) {
	st := State(s)
	switch st {
	case StatePending, StateDue, StateSent:
		return st, nil
	}
	return "", fmt.Errorf("unknown reminder state %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Evaluate computes a candidate's state at the given moment. A pending
// candidate is DUE only when its start date is exactly tomorrow: not today,
// not the day after. A zero start date is never due (fail closed).
func Evaluate(c model.Candidate, now time.Time) State {
	if c.ReminderSent {
		return StateSent
	}
	if c.StartDate.IsZero() {
		return StatePending
	}
	if sameDay(c.StartDate, now.AddDate(0, 0, 1)) {
		return StateDue
	}
	return StatePending
}

// sameDay compares calendar days, ignoring time of day and zone offsets held
// in the values themselves.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

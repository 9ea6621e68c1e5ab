// Package kanban defines the status state machine for job applications.
//
// Valid status graph:
//
//	APPLIED ──► OA ──► INTERVIEW ──► OFFER
//	   │         │         ▲  │
//	   ├─────────┼─────────┘  │
//	   └─────────┴────────────┴──► REJECTED
//
// OFFER and REJECTED are terminal states.
package kanban

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusApplied   Status = "APPLIED"
	StatusOA        Status = "OA"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusRejected  Status = "REJECTED"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusApplied:   {StatusOA, StatusInterview, StatusRejected},
	StatusOA:        {StatusInterview, StatusRejected},
	StatusInterview: {StatusOffer, StatusRejected},
	// OFFER and REJECTED are terminal: no outgoing transitions
}

// AllStatuses returns every status in pipeline order.
func AllStatuses() []Status {
	return []Status{StatusApplied, StatusOA, StatusInterview, StatusOffer, StatusRejected}
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusApplied, StatusOA, StatusInterview, StatusOffer, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine. A self-transition is never "allowed" here; the coordinator
// handles it as a no-op before consulting the table.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true when no transition leaves s.
func IsTerminal(s Status) bool { return len(validTransitions[s]) == 0 }

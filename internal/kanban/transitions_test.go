package kanban_test

import (
	"testing"

	"github.com/gustavobragaia/job-application/internal/kanban"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"APPLIED", "OA", "INTERVIEW", "OFFER", "REJECTED"}
	for _, s := range valid {
		got, err := kanban.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "", "HIRED", "TO_APPLY"} {
		if _, err := kanban.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed: the full table ──────────────────────────────────

func TestIsTransitionAllowed_Table(t *testing.T) {
	allowed := make(map[[2]kanban.Status]bool)
	for _, pair := range [][2]kanban.Status{
		{kanban.StatusApplied, kanban.StatusOA},
		{kanban.StatusApplied, kanban.StatusInterview},
		{kanban.StatusApplied, kanban.StatusRejected},
		{kanban.StatusOA, kanban.StatusInterview},
		{kanban.StatusOA, kanban.StatusRejected},
		{kanban.StatusInterview, kanban.StatusOffer},
		{kanban.StatusInterview, kanban.StatusRejected},
	} {
		allowed[pair] = true
	}
	for _, from := range kanban.AllStatuses() {
		for _, to := range kanban.AllStatuses() {
			want := allowed[[2]kanban.Status{from, to}]
			if got := kanban.IsTransitionAllowed(from, to); got != want {
				t.Errorf("IsTransitionAllowed(%s → %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

// ── IsTransitionAllowed: terminal states have no outgoing transitions ─────

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []kanban.Status{kanban.StatusOffer, kanban.StatusRejected}
	for _, from := range terminals {
		for _, to := range kanban.AllStatuses() {
			if kanban.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

// ── IsTransitionAllowed: backwards movements are forbidden ───────────────

func TestIsTransitionAllowed_Backwards(t *testing.T) {
	cases := []struct {
		from kanban.Status
		to   kanban.Status
	}{
		{kanban.StatusOA, kanban.StatusApplied},
		{kanban.StatusInterview, kanban.StatusOA},
		{kanban.StatusInterview, kanban.StatusApplied},
		{kanban.StatusOffer, kanban.StatusInterview},
		{kanban.StatusRejected, kanban.StatusApplied},
	}
	for _, c := range cases {
		if kanban.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (backwards)", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed: self-transitions are not part of the table ──────

func TestIsTransitionAllowed_Self(t *testing.T) {
	for _, s := range kanban.AllStatuses() {
		if kanban.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// ── IsTerminal ─────────────────────────────────────────────────────────────

func TestIsTerminal(t *testing.T) {
	want := map[kanban.Status]bool{
		kanban.StatusApplied:   false,
		kanban.StatusOA:        false,
		kanban.StatusInterview: false,
		kanban.StatusOffer:     true,
		kanban.StatusRejected:  true,
	}
	for s, w := range want {
		if got := kanban.IsTerminal(s); got != w {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, w)
		}
	}
}

package hiring_test

import (
	"testing"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{
		"applied", "viewed", "shortlisted",
		"interview_requested", "interview_accepted", "interview_declined",
		"hire_request_sent", "hired", "hire_declined",
		"completed", "cancelled", "rejected", "withdrawn",
	}
	for _, s := range valid {
		got, err := hiring.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	_, err := hiring.ParseStatus("HIRED")
	if err == nil {
		t.Error("ParseStatus(\"HIRED\") expected error, got nil")
	}
}

func TestParseStatus_EmptyString(t *testing.T) {
	_, err := hiring.ParseStatus("")
	if err == nil {
		t.Error("ParseStatus(\"\") expected error, got nil")
	}
}

// ── IsTransitionAllowed — valid (forward) transitions ─────────────────────

func TestIsTransitionAllowed_ValidForward(t *testing.T) {
	cases := []struct {
		from hiring.Status
		to   hiring.Status
	}{
		{hiring.StatusApplied, hiring.StatusViewed},
		{hiring.StatusViewed, hiring.StatusShortlisted},
		{hiring.StatusShortlisted, hiring.StatusInterviewRequested},
		{hiring.StatusInterviewRequested, hiring.StatusInterviewAccepted},
		{hiring.StatusInterviewAccepted, hiring.StatusHireRequestSent},
		{hiring.StatusHireRequestSent, hiring.StatusHired},
		{hiring.StatusHired, hiring.StatusCompleted},
	}
	for _, c := range cases {
		if !hiring.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── Instant hire: company may send a hire request without interviewing ─────

func TestIsTransitionAllowed_InstantHire(t *testing.T) {
	for _, from := range []hiring.Status{
		hiring.StatusApplied,
		hiring.StatusViewed,
		hiring.StatusShortlisted,
	} {
		if !hiring.IsTransitionAllowed(from, hiring.StatusHireRequestSent) {
			t.Errorf("IsTransitionAllowed(%s → hire_request_sent) should be true", from)
		}
	}
}

// ── Rejection and withdrawal allowed from every live pre-hire status ──────

func TestIsTransitionAllowed_RejectWithdraw(t *testing.T) {
	live := []hiring.Status{
		hiring.StatusApplied,
		hiring.StatusViewed,
		hiring.StatusShortlisted,
		hiring.StatusInterviewRequested,
		hiring.StatusInterviewAccepted,
		hiring.StatusInterviewDeclined,
		hiring.StatusHireRequestSent,
		hiring.StatusHireDeclined,
	}
	for _, from := range live {
		if !hiring.IsTransitionAllowed(from, hiring.StatusRejected) {
			t.Errorf("IsTransitionAllowed(%s → rejected) should be true", from)
		}
		if !hiring.IsTransitionAllowed(from, hiring.StatusWithdrawn) {
			t.Errorf("IsTransitionAllowed(%s → withdrawn) should be true", from)
		}
	}
}

// ── Declined hire requests may be re-offered ───────────────────────────────

func TestIsTransitionAllowed_ReOffer(t *testing.T) {
	if !hiring.IsTransitionAllowed(hiring.StatusHireDeclined, hiring.StatusHireRequestSent) {
		t.Error("IsTransitionAllowed(hire_declined → hire_request_sent) should be true")
	}
	if !hiring.IsTransitionAllowed(hiring.StatusInterviewDeclined, hiring.StatusInterviewRequested) {
		t.Error("IsTransitionAllowed(interview_declined → interview_requested) should be true")
	}
}

// ── Invalid transitions ────────────────────────────────────────────────────

func TestIsTransitionAllowed_Backwards(t *testing.T) {
	cases := []struct {
		from hiring.Status
		to   hiring.Status
	}{
		{hiring.StatusViewed, hiring.StatusApplied},
		{hiring.StatusShortlisted, hiring.StatusViewed},
		{hiring.StatusHired, hiring.StatusHireRequestSent},
		{hiring.StatusHired, hiring.StatusApplied},
	}
	for _, c := range cases {
		if hiring.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_SkippingGates(t *testing.T) {
	cases := []struct {
		from hiring.Status
		to   hiring.Status
	}{
		{hiring.StatusApplied, hiring.StatusHired},
		{hiring.StatusApplied, hiring.StatusInterviewAccepted},
		{hiring.StatusShortlisted, hiring.StatusCompleted},
		{hiring.StatusInterviewRequested, hiring.StatusHired},
	}
	for _, c := range cases {
		if hiring.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_FromTerminals(t *testing.T) {
	terminals := []hiring.Status{
		hiring.StatusCompleted,
		hiring.StatusCancelled,
		hiring.StatusRejected,
		hiring.StatusWithdrawn,
	}
	all := []hiring.Status{
		hiring.StatusApplied, hiring.StatusViewed, hiring.StatusShortlisted,
		hiring.StatusInterviewRequested, hiring.StatusHireRequestSent,
		hiring.StatusHired, hiring.StatusCompleted,
	}
	for _, from := range terminals {
		for _, to := range all {
			if hiring.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal)", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_SelfTransition(t *testing.T) {
	for _, s := range []hiring.Status{
		hiring.StatusApplied, hiring.StatusViewed, hiring.StatusHired,
	} {
		if hiring.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", s, s)
		}
	}
}

// ── IsTerminal / IsHireMilestone ───────────────────────────────────────────

func TestIsTerminal(t *testing.T) {
	for _, s := range []hiring.Status{
		hiring.StatusCompleted, hiring.StatusCancelled,
		hiring.StatusRejected, hiring.StatusWithdrawn,
	} {
		if !hiring.IsTerminal(s) {
			t.Errorf("IsTerminal(%s) should be true", s)
		}
	}
	for _, s := range []hiring.Status{
		hiring.StatusApplied, hiring.StatusHired, hiring.StatusHireRequestSent,
	} {
		if hiring.IsTerminal(s) {
			t.Errorf("IsTerminal(%s) should be false", s)
		}
	}
}

func TestIsHireMilestone(t *testing.T) {
	for _, s := range []hiring.Status{
		hiring.StatusInterviewAccepted,
		hiring.StatusHireRequestSent,
		hiring.StatusHired,
	} {
		if !hiring.IsHireMilestone(s) {
			t.Errorf("IsHireMilestone(%s) should be true", s)
		}
	}
	if hiring.IsHireMilestone(hiring.StatusApplied) {
		t.Error("IsHireMilestone(applied) should be false")
	}
}

// ── AllowedFrom ────────────────────────────────────────────────────────────

func TestAllowedFrom_Terminal(t *testing.T) {
	if got := hiring.AllowedFrom(hiring.StatusRejected); len(got) != 0 {
		t.Errorf("AllowedFrom(rejected) = %v, want empty", got)
	}
}

func TestAllowedFrom_ReturnsCopy(t *testing.T) {
	first := hiring.AllowedFrom(hiring.StatusApplied)
	if len(first) == 0 {
		t.Fatal("AllowedFrom(applied) should not be empty")
	}
	first[0] = hiring.StatusCompleted
	second := hiring.AllowedFrom(hiring.StatusApplied)
	if second[0] == hiring.StatusCompleted {
		t.Error("AllowedFrom should return a copy, not the internal slice")
	}
}

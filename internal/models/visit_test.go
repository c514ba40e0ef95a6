package models

import "testing"

func TestIsValidVisitTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{VisitStatusPending, VisitStatusScheduled, true},
		{VisitStatusScheduled, VisitStatusCompleted, true},
		{VisitStatusScheduled, VisitStatusCancelled, true},
		{VisitStatusPending, VisitStatusCancelled, true},
		// Confirm on an already-scheduled visit re-enters scheduled
		{VisitStatusScheduled, VisitStatusScheduled, true},

		// Terminal states
		{VisitStatusCompleted, VisitStatusScheduled, false},
		{VisitStatusCompleted, VisitStatusCancelled, false},
		{VisitStatusCancelled, VisitStatusScheduled, false},
		{VisitStatusCancelled, VisitStatusCompleted, false},

		// Invalid
		{VisitStatusPending, VisitStatusCompleted, false},
		{"nonexistent", VisitStatusScheduled, false},
		{VisitStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidVisitTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidVisitTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestVisitActionSetIsClosed(t *testing.T) {
	for _, a := range []string{VisitActionConfirm, VisitActionCancel, VisitActionReschedule, VisitActionComplete} {
		if !IsValidVisitAction(a) {
			t.Errorf("action %q should be valid", a)
		}
	}
	for _, a := range []string{"approve", "reopen", "", "CONFIRM", "delete"} {
		if IsValidVisitAction(a) {
			t.Errorf("action %q should be rejected", a)
		}
	}
}

func TestAllVisitStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		VisitStatusPending, VisitStatusScheduled, VisitStatusConfirmed,
		VisitStatusCompleted, VisitStatusCancelled,
	}
	for _, status := range allStatuses {
		if _, ok := ValidVisitTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidVisitTransitions map", status)
		}
	}
}

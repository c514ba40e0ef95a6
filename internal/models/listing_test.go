package models

import "testing"

func TestIsValidListingTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Publication pipeline
		{ListingStatusDraft, ListingStatusInspectionPending, true},
		{ListingStatusInspectionPending, ListingStatusCataloguingPending, true},
		{ListingStatusCataloguingPending, ListingStatusActive, true},
		{ListingStatusActive, ListingStatusSold, true},
		{ListingStatusActive, ListingStatusOnHold, true},
		{ListingStatusOnHold, ListingStatusActive, true},
		{ListingStatusActive, ListingStatusDelisted, true},

		// Cannot skip the workflow
		{ListingStatusDraft, ListingStatusActive, false},
		{ListingStatusDraft, ListingStatusSold, false},
		{ListingStatusInspectionPending, ListingStatusActive, false},

		// Terminal states
		{ListingStatusSold, ListingStatusActive, false},
		{ListingStatusDelisted, ListingStatusActive, false},

		{"nonexistent", ListingStatusActive, false},
		{ListingStatusDraft, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidListingTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidListingTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalListingStatusesHaveNoTransitions(t *testing.T) {
	for _, status := range []string{ListingStatusSold, ListingStatusDelisted} {
		if transitions := ValidListingTransitions[status]; len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

package models

import "testing"

func TestIsValidOfferTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{OfferStatusPending, OfferStatusAccepted, true},
		{OfferStatusPending, OfferStatusRejected, true},
		{OfferStatusPending, OfferStatusCountered, true},
		{OfferStatusPending, OfferStatusExpired, true},

		// The chain is append-only: resolved offers never move again
		{OfferStatusAccepted, OfferStatusRejected, false},
		{OfferStatusRejected, OfferStatusAccepted, false},
		{OfferStatusCountered, OfferStatusPending, false},
		{OfferStatusExpired, OfferStatusAccepted, false},

		{"nonexistent", OfferStatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidOfferTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidOfferTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestLeadStatusEnum(t *testing.T) {
	for _, s := range LeadStatuses {
		if !IsValidLeadStatus(s) {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []string{"", "open", "NEW", "won"} {
		if IsValidLeadStatus(s) {
			t.Errorf("status %q should be rejected", s)
		}
	}
}

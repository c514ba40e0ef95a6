package rbac

import (
	"testing"

	"github.com/google/uuid"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		expected   bool
	}{
		{RoleAdmin, PermLeadDelete, true},
		{RoleAdmin, PermAuditRead, true},
		{RoleTeamLead, PermLeadAssign, true},
		{RoleTeamLead, PermLeadDelete, false},
		{RoleTeamLead, PermSellerLeadDelete, false},
		{RoleAgent, PermLeadUpdate, true},
		{RoleAgent, PermLeadAssign, false},
		{RoleAgent, PermListingUpdate, false},
		{RoleAgent, PermCatalogueReview, false},
		{RoleCoordinator, PermInspectionUpdate, true},
		{RoleCoordinator, PermLeadUpdate, false},
		{RoleCoordinator, PermOfferDecide, false},

		// Unknown/empty roles have nothing
		{"", PermLeadRead, false},
		{"superuser", PermLeadRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}

func TestEveryTablePermissionIsGranted(t *testing.T) {
	for role, perms := range RolePermissions {
		for _, p := range perms {
			if !HasPermission(role, p) {
				t.Errorf("HasPermission(%q, %q) = false for a permission in the table", role, p)
			}
		}
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	if !HasAnyPermission(RoleAgent, PermLeadAssign, PermLeadUpdate) {
		t.Error("agent should match at least one of assign/update")
	}
	if HasAnyPermission(RoleCoordinator, PermLeadUpdate, PermOfferDecide) {
		t.Error("coordinator should match none")
	}
	if !HasAllPermissions(RoleTeamLead, PermLeadRead, PermLeadAssign, PermAuditRead) {
		t.Error("team lead should hold all three")
	}
	if HasAllPermissions(RoleAgent, PermLeadRead, PermLeadAssign) {
		t.Error("agent lacks lead:assign")
	}
	if HasAnyPermission("unknown", PermLeadRead, PermAuditRead) {
		t.Error("unknown role should match nothing")
	}
}

func TestCanAccessResource(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	// Elevated roles bypass ownership entirely
	if !CanAccessResource(RoleAdmin, PermLeadUpdate, &other, me) {
		t.Error("admin should bypass ownership")
	}
	if !CanAccessResource(RoleTeamLead, PermLeadUpdate, &other, me) {
		t.Error("team lead should bypass ownership")
	}

	// Agents only touch their own resources
	if CanAccessResource(RoleAgent, PermLeadUpdate, &other, me) {
		t.Error("agent should not touch another agent's lead")
	}
	if !CanAccessResource(RoleAgent, PermLeadUpdate, &me, me) {
		t.Error("agent should touch own lead")
	}

	// Nil owner covers unassigned resources
	if !CanAccessResource(RoleAgent, PermLeadUpdate, nil, me) {
		t.Error("unowned resource should be accessible")
	}

	// Missing permission always loses, ownership or not
	if CanAccessResource(RoleCoordinator, PermLeadUpdate, &me, me) {
		t.Error("coordinator lacks lead:update even on owned resource")
	}
	if CanAccessResource("unknown", PermLeadRead, nil, me) {
		t.Error("unknown role should be denied")
	}
}

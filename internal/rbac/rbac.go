package rbac

import "github.com/google/uuid"

// Role constants
const (
	RoleAdmin       = "admin"
	RoleTeamLead    = "team_lead"
	RoleAgent       = "agent"
	RoleCoordinator = "coordinator"
)

// Permission constants
const (
	PermLeadRead   = "lead:read"
	PermLeadCreate = "lead:create"
	PermLeadUpdate = "lead:update"
	PermLeadAssign = "lead:assign"
	PermLeadDelete = "lead:delete"

	PermSellerLeadRead   = "seller_lead:read"
	PermSellerLeadCreate = "seller_lead:create"
	PermSellerLeadUpdate = "seller_lead:update"
	PermSellerLeadDelete = "seller_lead:delete"

	PermListingRead   = "listing:read"
	PermListingCreate = "listing:create"
	PermListingUpdate = "listing:update"

	PermVisitRead   = "visit:read"
	PermVisitCreate = "visit:create"
	PermVisitUpdate = "visit:update"

	PermOfferRead   = "offer:read"
	PermOfferCreate = "offer:create"
	PermOfferDecide = "offer:decide"

	PermInspectionUpdate = "inspection:update"
	PermCatalogueReview  = "catalogue:review"

	PermNoteWrite  = "note:write"
	PermMediaWrite = "media:write"
	PermTaskWrite  = "task:write"

	PermAuditRead = "audit:read"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermLeadRead, PermLeadCreate, PermLeadUpdate, PermLeadAssign, PermLeadDelete,
		PermSellerLeadRead, PermSellerLeadCreate, PermSellerLeadUpdate, PermSellerLeadDelete,
		PermListingRead, PermListingCreate, PermListingUpdate,
		PermVisitRead, PermVisitCreate, PermVisitUpdate,
		PermOfferRead, PermOfferCreate, PermOfferDecide,
		PermInspectionUpdate, PermCatalogueReview,
		PermNoteWrite, PermMediaWrite, PermTaskWrite,
		PermAuditRead,
	},
	RoleTeamLead: {
		PermLeadRead, PermLeadCreate, PermLeadUpdate, PermLeadAssign,
		PermSellerLeadRead, PermSellerLeadCreate, PermSellerLeadUpdate,
		PermListingRead, PermListingCreate, PermListingUpdate,
		PermVisitRead, PermVisitCreate, PermVisitUpdate,
		PermOfferRead, PermOfferCreate, PermOfferDecide,
		PermInspectionUpdate, PermCatalogueReview,
		PermNoteWrite, PermMediaWrite, PermTaskWrite,
		PermAuditRead,
		// Team lead CANNOT: PermLeadDelete, PermSellerLeadDelete
	},
	RoleAgent: {
		PermLeadRead, PermLeadCreate, PermLeadUpdate,
		PermSellerLeadRead, PermSellerLeadCreate, PermSellerLeadUpdate,
		PermListingRead,
		PermVisitRead, PermVisitCreate, PermVisitUpdate,
		PermOfferRead, PermOfferCreate, PermOfferDecide,
		PermNoteWrite, PermMediaWrite, PermTaskWrite,
	},
	RoleCoordinator: {
		PermLeadRead,
		PermListingRead, PermListingCreate, PermListingUpdate,
		PermVisitRead,
		PermInspectionUpdate, PermCatalogueReview,
		PermNoteWrite, PermMediaWrite, PermTaskWrite,
	},
}

// HasPermission checks if a role has a specific permission. Unknown roles
// have no permissions at all.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

func HasAnyPermission(role string, permissions ...string) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

func HasAllPermissions(role string, permissions ...string) bool {
	for _, p := range permissions {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// IsElevated reports whether the role bypasses ownership checks.
func IsElevated(role string) bool {
	return role == RoleAdmin || role == RoleTeamLead
}

// CanAccessResource combines the permission table with an ownership check.
// A nil owner means the resource is unowned (e.g. an unassigned lead), which
// any role holding the permission may touch.
func CanAccessResource(role, permission string, resourceOwnerID *uuid.UUID, currentUserID uuid.UUID) bool {
	if !HasPermission(role, permission) {
		return false
	}
	if IsElevated(role) {
		return true
	}
	if resourceOwnerID == nil {
		return true
	}
	return *resourceOwnerID == currentUserID
}

package authz

import "shiftops/internal/models"

// Capability is a single granted permission. Authorization checks test
// capability membership, never role-string equality, so the role taxonomy can
// grow without touching call sites.
type Capability string

const (
	CapManageWorkflows   Capability = "manage_workflows"
	CapApproveTransfers  Capability = "approve_transfers"
	CapEditCompletions   Capability = "edit_completions"
	CapManageProfiles    Capability = "manage_profiles"
	CapPostAnnouncements Capability = "post_announcements"
	CapViewReports       Capability = "view_reports"
)

var managerCaps = map[Capability]bool{
	CapManageWorkflows:   true,
	CapApproveTransfers:  true,
	CapEditCompletions:   true,
	CapPostAnnouncements: true,
	CapViewReports:       true,
}

var adminCaps = map[Capability]bool{
	CapManageWorkflows:   true,
	CapApproveTransfers:  true,
	CapEditCompletions:   true,
	CapManageProfiles:    true,
	CapPostAnnouncements: true,
	CapViewReports:       true,
}

// roleCaps maps each role to its capability set. Department-manager variants
// carry the same approval powers as a general manager.
var roleCaps = map[models.Role]map[Capability]bool{
	models.RoleEmployee:       {},
	models.RoleManager:        managerCaps,
	models.RoleKitchenManager: managerCaps,
	models.RoleFrontManager:   managerCaps,
	models.RoleAdmin:          adminCaps,
}

// Has reports whether the role grants the capability. Unknown roles grant
// nothing.
func Has(role models.Role, cap Capability) bool {
	caps, ok := roleCaps[role]
	if !ok {
		return false
	}
	return caps[cap]
}

// IsKnown reports whether the role exists in the taxonomy.
func IsKnown(role models.Role) bool {
	_, ok := roleCaps[role]
	return ok
}

// ManagerRoles lists the roles holding CapApproveTransfers, used by the
// transfer listing projection.
func ManagerRoles() []models.Role {
	var out []models.Role
	for role, caps := range roleCaps {
		if caps[CapApproveTransfers] {
			out = append(out, role)
		}
	}
	return out
}

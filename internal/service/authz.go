package service

import (
	"campusboard/internal/models"
)

// Operation names a guarded moderation capability. Each operation declares
// the role set allowed to perform it in one table instead of scattering role
// comparisons across handlers.
type Operation string

const (
	OpReviewSchool   Operation = "review_school"
	OpOverrideSchool Operation = "override_school"
	OpVoteGlobal     Operation = "vote_global"
	OpDevForce       Operation = "dev_force"
	OpManageToggles  Operation = "manage_toggles"
	OpManageUsers    Operation = "manage_users"
	OpReadAuditLog   Operation = "read_audit_log"
)

var allowedRoles = map[Operation][]models.Role{
	OpReviewSchool:   {models.RoleReviewer, models.RoleAdmin, models.RoleDev},
	OpOverrideSchool: {models.RoleAdmin, models.RoleDev},
	OpVoteGlobal:     {models.RoleGlobalReviewer, models.RoleAdmin, models.RoleDev},
	OpDevForce:       {models.RoleDev},
	OpManageToggles:  {models.RoleAdmin, models.RoleDev},
	OpManageUsers:    {models.RoleAdmin, models.RoleDev},
	OpReadAuditLog:   {models.RoleAdmin, models.RoleDev},
}

// Authorize checks that the principal's role may perform op.
func Authorize(principal models.Principal, op Operation) error {
	for _, role := range allowedRoles[op] {
		if principal.Role == role {
			return nil
		}
	}
	return models.NewForbiddenError(models.CodeForbidden,
		"Your role does not permit this action")
}

// Can reports whether the principal's role may perform op.
func Can(principal models.Principal, op Operation) bool {
	return Authorize(principal, op) == nil
}

// Package policy decides what each staff role may do.
//
// Decisions are pure functions of the role and are recomputed on every
// request from the stored user record, never from token claims.
package policy

import (
	"fmt"

	"github.com/greencampus/facility-reports/database/models"
)

// Action an operation subject to authorization
type Action string

const (
	SubmitWaste    Action = "submit:waste"
	SubmitResource Action = "submit:resource"
	SubmitSpace    Action = "submit:space"
	ReadWaste      Action = "read:waste"
	ReadResource   Action = "read:resource"
	ReadSpace      Action = "read:space"
	ReadDashboard  Action = "read:dashboard"
)

// Actions lists every action
var Actions = []Action{
	SubmitWaste, SubmitResource, SubmitSpace,
	ReadWaste, ReadResource, ReadSpace,
	ReadDashboard,
}

// Scope limits which entries a read returns
type Scope int

const (
	ScopeOwn Scope = iota
	ScopeAll
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "own"
}

var management = map[models.Role]bool{
	models.RolePrincipal:          true,
	models.RoleManagementStaff:    true,
	models.RoleDeputyPrincipal:    true,
	models.RoleAssistantPrincipal: true,
	models.RoleSectionHead:        true,
}

// IsManagement reports membership in the management set
func IsManagement(role models.Role) bool {
	return management[role]
}

// Allowed reports whether role may perform action
func Allowed(role models.Role, action Action) bool {
	if !role.Valid() {
		return false
	}
	switch action {
	case SubmitWaste, SubmitSpace:
		return role != models.RoleWorker && !IsManagement(role)
	case SubmitResource:
		return !IsManagement(role)
	case ReadWaste, ReadResource, ReadSpace:
		return true
	case ReadDashboard:
		return IsManagement(role)
	default:
		return false
	}
}

// ScopeFor returns the read scope of role
func ScopeFor(role models.Role) Scope {
	if IsManagement(role) {
		return ScopeAll
	}
	return ScopeOwn
}

// DenyMessage client-facing reason for a refused action
func DenyMessage(role models.Role, action Action) string {
	switch action {
	case SubmitWaste:
		return fmt.Sprintf("%s users are not allowed to submit waste entries", role)
	case SubmitResource:
		return fmt.Sprintf("%s users are not allowed to submit resource reports", role)
	case SubmitSpace:
		return fmt.Sprintf("%s users are not allowed to submit unused space reports", role)
	case ReadDashboard:
		return "Access denied"
	default:
		return "You are not allowed to perform this action"
	}
}

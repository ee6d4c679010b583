package models

// Role is a staff role stored on the user record.
type Role string

const (
	RolePrincipal          Role = "Principal"
	RoleManagementStaff    Role = "Management Staff"
	RoleDeputyPrincipal    Role = "Deputy Principal"
	RoleAssistantPrincipal Role = "Assistant Principal"
	RoleSectionHead        Role = "Section Head"
	RoleNonAcademicStaff   Role = "Non-Academic Staff"
	RoleClassTeacher       Role = "Class Teacher"
	RoleWorker             Role = "Worker"
)

// AllRoles in registration-form order
var AllRoles = []Role{
	RolePrincipal,
	RoleManagementStaff,
	RoleDeputyPrincipal,
	RoleAssistantPrincipal,
	RoleNonAcademicStaff,
	RoleClassTeacher,
	RoleSectionHead,
	RoleWorker,
}

// Valid reports whether r is one of the fixed roles
func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

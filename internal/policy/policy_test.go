package policy

import (
	"strings"
	"testing"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/stretchr/testify/assert"
)

func TestAllowed_Table(t *testing.T) {
	type row struct {
		waste, resource, space, read, dashboard bool
		scope                                   Scope
	}
	manager := row{false, false, false, true, true, ScopeAll}
	expected := map[models.Role]row{
		models.RolePrincipal:          manager,
		models.RoleManagementStaff:    manager,
		models.RoleDeputyPrincipal:    manager,
		models.RoleAssistantPrincipal: manager,
		models.RoleSectionHead:        manager,
		models.RoleClassTeacher:       {true, true, true, true, false, ScopeOwn},
		models.RoleNonAcademicStaff:   {true, true, true, true, false, ScopeOwn},
		models.RoleWorker:             {false, true, false, true, false, ScopeOwn},
	}
	assert.Len(t, expected, len(models.AllRoles))

	for role, want := range expected {
		t.Run(string(role), func(t *testing.T) {
			assert.Equal(t, want.waste, Allowed(role, SubmitWaste))
			assert.Equal(t, want.resource, Allowed(role, SubmitResource))
			assert.Equal(t, want.space, Allowed(role, SubmitSpace))
			assert.Equal(t, want.read, Allowed(role, ReadWaste))
			assert.Equal(t, want.read, Allowed(role, ReadResource))
			assert.Equal(t, want.read, Allowed(role, ReadSpace))
			assert.Equal(t, want.dashboard, Allowed(role, ReadDashboard))
			assert.Equal(t, want.scope, ScopeFor(role))
		})
	}
}

func TestAllowed_UnknownRoleDenied(t *testing.T) {
	for _, action := range Actions {
		assert.False(t, Allowed(models.Role("Janitor"), action), action)
		assert.False(t, Allowed(models.Role(""), action), action)
	}
	assert.Equal(t, ScopeOwn, ScopeFor(models.Role("admin")))
}

func TestAllowed_UnknownActionDenied(t *testing.T) {
	assert.False(t, Allowed(models.RolePrincipal, Action("delete:everything")))
}

func TestDenyMessage_SubmitMentionsNotAllowed(t *testing.T) {
	for _, action := range []Action{SubmitWaste, SubmitResource, SubmitSpace} {
		msg := DenyMessage(models.RoleWorker, action)
		assert.True(t, strings.Contains(msg, "not allowed"), msg)
	}
	assert.Equal(t, "Access denied", DenyMessage(models.RoleClassTeacher, ReadDashboard))
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "all", ScopeAll.String())
	assert.Equal(t, "own", ScopeOwn.String())
}

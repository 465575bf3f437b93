package rbac

import (
	"testing"

	"go-eduhr/internal/domain"
	"go-eduhr/internal/rbac/infra"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)

	svc, err := NewService(enforcer)
	assert.NoError(t, err)
	return svc
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		role     string
		resource string
		action   string
		want     bool
	}{
		{"teacher applies leave", domain.RoleTeacher, domain.ResourceLeave, domain.ActionCreate, true},
		{"hr applies leave", domain.RoleHR, domain.ResourceLeave, domain.ActionCreate, true},
		{"admin does not apply leave", domain.RoleAdmin, domain.ResourceLeave, domain.ActionCreate, false},
		{"content creator cannot read leaves", domain.RoleContentCreator, domain.ResourceLeave, domain.ActionRead, false},
		{"hr marks attendance", domain.RoleHR, domain.ResourceAttendance, domain.ActionCreate, true},
		{"teacher cannot mark attendance", domain.RoleTeacher, domain.ResourceAttendance, domain.ActionCreate, false},
		{"teacher reads holidays", domain.RoleTeacher, domain.ResourceHoliday, domain.ActionRead, true},
		{"teacher cannot create holidays", domain.RoleTeacher, domain.ResourceHoliday, domain.ActionCreate, false},
		{"only admin creates users", domain.RoleHR, domain.ResourceUser, domain.ActionCreate, false},
		{"unknown role", "STUDENT", domain.ResourceLeaveType, domain.ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{Role: tt.role, Resource: tt.resource, Action: tt.action})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestRBACService_Policies(t *testing.T) {
	svc := newTestService(t)

	rules, err := svc.Policies()
	assert.NoError(t, err)
	assert.Len(t, rules, len(policyRows(DefaultPermissions)))
	assert.Contains(t, rules, domain.PolicyRule{Role: domain.RoleAdmin, Resource: domain.ResourceRBAC, Action: domain.ActionRead})
}

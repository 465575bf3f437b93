package rbac

import "go-eduhr/internal/domain"

var (
	everyone  = []string{domain.RoleAdmin, domain.RoleHR, domain.RoleTeacher, domain.RoleContentCreator}
	staff     = []string{domain.RoleAdmin, domain.RoleHR}
	applicant = []string{domain.RoleTeacher, domain.RoleHR}
	leaveUser = []string{domain.RoleAdmin, domain.RoleHR, domain.RoleTeacher}
)

type permission struct {
	resource string
	action   string
	roles    []string
}

// DefaultPermissions is the route guard table. Finer checks that depend on
// the target row (ownership, applicant role) live in the services.
var DefaultPermissions = []permission{
	{domain.ResourceLeave, domain.ActionCreate, applicant},
	{domain.ResourceLeave, domain.ActionRead, leaveUser},
	{domain.ResourceLeave, domain.ActionUpdate, leaveUser},
	{domain.ResourceLeave, domain.ActionDecide, leaveUser},
	{domain.ResourceLeaveBalance, domain.ActionRead, leaveUser},
	{domain.ResourceLeaveBalance, domain.ActionReadAll, staff},

	{domain.ResourceLeaveType, domain.ActionRead, everyone},
	{domain.ResourceLeaveType, domain.ActionCreate, staff},
	{domain.ResourceLeaveType, domain.ActionUpdate, staff},
	{domain.ResourceLeaveType, domain.ActionDelete, staff},

	{domain.ResourceHoliday, domain.ActionRead, everyone},
	{domain.ResourceHoliday, domain.ActionCreate, staff},
	{domain.ResourceHoliday, domain.ActionDelete, staff},

	{domain.ResourceAttendance, domain.ActionRead, staff},
	{domain.ResourceAttendance, domain.ActionCreate, staff},

	{domain.ResourceUser, domain.ActionRead, staff},
	{domain.ResourceUser, domain.ActionCreate, []string{domain.RoleAdmin}},
	{domain.ResourceUser, domain.ActionUpdate, []string{domain.RoleAdmin}},

	{domain.ResourceRBAC, domain.ActionRead, []string{domain.RoleAdmin}},
}

func policyRows(perms []permission) [][]string {
	rows := make([][]string, 0, len(perms)*2)
	for _, p := range perms {
		for _, role := range p.roles {
			rows = append(rows, []string{role, p.resource, p.action})
		}
	}
	return rows
}

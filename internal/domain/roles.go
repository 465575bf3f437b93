package domain

const (
	RoleAdmin          = "ADMIN"
	RoleHR             = "HR"
	RoleTeacher        = "TEACHER"
	RoleContentCreator = "CONTENT_CREATOR"
)

const (
	ResourceLeave        = "leave"
	ResourceLeaveBalance = "leave_balance"
	ResourceLeaveType    = "leave_type"
	ResourceHoliday      = "holiday"
	ResourceAttendance   = "attendance"
	ResourceUser         = "user"
	ResourceRBAC         = "rbac"
)

const (
	ActionRead    = "read"
	ActionReadAll = "read_all"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionDecide  = "decide"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHR, RoleTeacher, RoleContentCreator:
		return true
	}
	return false
}

// CanDecideLeave reports whether actorRole may approve, reject or cancel
// a request filed under applicantRole. HR-filed requests are ADMIN-only.
func CanDecideLeave(actorRole, applicantRole string) bool {
	switch actorRole {
	case RoleAdmin:
		return true
	case RoleHR:
		return applicantRole == RoleTeacher
	}
	return false
}

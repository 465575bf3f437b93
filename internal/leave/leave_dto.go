package leave

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Reason      string `json:"reason" binding:"max=1000"`
}

type LeaveActionRequest struct {
	LeaveID string `json:"leave_id" binding:"required,uuid"`
	Action  string `json:"action" binding:"required"`
}

// EditLeaveRequest accepts days for compatibility with older clients.
// The stored value is always recomputed from the dates.
type EditLeaveRequest struct {
	LeaveID   string `json:"leave_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Days      *int   `json:"days"`
}

type ListQuery struct {
	Role   string
	Status string
	UserID string
	Mine   bool
}

type LeaveResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	LeaveTypeID string  `json:"leave_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Days        int     `json:"days"`
	Status      string  `json:"status"`
	Reason      string  `json:"reason"`
	Role        string  `json:"role"`
	ActionedBy  *string `json:"actioned_by,omitempty"`
	ActionedAt  *string `json:"actioned_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type BalanceResponse struct {
	LeaveTypeID   string `json:"leave_type_id"`
	LeaveTypeName string `json:"leave_type_name"`
	Limit         int    `json:"limit"`
	Used          int    `json:"used"`
	Remaining     int    `json:"remaining"`
}

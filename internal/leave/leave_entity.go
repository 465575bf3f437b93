package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
	ActionCancel  = "CANCEL"
)

type LeaveRequest struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_leave_requests_user_dates,priority:1"`
	LeaveTypeID uuid.UUID  `gorm:"column:leave_type_id;type:uuid;not null;index"`
	StartDate   time.Time  `gorm:"column:start_date;type:date;not null;index:idx_leave_requests_user_dates,priority:2"`
	EndDate     time.Time  `gorm:"column:end_date;type:date;not null;index:idx_leave_requests_user_dates,priority:3"`
	Days        int        `gorm:"column:days;not null"`
	Status      string     `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_role_status,priority:2"`
	Reason      string     `gorm:"column:reason;type:text"`
	Role        string     `gorm:"column:role;type:varchar(32);not null;index:idx_leave_requests_role_status,priority:1"`
	ActionedBy  *uuid.UUID `gorm:"column:actioned_by;type:uuid"`
	ActionedAt  *time.Time `gorm:"column:actioned_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// LeaveBalance tracks one user's allotment of one leave type.
// Used + Remaining equals the type's limit after every committed change.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_leave_balance_user_type,priority:1"`
	LeaveTypeID uuid.UUID `gorm:"column:leave_type_id;type:uuid;not null;uniqueIndex:uq_leave_balance_user_type,priority:2"`
	Used        int       `gorm:"column:used;not null;default:0"`
	Remaining   int       `gorm:"column:remaining;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// BalanceView is a balance joined with its leave type.
type BalanceView struct {
	LeaveTypeID   uuid.UUID `gorm:"column:leave_type_id"`
	LeaveTypeName string    `gorm:"column:leave_type_name"`
	AnnualLimit   int       `gorm:"column:annual_limit"`
	Used          int       `gorm:"column:used"`
	Remaining     int       `gorm:"column:remaining"`
}

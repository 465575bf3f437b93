package leave

import (
	"context"
	"errors"
	"time"

	"go-eduhr/internal/leavetype"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBalanceConflict is returned when a conditional balance update matched no
// row because the balance no longer satisfies the guard.
var ErrBalanceConflict = errors.New("leave balance guard not satisfied")

type ListFilter struct {
	UserID string
	Role   string
	Status string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLeaveType(ctx context.Context, id string) (*leavetype.LeaveType, error)
	HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)
	EnsureBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, limit int) (*LeaveBalance, error)
	ConsumeBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, days int) error
	RestoreBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, days int) error
	ListBalances(ctx context.Context, userID string) ([]BalanceView, error)
	Create(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	Update(ctx context.Context, r *LeaveRequest) error
	List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindLeaveType(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	var lt leavetype.LeaveType
	if err := r.db.WithContext(ctx).First(&lt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lt, nil
}

// HasOverlap reports whether the user already holds a live request touching
// [start, end]. Rejected and cancelled requests never block.
func (r *repository) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []string{StatusRejected, StatusCancelled}).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// EnsureBalance creates a full balance when none exists, then returns the row
// locked for the rest of the transaction.
func (r *repository) EnsureBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, limit int) (*LeaveBalance, error) {
	seed := LeaveBalance{
		ID:          uuid.New(),
		UserID:      userID,
		LeaveTypeID: leaveTypeID,
		Used:        0,
		Remaining:   limit,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "leave_type_id"}},
			DoNothing: true,
		}).
		Create(&seed).Error
	if err != nil {
		return nil, err
	}

	var b LeaveBalance
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND leave_type_id = ?", userID, leaveTypeID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ConsumeBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, days int) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("user_id = ? AND leave_type_id = ? AND remaining >= ?", userID, leaveTypeID, days).
		Updates(map[string]any{
			"used":      gorm.Expr("used + ?", days),
			"remaining": gorm.Expr("remaining - ?", days),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBalanceConflict
	}
	return nil
}

func (r *repository) RestoreBalance(ctx context.Context, userID, leaveTypeID uuid.UUID, days int) error {
	res := r.db.WithContext(ctx).
		Model(&LeaveBalance{}).
		Where("user_id = ? AND leave_type_id = ? AND used >= ?", userID, leaveTypeID, days).
		Updates(map[string]any{
			"used":      gorm.Expr("used - ?", days),
			"remaining": gorm.Expr("remaining + ?", days),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBalanceConflict
	}
	return nil
}

func (r *repository) ListBalances(ctx context.Context, userID string) ([]BalanceView, error) {
	var views []BalanceView
	err := r.db.WithContext(ctx).
		Table("leave_balances AS lb").
		Select("lb.leave_type_id, lt.name AS leave_type_name, lt.annual_limit, lb.used, lb.remaining").
		Joins("JOIN leave_types lt ON lt.id = lb.leave_type_id").
		Where("lb.user_id = ?", userID).
		Order("lt.name ASC").
		Scan(&views).Error
	return views, err
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) Update(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).Order("start_date DESC, created_at DESC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var requests []LeaveRequest
	err := q.Find(&requests).Error
	return requests, err
}

package leavetype

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leavetype_repo.go -destination=mock/leavetype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lt *LeaveType) error
	FindAll(ctx context.Context) ([]LeaveType, error)
	FindByID(ctx context.Context, id string) (*LeaveType, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveType, error)
	Update(ctx context.Context, lt *LeaveType) error
	Delete(ctx context.Context, id string) error
	SeedBalances(ctx context.Context, leaveTypeID string, limit int) (int64, error)
	SeedBalancesForUser(ctx context.Context, userID string) (int64, error)
	RebaseBalances(ctx context.Context, leaveTypeID string, limit int) (int64, error)
	DeleteBalances(ctx context.Context, leaveTypeID string) (int64, error)
	DeleteRequests(ctx context.Context, leaveTypeID string) (int64, error)
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

func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).Create(lt).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveType, error) {
	var lt LeaveType
	if err := r.db.WithContext(ctx).First(&lt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&lt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	return r.db.WithContext(ctx).
		Model(&LeaveType{}).
		Where("id = ?", lt.ID).
		Updates(map[string]any{
			"name":         lt.Name,
			"annual_limit": lt.Limit,
			"description":  lt.Description,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&LeaveType{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SeedBalances opens a full balance of the new type for every active user.
func (r *repository) SeedBalances(ctx context.Context, leaveTypeID string, limit int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO leave_balances (id, user_id, leave_type_id, used, remaining, created_at, updated_at)
		SELECT gen_random_uuid(), u.id, ?, 0, ?, NOW(), NOW()
		FROM users u
		WHERE u.is_active = TRUE AND u.deleted_at IS NULL
		ON CONFLICT (user_id, leave_type_id) DO NOTHING`,
		leaveTypeID, limit,
	)
	return res.RowsAffected, res.Error
}

// SeedBalancesForUser opens a full balance of every existing type for one user.
func (r *repository) SeedBalancesForUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO leave_balances (id, user_id, leave_type_id, used, remaining, created_at, updated_at)
		SELECT gen_random_uuid(), ?, lt.id, 0, lt.annual_limit, NOW(), NOW()
		FROM leave_types lt
		ON CONFLICT (user_id, leave_type_id) DO NOTHING`,
		userID,
	)
	return res.RowsAffected, res.Error
}

// RebaseBalances re-derives remaining from the new limit and returns how many
// balances would go negative.
func (r *repository) RebaseBalances(ctx context.Context, leaveTypeID string, limit int) (int64, error) {
	err := r.db.WithContext(ctx).
		Table("leave_balances").
		Where("leave_type_id = ?", leaveTypeID).
		Updates(map[string]any{
			"remaining":  gorm.Expr("? - used", limit),
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	if err != nil {
		return 0, err
	}

	var overdrawn int64
	err = r.db.WithContext(ctx).
		Table("leave_balances").
		Where("leave_type_id = ? AND remaining < 0", leaveTypeID).
		Count(&overdrawn).Error
	return overdrawn, err
}

func (r *repository) DeleteBalances(ctx context.Context, leaveTypeID string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`DELETE FROM leave_balances WHERE leave_type_id = ?`, leaveTypeID)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteRequests(ctx context.Context, leaveTypeID string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`DELETE FROM leave_requests WHERE leave_type_id = ?`, leaveTypeID)
	return res.RowsAffected, res.Error
}

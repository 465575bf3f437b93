package attendance

import (
	"context"
	"time"

	"go-eduhr/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountActiveTeachers(ctx context.Context, ids []uuid.UUID) (int64, error)
	Upsert(ctx context.Context, rows []TeacherAttendance) error
	ListByDate(ctx context.Context, date time.Time) ([]AttendanceView, error)
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

func (r *repository) CountActiveTeachers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id IN ?", ids).
		Where("role = ?", domain.RoleTeacher).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count, err
}

// Upsert writes all rows in one statement keyed on (teacher_id, date).
func (r *repository) Upsert(ctx context.Context, rows []TeacherAttendance) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "teacher_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"forenoon", "afternoon", "marked_by", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]AttendanceView, error) {
	var views []AttendanceView
	err := r.db.WithContext(ctx).
		Table("teacher_attendances AS ta").
		Select("ta.teacher_id, u.name AS teacher_name, ta.date, ta.forenoon, ta.afternoon, ta.marked_by, ta.updated_at").
		Joins("JOIN users u ON u.id = ta.teacher_id").
		Where("ta.date = ?", date).
		Order("u.name ASC").
		Scan(&views).Error
	return views, err
}

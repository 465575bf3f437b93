package attendance

import (
	"time"

	"github.com/google/uuid"
)

type TeacherAttendance struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TeacherID uuid.UUID `gorm:"column:teacher_id;type:uuid;not null;uniqueIndex:uq_teacher_attendance_day,priority:1"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_teacher_attendance_day,priority:2;index"`
	Forenoon  bool      `gorm:"column:forenoon;not null;default:false"`
	Afternoon bool      `gorm:"column:afternoon;not null;default:false"`
	MarkedBy  uuid.UUID `gorm:"column:marked_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TeacherAttendance) TableName() string {
	return "teacher_attendances"
}

// AttendanceView is an attendance row joined with the teacher's name.
type AttendanceView struct {
	TeacherID   uuid.UUID `gorm:"column:teacher_id"`
	TeacherName string    `gorm:"column:teacher_name"`
	Date        time.Time `gorm:"column:date"`
	Forenoon    bool      `gorm:"column:forenoon"`
	Afternoon   bool      `gorm:"column:afternoon"`
	MarkedBy    uuid.UUID `gorm:"column:marked_by"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

package attendance

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	attendanceerrors "go-eduhr/internal/attendance/errors"
	"go-eduhr/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Postgres error codes that mean a concurrent writer got in the way.
const (
	pgUniqueViolation      = "23505"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	Sleep       Sleeper
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	BulkUpsert(ctx context.Context, markedBy string, req BulkAttendanceRequest) (BulkAttendanceResponse, error)
	ListByDate(ctx context.Context, date string) ([]AttendanceResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	retry  RetryConfig
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, retry RetryConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 5
	}
	if retry.BaseBackoff <= 0 {
		retry.BaseBackoff = 100 * time.Millisecond
	}
	if retry.Sleep == nil {
		retry.Sleep = sleepContext
	}
	return &service{db: db, repo: repo, retry: retry, logger: l}
}

func (s *service) BulkUpsert(ctx context.Context, markedBy string, req BulkAttendanceRequest) (BulkAttendanceResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(zap.String("date", req.Date))

	markerID, err := uuid.Parse(markedBy)
	if err != nil {
		return BulkAttendanceResponse{}, attendanceerrors.ErrInvalidActor
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return BulkAttendanceResponse{}, attendanceerrors.ErrInvalidDate
	}
	if len(req.Entries) == 0 {
		return BulkAttendanceResponse{}, attendanceerrors.ErrNoEntries
	}

	rows, err := buildRows(date, markerID, req.Entries)
	if err != nil {
		return BulkAttendanceResponse{}, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.TeacherID
	}
	active, err := s.repo.CountActiveTeachers(ctx, ids)
	if err != nil {
		l.Error("attendance teacher lookup failed", zap.Error(err))
		return BulkAttendanceResponse{}, err
	}
	if active != int64(len(ids)) {
		l.Warn("attendance references unknown teachers", zap.Int("requested", len(ids)), zap.Int64("active", active))
		return BulkAttendanceResponse{}, attendanceerrors.ErrUnknownTeachers
	}

	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).Upsert(ctx, rows)
		})
		if err == nil {
			l.Info("attendance saved", zap.Int("rows", len(rows)), zap.Int("attempts", attempt+1))
			return BulkAttendanceResponse{Date: req.Date, Count: len(rows), Attempts: attempt + 1}, nil
		}
		if !isRetryable(err) {
			l.Error("attendance upsert failed", zap.Int("attempt", attempt+1), zap.Error(err))
			return BulkAttendanceResponse{}, err
		}
		if attempt == s.retry.MaxAttempts-1 {
			break
		}

		delay := s.retry.BaseBackoff << attempt
		l.Warn("attendance upsert contended, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if sleepErr := s.retry.Sleep(ctx, delay); sleepErr != nil {
			return BulkAttendanceResponse{}, sleepErr
		}
	}

	l.Error("attendance upsert gave up", zap.Int("attempts", s.retry.MaxAttempts), zap.Error(err))
	return BulkAttendanceResponse{}, attendanceerrors.ErrAttendanceContention
}

func (s *service) ListByDate(ctx context.Context, date string) ([]AttendanceResponse, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDate
	}

	views, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	resp := make([]AttendanceResponse, len(views))
	for i, v := range views {
		resp[i] = AttendanceResponse{
			TeacherID:   v.TeacherID.String(),
			TeacherName: v.TeacherName,
			Date:        v.Date.Format(dateLayout),
			Forenoon:    v.Forenoon,
			Afternoon:   v.Afternoon,
			MarkedBy:    v.MarkedBy.String(),
			UpdatedAt:   v.UpdatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// buildRows collapses duplicate teachers (last entry wins) and orders rows by
// teacher ID so concurrent batches lock rows in the same order.
func buildRows(date time.Time, markedBy uuid.UUID, entries []AttendanceEntry) ([]TeacherAttendance, error) {
	byTeacher := make(map[uuid.UUID]AttendanceEntry, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(strings.TrimSpace(e.TeacherID))
		if err != nil {
			return nil, attendanceerrors.ErrInvalidTeacherID
		}
		byTeacher[id] = e
	}

	rows := make([]TeacherAttendance, 0, len(byTeacher))
	for id, e := range byTeacher {
		rows = append(rows, TeacherAttendance{
			ID:        uuid.New(),
			TeacherID: id,
			Date:      date,
			Forenoon:  e.Forenoon,
			Afternoon: e.Afternoon,
			MarkedBy:  markedBy,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TeacherID.String() < rows[j].TeacherID.String()
	})
	return rows, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgDeadlockDetected, pgSerializationFailure:
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package holiday

import (
	"context"
	"errors"
	"strings"
	"time"

	holidayerrors "go-eduhr/internal/holiday/errors"
	"go-eduhr/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context, year int) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	calendar *Calendar
	logger   *zap.Logger
}

func NewService(repo Repository, calendar *Calendar, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{repo: repo, calendar: calendar, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	date, err := time.Parse(dateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidDate
	}

	h := &Holiday{
		ID:   uuid.New(),
		Date: date,
		Name: strings.TrimSpace(req.Name),
	}

	if err := s.repo.Create(ctx, h); err != nil {
		if isUniqueViolation(err) {
			l.Warn("holiday date already taken", zap.String("date", req.Date))
			return HolidayResponse{}, holidayerrors.ErrHolidayExists
		}
		l.Error("create holiday failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.invalidate(ctx, date.Year())
	l.Info("holiday created", zap.String("holiday_id", h.ID.String()), zap.String("date", req.Date))
	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context, year int) ([]HolidayResponse, error) {
	if year < 0 || year > 9999 {
		return nil, holidayerrors.ErrInvalidYear
	}

	holidays, err := s.repo.FindAll(ctx, year)
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return holidayerrors.ErrHolidayNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return holidayerrors.ErrHolidayNotFound
		}
		return err
	}

	s.invalidate(ctx, h.Date.Year())
	contextutil.GetLogger(ctx, s.logger).Info("holiday deleted", zap.String("holiday_id", id))
	return nil
}

func (s *service) invalidate(ctx context.Context, year int) {
	if s.calendar != nil {
		s.calendar.Invalidate(ctx, year)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:   h.ID.String(),
		Date: h.Date.Format(dateLayout),
		Name: h.Name,
	}
}

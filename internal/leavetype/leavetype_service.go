package leavetype

import (
	"context"
	"errors"
	"strings"
	"time"

	leavetypeerrors "go-eduhr/internal/leavetype/errors"
	"go-eduhr/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, id string) error
	SeedBalancesForUser(ctx context.Context, userID string) (int64, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	lt := &LeaveType{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Limit:       *req.Limit,
		Description: strings.TrimSpace(req.Description),
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return LeaveTypeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Create(ctx, lt); err != nil {
		l.Warn("create leave type failed", zap.String("name", lt.Name), zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	seeded, err := qtx.SeedBalances(ctx, lt.ID.String(), lt.Limit)
	if err != nil {
		l.Error("seed leave balances failed", zap.String("leave_type_id", lt.ID.String()), zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return LeaveTypeResponse{}, err
	}

	l.Info("leave type created",
		zap.String("leave_type_id", lt.ID.String()),
		zap.Int("limit", lt.Limit),
		zap.Int64("balances_seeded", seeded),
	)
	return mapToResponse(*lt), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveTypeResponse, len(types))
	for i, lt := range types {
		resp[i] = mapToResponse(lt)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	lt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*lt), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return LeaveTypeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	limitChanged := lt.Limit != *req.Limit
	lt.Name = strings.TrimSpace(req.Name)
	lt.Limit = *req.Limit
	lt.Description = strings.TrimSpace(req.Description)

	if err := qtx.Update(ctx, lt); err != nil {
		l.Warn("update leave type failed", zap.String("leave_type_id", id), zap.Error(err))
		return LeaveTypeResponse{}, mapRepositoryError(err)
	}

	if limitChanged {
		overdrawn, err := qtx.RebaseBalances(ctx, id, lt.Limit)
		if err != nil {
			l.Error("rebase leave balances failed", zap.String("leave_type_id", id), zap.Error(err))
			return LeaveTypeResponse{}, err
		}
		if overdrawn > 0 {
			l.Warn("leave type limit below usage",
				zap.String("leave_type_id", id),
				zap.Int("limit", lt.Limit),
				zap.Int64("overdrawn_balances", overdrawn),
			)
			return LeaveTypeResponse{}, leavetypeerrors.ErrLimitBelowUsage
		}
	}

	if err := tx.Commit().Error; err != nil {
		return LeaveTypeResponse{}, err
	}

	l.Info("leave type updated", zap.String("leave_type_id", id), zap.Bool("limit_changed", limitChanged))
	return mapToResponse(*lt), nil
}

// Delete removes the type together with its balances and requests.
func (s *service) Delete(ctx context.Context, id string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return leavetypeerrors.ErrInvalidLeaveTypeID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByIDForUpdate(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	balances, err := qtx.DeleteBalances(ctx, id)
	if err != nil {
		return err
	}
	requests, err := qtx.DeleteRequests(ctx, id)
	if err != nil {
		return err
	}
	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	l.Info("leave type deleted",
		zap.String("leave_type_id", id),
		zap.Int64("balances_deleted", balances),
		zap.Int64("requests_deleted", requests),
	)
	return nil
}

func (s *service) SeedBalancesForUser(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, leavetypeerrors.ErrInvalidUserID
	}

	seeded, err := s.repo.SeedBalancesForUser(ctx, userID)
	if err != nil {
		s.logger.Error("seed balances for user failed", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	s.logger.Info("balances seeded for user", zap.String("user_id", userID), zap.Int64("count", seeded))
	return seeded, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavetypeerrors.ErrLeaveTypeNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return leavetypeerrors.ErrLeaveTypeExists
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_leave_types_name" {
		return leavetypeerrors.ErrLeaveTypeExists
	}
	return err
}

func mapToResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:          lt.ID.String(),
		Name:        lt.Name,
		Limit:       lt.Limit,
		Description: lt.Description,
		CreatedAt:   lt.CreatedAt.Format(time.RFC3339),
	}
}

package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-eduhr/internal/domain"
	"go-eduhr/internal/events"
	leaveerrors "go-eduhr/internal/leave/errors"
	"go-eduhr/internal/messaging/kafka"
	"go-eduhr/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of a leave operation.
type Actor struct {
	UserID string
	Role   string
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, actor Actor, req ApplyLeaveRequest) (LeaveResponse, error)
	Act(ctx context.Context, actor Actor, req LeaveActionRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	Edit(ctx context.Context, actor Actor, req EditLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, actor Actor, q ListQuery) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	MyBalances(ctx context.Context, actor Actor) ([]BalanceResponse, error)
	UserBalances(ctx context.Context, userID string) ([]BalanceResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	calendar HolidayCalendar
	outbox   kafka.OutboxRepository
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, calendar HolidayCalendar, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		calendar: calendar,
		outbox:   outbox,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Apply(ctx context.Context, actor Actor, req ApplyLeaveRequest) (LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("apply leave requested",
		zap.String("user_id", actor.UserID),
		zap.String("leave_type_id", req.LeaveTypeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	leaveTypeID, err := uuid.Parse(req.LeaveTypeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveTypeNotFound
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	days, err := s.workingDays(ctx, start, end)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		l.Error("apply leave begin tx failed", zap.Error(tx.Error))
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	lt, err := qtx.FindLeaveType(ctx, leaveTypeID.String())
	if err != nil {
		return LeaveResponse{}, mapLeaveTypeError(err)
	}

	overlap, err := qtx.HasOverlap(ctx, actor.UserID, start, end, "")
	if err != nil {
		l.Error("apply leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		l.Warn("apply leave overlap detected", zap.String("user_id", actor.UserID))
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	if days <= 0 {
		return LeaveResponse{}, leaveerrors.ErrNoWorkingDays
	}

	balance, err := qtx.EnsureBalance(ctx, userID, leaveTypeID, lt.Limit)
	if err != nil {
		l.Error("apply leave balance lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if days > balance.Remaining {
		l.Warn("apply leave insufficient balance",
			zap.String("user_id", actor.UserID),
			zap.Int("days", days),
			zap.Int("remaining", balance.Remaining),
		)
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	r := &LeaveRequest{
		ID:          uuid.New(),
		UserID:      userID,
		LeaveTypeID: leaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		Status:      StatusPending,
		Reason:      strings.TrimSpace(req.Reason),
		Role:        actor.Role,
	}
	if err := qtx.Create(ctx, r); err != nil {
		l.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueue(ctx, tx, events.LeaveAppliedType, r, "", actor.UserID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		l.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Info("apply leave success",
		zap.String("leave_id", r.ID.String()),
		zap.String("user_id", actor.UserID),
		zap.Int("days", days),
	)
	return mapToResponse(*r), nil
}

func (s *service) Act(ctx context.Context, actor Actor, req LeaveActionRequest) (LeaveResponse, error) {
	switch strings.ToUpper(strings.TrimSpace(req.Action)) {
	case ActionApprove:
		return s.Approve(ctx, actor, req.LeaveID)
	case ActionReject:
		return s.Reject(ctx, actor, req.LeaveID)
	case ActionCancel:
		return s.Cancel(ctx, actor, req.LeaveID)
	}
	return LeaveResponse{}, leaveerrors.ErrInvalidAction
}

func (s *service) Approve(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, ActionApprove, func(qtx Repository, r *LeaveRequest) error {
		if r.Status != StatusPending {
			return leaveerrors.ErrInvalidStatusTransition
		}

		lt, err := qtx.FindLeaveType(ctx, r.LeaveTypeID.String())
		if err != nil {
			return mapLeaveTypeError(err)
		}
		balance, err := qtx.EnsureBalance(ctx, r.UserID, r.LeaveTypeID, lt.Limit)
		if err != nil {
			return err
		}
		if balance.Remaining < r.Days {
			return leaveerrors.ErrInsufficientBalance
		}
		if err := qtx.ConsumeBalance(ctx, r.UserID, r.LeaveTypeID, r.Days); err != nil {
			if errors.Is(err, ErrBalanceConflict) {
				return leaveerrors.ErrInsufficientBalance
			}
			return err
		}

		r.Status = StatusApproved
		return nil
	})
}

func (s *service) Reject(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, ActionReject, func(_ Repository, r *LeaveRequest) error {
		if r.Status != StatusPending {
			return leaveerrors.ErrInvalidStatusTransition
		}
		r.Status = StatusRejected
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	return s.transition(ctx, actor, id, ActionCancel, func(qtx Repository, r *LeaveRequest) error {
		switch r.Status {
		case StatusPending:
		case StatusApproved:
			if err := qtx.RestoreBalance(ctx, r.UserID, r.LeaveTypeID, r.Days); err != nil {
				return fmt.Errorf("restore balance for leave %s: %w", r.ID, err)
			}
		default:
			return leaveerrors.ErrInvalidStatusTransition
		}
		r.Status = StatusCancelled
		return nil
	})
}

// transition locks the request, checks the caller's decision rights, applies
// mutate and records the outcome, all inside one transaction.
func (s *service) transition(ctx context.Context, actor Actor, id, action string, mutate func(qtx Repository, r *LeaveRequest) error) (LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("leave_id", id),
		zap.String("action", action),
		zap.String("actor_id", actor.UserID),
	)
	l.Debug("leave transition requested")

	actorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidUserID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		l.Error("leave transition begin tx failed", zap.Error(tx.Error))
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRequestError(err)
	}

	if !canAct(actor, r, action) {
		l.Warn("leave transition forbidden", zap.String("actor_role", actor.Role), zap.String("applicant_role", r.Role))
		return LeaveResponse{}, leaveerrors.ErrNotAllowed
	}

	previous := r.Status
	if err := mutate(qtx, r); err != nil {
		l.Warn("leave transition rejected", zap.String("status", previous), zap.Error(err))
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	r.ActionedBy = &actorID
	r.ActionedAt = &now
	if err := qtx.Update(ctx, r); err != nil {
		l.Error("leave transition persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueue(ctx, tx, eventTypeFor(r.Status), r, previous, actor.UserID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		l.Error("leave transition commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Info("leave transition success", zap.String("from", previous), zap.String("to", r.Status))
	return mapToResponse(*r), nil
}

func (s *service) Edit(ctx context.Context, actor Actor, req EditLeaveRequest) (LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("leave_id", req.LeaveID),
		zap.String("actor_id", actor.UserID),
	)
	l.Debug("edit leave requested", zap.String("start_date", req.StartDate), zap.String("end_date", req.EndDate))

	if _, err := uuid.Parse(req.LeaveID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	newDays, err := s.workingDays(ctx, start, end)
	if err != nil {
		return LeaveResponse{}, err
	}
	if newDays <= 0 {
		return LeaveResponse{}, leaveerrors.ErrNoWorkingDays
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := qtx.FindByIDForUpdate(ctx, req.LeaveID)
	if err != nil {
		return LeaveResponse{}, mapRequestError(err)
	}

	if r.Status != StatusPending && r.Status != StatusApproved {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotEditable
	}
	if !canEdit(actor, r) {
		l.Warn("edit leave forbidden", zap.String("status", r.Status))
		return LeaveResponse{}, leaveerrors.ErrNotAllowed
	}

	overlap, err := qtx.HasOverlap(ctx, r.UserID.String(), start, end, r.ID.String())
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	lt, err := qtx.FindLeaveType(ctx, r.LeaveTypeID.String())
	if err != nil {
		return LeaveResponse{}, mapLeaveTypeError(err)
	}
	balance, err := qtx.EnsureBalance(ctx, r.UserID, r.LeaveTypeID, lt.Limit)
	if err != nil {
		return LeaveResponse{}, err
	}

	oldDays := r.Days
	switch r.Status {
	case StatusApproved:
		diff := newDays - oldDays
		switch {
		case diff < 0:
			if err := qtx.RestoreBalance(ctx, r.UserID, r.LeaveTypeID, -diff); err != nil {
				return LeaveResponse{}, fmt.Errorf("restore balance for leave %s: %w", r.ID, err)
			}
		case diff > 0:
			if balance.Remaining < diff {
				return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
			}
			if err := qtx.ConsumeBalance(ctx, r.UserID, r.LeaveTypeID, diff); err != nil {
				if errors.Is(err, ErrBalanceConflict) {
					return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
				}
				return LeaveResponse{}, err
			}
		}
	case StatusPending:
		if newDays > balance.Remaining {
			return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
		}
	}

	r.StartDate = start
	r.EndDate = end
	r.Days = newDays
	if err := qtx.Update(ctx, r); err != nil {
		return LeaveResponse{}, err
	}

	if err := s.enqueue(ctx, tx, events.LeaveEditedType, r, r.Status, actor.UserID); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		l.Error("edit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Info("edit leave success", zap.Int("old_days", oldDays), zap.Int("new_days", newDays))
	return mapToResponse(*r), nil
}

func (s *service) List(ctx context.Context, actor Actor, q ListQuery) ([]LeaveResponse, error) {
	filter := ListFilter{Status: strings.ToUpper(strings.TrimSpace(q.Status))}
	if filter.Status != "" && !isValidStatus(filter.Status) {
		return nil, leaveerrors.ErrInvalidStatusFilter
	}

	switch {
	case q.Mine:
		filter.UserID = actor.UserID
	case actor.Role == domain.RoleAdmin:
		filter.UserID = q.UserID
		filter.Role = strings.ToUpper(strings.TrimSpace(q.Role))
		if filter.Role != "" && !domain.IsValidRole(filter.Role) {
			return nil, leaveerrors.ErrInvalidRoleFilter
		}
	case actor.Role == domain.RoleHR:
		filter.UserID = q.UserID
		filter.Role = domain.RoleTeacher
	default:
		filter.UserID = actor.UserID
	}

	if filter.UserID != "" {
		if _, err := uuid.Parse(filter.UserID); err != nil {
			return nil, leaveerrors.ErrInvalidUserID
		}
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRequestError(err)
	}

	if r.UserID.String() != actor.UserID && !domain.CanDecideLeave(actor.Role, r.Role) {
		return LeaveResponse{}, leaveerrors.ErrNotAllowed
	}
	return mapToResponse(*r), nil
}

func (s *service) MyBalances(ctx context.Context, actor Actor) ([]BalanceResponse, error) {
	return s.UserBalances(ctx, actor.UserID)
}

func (s *service) UserBalances(ctx context.Context, userID string) ([]BalanceResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, leaveerrors.ErrInvalidUserID
	}

	views, err := s.repo.ListBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(views))
	for i, v := range views {
		resp[i] = BalanceResponse{
			LeaveTypeID:   v.LeaveTypeID.String(),
			LeaveTypeName: v.LeaveTypeName,
			Limit:         v.AnnualLimit,
			Used:          v.Used,
			Remaining:     v.Remaining,
		}
	}
	return resp, nil
}

func (s *service) workingDays(ctx context.Context, start, end time.Time) (int, error) {
	var holidays []time.Time
	if s.calendar != nil {
		var err error
		holidays, err = s.calendar.HolidayDates(ctx, start, end)
		if err != nil {
			s.logger.Error("holiday lookup failed", zap.Error(err))
			return 0, err
		}
	}
	return CountWorkingDays(start, end, holidays), nil
}

func (s *service) enqueue(ctx context.Context, tx *gorm.DB, eventType string, r *LeaveRequest, previous, actorID string) error {
	if s.outbox == nil {
		return nil
	}

	event, err := kafka.NewEvent(ctx, "leave_request", r.ID.String(), eventType, events.LeaveRequestLifecycleTopic, events.LeaveRequestEvent{
		EventType:      eventType,
		LeaveRequestID: r.ID.String(),
		UserID:         r.UserID.String(),
		LeaveTypeID:    r.LeaveTypeID.String(),
		Status:         r.Status,
		PreviousStatus: previous,
		Days:           r.Days,
		ActorID:        actorID,
		OccurredAt:     s.now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("enqueue leave event failed", zap.String("event_type", eventType), zap.Error(err))
		return err
	}
	return nil
}

// canAct: deciders approve, reject and cancel; owners may only cancel.
func canAct(actor Actor, r *LeaveRequest, action string) bool {
	owner := r.UserID.String() == actor.UserID
	if action == ActionCancel && owner {
		return true
	}
	return !owner && domain.CanDecideLeave(actor.Role, r.Role)
}

func canEdit(actor Actor, r *LeaveRequest) bool {
	if r.UserID.String() == actor.UserID {
		return r.Status == StatusPending
	}
	return domain.CanDecideLeave(actor.Role, r.Role)
}

func eventTypeFor(status string) string {
	switch status {
	case StatusApproved:
		return events.LeaveApprovedType
	case StatusRejected:
		return events.LeaveRejectedType
	case StatusCancelled:
		return events.LeaveCancelledType
	}
	return events.LeaveEditedType
}

func isValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := parseDate(strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := parseDate(strings.TrimSpace(endRaw))
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func mapRequestError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}

func mapLeaveTypeError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveTypeNotFound
	}
	return err
}

func mapToResponse(r LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:          r.ID.String(),
		UserID:      r.UserID.String(),
		LeaveTypeID: r.LeaveTypeID.String(),
		StartDate:   r.StartDate.Format(dateLayout),
		EndDate:     r.EndDate.Format(dateLayout),
		Days:        r.Days,
		Status:      r.Status,
		Reason:      r.Reason,
		Role:        r.Role,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.ActionedBy != nil {
		by := r.ActionedBy.String()
		resp.ActionedBy = &by
	}
	if r.ActionedAt != nil {
		at := r.ActionedAt.Format(time.RFC3339)
		resp.ActionedAt = &at
	}
	return resp
}

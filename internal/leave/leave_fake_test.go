package leave_test

import (
	"context"
	"sort"
	"time"

	"go-eduhr/internal/leave"
	"go-eduhr/internal/leavetype"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type balanceKey struct {
	user uuid.UUID
	typ  uuid.UUID
}

// memRepository keeps requests and balances in memory so tests can observe
// balance arithmetic across a sequence of operations.
type memRepository struct {
	types    map[uuid.UUID]leavetype.LeaveType
	balances map[balanceKey]*leave.LeaveBalance
	requests map[uuid.UUID]*leave.LeaveRequest

	consumeErr error
}

func newMemRepository() *memRepository {
	return &memRepository{
		types:    map[uuid.UUID]leavetype.LeaveType{},
		balances: map[balanceKey]*leave.LeaveBalance{},
		requests: map[uuid.UUID]*leave.LeaveRequest{},
	}
}

func (m *memRepository) addType(limit int) uuid.UUID {
	id := uuid.New()
	m.types[id] = leavetype.LeaveType{ID: id, Name: "Annual", Limit: limit}
	return id
}

func (m *memRepository) setBalance(user, typ uuid.UUID, used, remaining int) {
	m.balances[balanceKey{user, typ}] = &leave.LeaveBalance{ID: uuid.New(), UserID: user, LeaveTypeID: typ, Used: used, Remaining: remaining}
}

func (m *memRepository) balance(user, typ uuid.UUID) leave.LeaveBalance {
	if b, ok := m.balances[balanceKey{user, typ}]; ok {
		return *b
	}
	return leave.LeaveBalance{}
}

func (m *memRepository) addRequest(r leave.LeaveRequest) uuid.UUID {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.requests[r.ID] = &r
	return r.ID
}

func (m *memRepository) WithTx(*gorm.DB) leave.Repository { return m }

func (m *memRepository) FindLeaveType(_ context.Context, id string) (*leavetype.LeaveType, error) {
	lt, ok := m.types[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &lt, nil
}

func (m *memRepository) HasOverlap(_ context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	for _, r := range m.requests {
		if r.UserID.String() != userID || r.ID.String() == excludeID {
			continue
		}
		if r.Status == leave.StatusRejected || r.Status == leave.StatusCancelled {
			continue
		}
		if !r.StartDate.After(end) && !r.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepository) EnsureBalance(_ context.Context, userID, leaveTypeID uuid.UUID, limit int) (*leave.LeaveBalance, error) {
	key := balanceKey{userID, leaveTypeID}
	if _, ok := m.balances[key]; !ok {
		m.setBalance(userID, leaveTypeID, 0, limit)
	}
	b := *m.balances[key]
	return &b, nil
}

func (m *memRepository) ConsumeBalance(_ context.Context, userID, leaveTypeID uuid.UUID, days int) error {
	if m.consumeErr != nil {
		return m.consumeErr
	}
	b, ok := m.balances[balanceKey{userID, leaveTypeID}]
	if !ok || b.Remaining < days {
		return leave.ErrBalanceConflict
	}
	b.Used += days
	b.Remaining -= days
	return nil
}

func (m *memRepository) RestoreBalance(_ context.Context, userID, leaveTypeID uuid.UUID, days int) error {
	b, ok := m.balances[balanceKey{userID, leaveTypeID}]
	if !ok || b.Used < days {
		return leave.ErrBalanceConflict
	}
	b.Used -= days
	b.Remaining += days
	return nil
}

func (m *memRepository) ListBalances(_ context.Context, userID string) ([]leave.BalanceView, error) {
	var views []leave.BalanceView
	for k, b := range m.balances {
		if k.user.String() != userID {
			continue
		}
		lt := m.types[k.typ]
		views = append(views, leave.BalanceView{
			LeaveTypeID:   k.typ,
			LeaveTypeName: lt.Name,
			AnnualLimit:   lt.Limit,
			Used:          b.Used,
			Remaining:     b.Remaining,
		})
	}
	return views, nil
}

func (m *memRepository) Create(_ context.Context, r *leave.LeaveRequest) error {
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *memRepository) FindByID(_ context.Context, id string) (*leave.LeaveRequest, error) {
	r, ok := m.requests[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepository) FindByIDForUpdate(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return m.FindByID(ctx, id)
}

func (m *memRepository) Update(_ context.Context, r *leave.LeaveRequest) error {
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *memRepository) List(_ context.Context, f leave.ListFilter) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if f.UserID != "" && r.UserID.String() != f.UserID {
			continue
		}
		if f.Role != "" && r.Role != f.Role {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

type staticCalendar []time.Time

func (c staticCalendar) HolidayDates(_ context.Context, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, h := range c {
		if !h.Before(from) && !h.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

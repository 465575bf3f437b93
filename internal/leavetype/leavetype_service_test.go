package leavetype_test

import (
	"context"
	"errors"
	"testing"

	"go-eduhr/internal/leavetype"
	leavetypeerrors "go-eduhr/internal/leavetype/errors"
	mock_leavetype "go-eduhr/internal/leavetype/mock"
	"go-eduhr/internal/shared/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fixture struct {
	repo *mock_leavetype.MockRepository
	sql  sqlmock.Sqlmock
	svc  leavetype.Service
}

func setup(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	db, sqlMock := testutil.NewGormMock(t)
	repo := mock_leavetype.NewMockRepository(ctrl)
	return fixture{repo: repo, sql: sqlMock, svc: leavetype.NewService(db, repo)}
}

func intPtr(v int) *int { return &v }

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	req := leavetype.CreateLeaveTypeRequest{Name: " Annual ", Limit: intPtr(12)}

	t.Run("creates and seeds balances in one transaction", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		var createdID string
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, lt *leavetype.LeaveType) error {
			assert.Equal(t, "Annual", lt.Name)
			assert.Equal(t, 12, lt.Limit)
			createdID = lt.ID.String()
			return nil
		})
		f.repo.EXPECT().SeedBalances(gomock.Any(), gomock.Any(), 12).DoAndReturn(func(_ context.Context, id string, _ int) (int64, error) {
			assert.Equal(t, createdID, id)
			return 7, nil
		})
		f.sql.ExpectCommit()

		res, err := f.svc.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, 12, res.Limit)
	})

	t.Run("duplicate name", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_leave_types_name"})
		f.sql.ExpectRollback()

		_, err := f.svc.Create(ctx, req)

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeExists)
	})

	t.Run("seed failure rolls back", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().SeedBalances(gomock.Any(), gomock.Any(), 12).Return(int64(0), errors.New("db down"))
		f.sql.ExpectRollback()

		_, err := f.svc.Create(ctx, req)

		assert.EqualError(t, err, "db down")
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("limit change rebases balances", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().FindByIDForUpdate(gomock.Any(), id.String()).Return(&leavetype.LeaveType{ID: id, Name: "Annual", Limit: 10}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().RebaseBalances(gomock.Any(), id.String(), 14).Return(int64(0), nil)
		f.sql.ExpectCommit()

		res, err := f.svc.Update(ctx, id.String(), leavetype.UpdateLeaveTypeRequest{Name: "Annual", Limit: intPtr(14)})

		assert.NoError(t, err)
		assert.Equal(t, 14, res.Limit)
	})

	t.Run("limit below usage is rejected", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().FindByIDForUpdate(gomock.Any(), id.String()).Return(&leavetype.LeaveType{ID: id, Name: "Annual", Limit: 10}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().RebaseBalances(gomock.Any(), id.String(), 2).Return(int64(3), nil)
		f.sql.ExpectRollback()

		_, err := f.svc.Update(ctx, id.String(), leavetype.UpdateLeaveTypeRequest{Name: "Annual", Limit: intPtr(2)})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLimitBelowUsage)
	})

	t.Run("same limit skips rebase", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().FindByIDForUpdate(gomock.Any(), id.String()).Return(&leavetype.LeaveType{ID: id, Name: "Annual", Limit: 10}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		f.sql.ExpectCommit()

		res, err := f.svc.Update(ctx, id.String(), leavetype.UpdateLeaveTypeRequest{Name: "Annual Leave", Limit: intPtr(10)})

		assert.NoError(t, err)
		assert.Equal(t, "Annual Leave", res.Name)
	})

	t.Run("not found", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().FindByIDForUpdate(gomock.Any(), id.String()).Return(nil, gorm.ErrRecordNotFound)
		f.sql.ExpectRollback()

		_, err := f.svc.Update(ctx, id.String(), leavetype.UpdateLeaveTypeRequest{Name: "x", Limit: intPtr(1)})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("cascades balances and requests", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		gomock.InOrder(
			f.repo.EXPECT().FindByIDForUpdate(gomock.Any(), id.String()).Return(&leavetype.LeaveType{ID: id}, nil),
			f.repo.EXPECT().DeleteBalances(gomock.Any(), id.String()).Return(int64(5), nil),
			f.repo.EXPECT().DeleteRequests(gomock.Any(), id.String()).Return(int64(2), nil),
			f.repo.EXPECT().Delete(gomock.Any(), id.String()).Return(nil),
		)
		f.sql.ExpectCommit()

		assert.NoError(t, f.svc.Delete(ctx, id.String()))
	})

	t.Run("request delete failure rolls back", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().FindByIDForUpdate(gomock.Any(), id.String()).Return(&leavetype.LeaveType{ID: id}, nil)
		f.repo.EXPECT().DeleteBalances(gomock.Any(), id.String()).Return(int64(5), nil)
		f.repo.EXPECT().DeleteRequests(gomock.Any(), id.String()).Return(int64(0), errors.New("db down"))
		f.sql.ExpectRollback()

		assert.Error(t, f.svc.Delete(ctx, id.String()))
	})

	t.Run("invalid id", func(t *testing.T) {
		f := setup(t)

		assert.ErrorIs(t, f.svc.Delete(ctx, "bad"), leavetypeerrors.ErrInvalidLeaveTypeID)
	})
}

func TestService_SeedBalancesForUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	userID := uuid.NewString()

	f.repo.EXPECT().SeedBalancesForUser(ctx, userID).Return(int64(3), nil)

	n, err := f.svc.SeedBalancesForUser(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = f.svc.SeedBalancesForUser(ctx, "nope")
	assert.ErrorIs(t, err, leavetypeerrors.ErrInvalidUserID)
}

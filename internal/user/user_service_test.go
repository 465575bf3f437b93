package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go-eduhr/internal/domain"
	"go-eduhr/internal/events"
	"go-eduhr/internal/messaging/kafka"
	kafkamock "go-eduhr/internal/messaging/kafka/mock"
	"go-eduhr/internal/shared/testutil"
	"go-eduhr/internal/user"
	usererrors "go-eduhr/internal/user/errors"
	mock_user "go-eduhr/internal/user/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	repo   *mock_user.MockRepository
	outbox *kafkamock.MockOutboxRepository
	sql    sqlmock.Sqlmock
	svc    user.Service
}

func setup(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	db, sqlMock := testutil.NewGormMock(t)
	repo := mock_user.NewMockRepository(ctrl)
	outbox := kafkamock.NewMockOutboxRepository(ctrl)
	return fixture{
		repo:   repo,
		outbox: outbox,
		sql:    sqlMock,
		svc:    user.NewService(db, repo, outbox),
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	req := user.CreateUserRequest{
		Name:     "Asha Teacher",
		Email:    " Asha@School.edu ",
		Password: "password123",
		Role:     "teacher",
	}

	t.Run("success enqueues user_created", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, "asha@school.edu", u.Email)
			assert.Equal(t, domain.RoleTeacher, u.Role)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")))
			return nil
		})
		f.outbox.EXPECT().WithTx(gomock.Any()).Return(f.outbox)
		f.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			assert.Equal(t, events.UserCreatedType, e.EventType)
			assert.Equal(t, events.UserLifecycleTopic, e.Topic)
			var payload events.UserCreatedEvent
			assert.NoError(t, json.Unmarshal(e.Payload, &payload))
			assert.Equal(t, e.AggregateID, payload.UserID)
			return nil
		})
		f.sql.ExpectCommit()

		res, err := f.svc.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "asha@school.edu", res.Email)
		assert.True(t, res.IsActive)
	})

	t.Run("duplicate email rolls back", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"})
		f.sql.ExpectRollback()

		_, err := f.svc.Create(ctx, req)

		assert.ErrorIs(t, err, usererrors.ErrUserAlreadyExists)
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		f := setup(t)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.outbox.EXPECT().WithTx(gomock.Any()).Return(f.outbox)
		f.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))
		f.sql.ExpectRollback()

		_, err := f.svc.Create(ctx, req)

		assert.Error(t, err)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := setup(t)
		bad := req
		bad.Role = "STUDENT"

		_, err := f.svc.Create(ctx, bad)

		assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
	})
}

func TestUserService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by role", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindAll(ctx, domain.RoleTeacher).Return([]user.User{
			{ID: uuid.New(), Name: "A", Email: "a@school.edu", Role: domain.RoleTeacher, IsActive: true},
		}, nil)

		res, err := f.svc.GetAll(ctx, "teacher")

		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, "a@school.edu", res[0].Email)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.GetAll(ctx, "JANITOR")

		assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
	})

	t.Run("repository error", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindAll(ctx, "").Return(nil, errors.New("db error"))

		res, err := f.svc.GetAll(ctx, "")

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Email: "hr@school.edu", Role: domain.RoleHR}, nil)

		res, err := f.svc.GetByID(ctx, id.String())

		assert.NoError(t, err)
		assert.Equal(t, id.String(), res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindByID(ctx, id.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.GetByID(ctx, id.String())

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := setup(t)

		_, err := f.svc.GetByID(ctx, "nope")

		assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
	})
}

func TestUserService_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	actor := uuid.NewString()
	target := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().UpdateStatus(ctx, target, false).Return(nil)

		assert.NoError(t, f.svc.ToggleStatus(ctx, actor, target, false))
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		f := setup(t)

		err := f.svc.ToggleStatus(ctx, actor, actor, false)

		assert.ErrorIs(t, err, usererrors.ErrCannotDeactivateSelf)
	})

	t.Run("not found", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().UpdateStatus(ctx, target, true).Return(gorm.ErrRecordNotFound)

		err := f.svc.ToggleStatus(ctx, actor, target, true)

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Password: string(hashed)}, nil)
		f.repo.EXPECT().UpdatePassword(ctx, id.String(), gomock.Any()).Return(nil)

		assert.NoError(t, f.svc.ChangePassword(ctx, id.String(), "old-password", "new-password"))
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindByID(ctx, id.String()).Return(&user.User{ID: id, Password: string(hashed)}, nil)

		err := f.svc.ChangePassword(ctx, id.String(), "guess", "new-password")

		assert.ErrorIs(t, err, usererrors.ErrWrongPassword)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("existing admin is kept", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindByEmail(ctx, "admin@school.edu").Return(&user.User{ID: uuid.New()}, nil)

		assert.NoError(t, f.svc.EnsureAdmin(ctx, "Admin", "admin@school.edu", "password123"))
	})

	t.Run("creates when missing", func(t *testing.T) {
		f := setup(t)
		f.repo.EXPECT().FindByEmail(ctx, "admin@school.edu").Return(nil, gorm.ErrRecordNotFound)
		f.sql.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleAdmin, u.Role)
			return nil
		})
		f.outbox.EXPECT().WithTx(gomock.Any()).Return(f.outbox)
		f.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.sql.ExpectCommit()

		assert.NoError(t, f.svc.EnsureAdmin(ctx, "Admin", "admin@school.edu", "password123"))
	})

	t.Run("disabled without credentials", func(t *testing.T) {
		f := setup(t)
		assert.NoError(t, f.svc.EnsureAdmin(ctx, "Admin", "", ""))
	})
}

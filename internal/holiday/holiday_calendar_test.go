package holiday_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-eduhr/internal/holiday"
	mock_holiday "go-eduhr/internal/holiday/mock"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCalendar_HolidayDates(t *testing.T) {
	ctx := context.Background()
	yearFrom := day("2024-01-01")
	yearTo := day("2024-12-31")

	t.Run("cache miss fills from database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_holiday.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		cal := holiday.NewCalendar(repo, rdb, time.Hour)

		rmock.ExpectGet("holidays:dates:2024").RedisNil()
		repo.EXPECT().FindDatesBetween(ctx, yearFrom, yearTo).Return([]time.Time{day("2024-03-11"), day("2024-08-17")}, nil)
		rmock.ExpectSet("holidays:dates:2024", `["2024-03-11","2024-08-17"]`, time.Hour).SetVal("OK")

		dates, err := cal.HolidayDates(ctx, day("2024-03-01"), day("2024-03-31"))

		assert.NoError(t, err)
		assert.Equal(t, []time.Time{day("2024-03-11")}, dates)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("cache hit skips database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_holiday.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		cal := holiday.NewCalendar(repo, rdb, time.Hour)

		rmock.ExpectGet("holidays:dates:2024").SetVal(`["2024-03-11","2024-03-12"]`)

		dates, err := cal.HolidayDates(ctx, day("2024-03-12"), day("2024-03-20"))

		assert.NoError(t, err)
		assert.Equal(t, []time.Time{day("2024-03-12")}, dates)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("range across years reads both years", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_holiday.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		cal := holiday.NewCalendar(repo, rdb, time.Hour)

		rmock.ExpectGet("holidays:dates:2024").SetVal(`["2024-12-25"]`)
		rmock.ExpectGet("holidays:dates:2025").SetVal(`["2025-01-01"]`)

		dates, err := cal.HolidayDates(ctx, day("2024-12-20"), day("2025-01-05"))

		assert.NoError(t, err)
		assert.Equal(t, []time.Time{day("2024-12-25"), day("2025-01-01")}, dates)
	})

	t.Run("redis failure falls back to database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_holiday.NewMockRepository(ctrl)
		rdb, rmock := redismock.NewClientMock()
		cal := holiday.NewCalendar(repo, rdb, time.Hour)

		rmock.ExpectGet("holidays:dates:2024").SetErr(errors.New("connection refused"))
		repo.EXPECT().FindDatesBetween(ctx, yearFrom, yearTo).Return([]time.Time{day("2024-05-01")}, nil)
		rmock.ExpectSet("holidays:dates:2024", `["2024-05-01"]`, time.Hour).SetErr(errors.New("connection refused"))

		dates, err := cal.HolidayDates(ctx, day("2024-05-01"), day("2024-05-01"))

		assert.NoError(t, err)
		assert.Len(t, dates, 1)
	})

	t.Run("nil redis reads database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_holiday.NewMockRepository(ctrl)
		cal := holiday.NewCalendar(repo, nil, time.Hour)

		repo.EXPECT().FindDatesBetween(ctx, yearFrom, yearTo).Return(nil, nil)

		dates, err := cal.HolidayDates(ctx, day("2024-05-01"), day("2024-05-10"))

		assert.NoError(t, err)
		assert.Empty(t, dates)
	})

	t.Run("database error surfaces", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_holiday.NewMockRepository(ctrl)
		cal := holiday.NewCalendar(repo, nil, time.Hour)

		repo.EXPECT().FindDatesBetween(ctx, yearFrom, yearTo).Return(nil, errors.New("db down"))

		_, err := cal.HolidayDates(ctx, day("2024-05-01"), day("2024-05-10"))

		assert.Error(t, err)
	})
}

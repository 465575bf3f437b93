package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const dateLayout = "2006-01-02"

func cacheKey(year int) string {
	return fmt.Sprintf("holidays:dates:%d", year)
}

// Calendar serves holiday dates per year from Redis, filling misses from the
// database. A nil Redis client reads straight from the database.
type Calendar struct {
	repo   Repository
	rdb    redis.UniversalClient
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewCalendar(repo Repository, rdb redis.UniversalClient, ttl time.Duration, logger ...*zap.Logger) *Calendar {
	l := zap.L().Named("holiday.calendar")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.calendar")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Calendar{repo: repo, rdb: rdb, ttl: ttl, logger: l}
}

// HolidayDates returns every holiday between from and to inclusive.
func (c *Calendar) HolidayDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	if to.Before(from) {
		return nil, nil
	}

	fromDay := from.Format(dateLayout)
	toDay := to.Format(dateLayout)

	var dates []time.Time
	for year := from.Year(); year <= to.Year(); year++ {
		days, err := c.yearDates(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			if d < fromDay || d > toDay {
				continue
			}
			t, err := time.Parse(dateLayout, d)
			if err != nil {
				continue
			}
			dates = append(dates, t)
		}
	}
	return dates, nil
}

// Invalidate drops the cached dates of one year.
func (c *Calendar) Invalidate(ctx context.Context, year int) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(year)).Err(); err != nil {
		c.logger.Warn("holiday cache invalidate failed", zap.Int("year", year), zap.Error(err))
	}
}

func (c *Calendar) yearDates(ctx context.Context, year int) ([]string, error) {
	key := cacheKey(year)

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Result()
		switch {
		case err == nil:
			var days []string
			if jsonErr := json.Unmarshal([]byte(raw), &days); jsonErr == nil {
				return days, nil
			}
			c.logger.Warn("holiday cache entry corrupt", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("holiday cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		rows, err := c.repo.FindDatesBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}

		days := make([]string, 0, len(rows))
		for _, r := range rows {
			days = append(days, r.Format(dateLayout))
		}

		if c.rdb != nil {
			payload, _ := json.Marshal(days)
			if err := c.rdb.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
				c.logger.Warn("holiday cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return days, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

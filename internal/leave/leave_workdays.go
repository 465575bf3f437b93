package leave

import (
	"context"
	"time"
)

const dateLayout = "2006-01-02"

// HolidayCalendar supplies the non-working days between two dates.
type HolidayCalendar interface {
	HolidayDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CountWorkingDays counts the days in [start, end] that are neither Saturday,
// Sunday nor a holiday. Holidays match by calendar date.
func CountWorkingDays(start, end time.Time, holidays []time.Time) int {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return 0
	}

	off := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		off[h.Format(dateLayout)] = struct{}{}
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := off[d.Format(dateLayout)]; ok {
			continue
		}
		days++
	}
	return days
}

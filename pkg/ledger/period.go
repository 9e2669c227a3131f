package ledger

import "time"

// Period is a bounded aggregation window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Clock resolves period boundaries in a single reference time zone for the
// whole system. Now is injectable so tests can supply fixed instants.
type Clock struct {
	Location  *time.Location
	WeekStart time.Weekday
	Now       func() time.Time
}

// NewClock returns a Clock with the given zone and week start.
func NewClock(loc *time.Location, weekStart time.Weekday) Clock {
	return Clock{
		Location:  loc,
		WeekStart: weekStart,
		Now:       time.Now,
	}
}

// DayStart returns 00:00 of the current day in the reference zone.
func (c Clock) DayStart() time.Time {
	now := c.Now().In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
}

// Bounds returns the [start, now] window of a period. Week begins at the most
// recent day start falling on WeekStart, month at day 1 of the current month,
// all at the epoch.
func (c Clock) Bounds(p Period) (time.Time, time.Time) {
	now := c.Now().In(c.Location)

	switch p {
	case PeriodWeek:
		back := (int(now.Weekday()) - int(c.WeekStart) + 7) % 7
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location).AddDate(0, 0, -back)
		return start, now
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.Location)
		return start, now
	default:
		return time.Unix(0, 0).In(c.Location), now
	}
}

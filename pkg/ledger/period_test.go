package ledger

import (
	"testing"
	"time"
)

func fixedClock(t time.Time, weekStart time.Weekday) Clock {
	c := NewClock(t.Location(), weekStart)
	c.Now = func() time.Time { return t }
	return c
}

func TestClockBounds(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// Thursday, 2024-05-16 15:04:05 MSK
	now := time.Date(2024, 5, 16, 15, 4, 5, 0, msk)

	t.Run("week starts monday", func(t *testing.T) {
		start, end := fixedClock(now, time.Monday).Bounds(PeriodWeek)

		want := time.Date(2024, 5, 13, 0, 0, 0, 0, msk)
		if !start.Equal(want) {
			t.Errorf("week start = %v, want %v", start, want)
		}
		if !end.Equal(now) {
			t.Errorf("week end = %v, want %v", end, now)
		}
	})

	t.Run("week starts sunday", func(t *testing.T) {
		start, _ := fixedClock(now, time.Sunday).Bounds(PeriodWeek)

		want := time.Date(2024, 5, 12, 0, 0, 0, 0, msk)
		if !start.Equal(want) {
			t.Errorf("week start = %v, want %v", start, want)
		}
	})

	t.Run("week start on the boundary day", func(t *testing.T) {
		// A Monday with Monday week start begins the same day.
		monday := time.Date(2024, 5, 13, 9, 0, 0, 0, msk)
		start, _ := fixedClock(monday, time.Monday).Bounds(PeriodWeek)

		want := time.Date(2024, 5, 13, 0, 0, 0, 0, msk)
		if !start.Equal(want) {
			t.Errorf("week start = %v, want %v", start, want)
		}
	})

	t.Run("month starts at day one", func(t *testing.T) {
		start, end := fixedClock(now, time.Monday).Bounds(PeriodMonth)

		want := time.Date(2024, 5, 1, 0, 0, 0, 0, msk)
		if !start.Equal(want) {
			t.Errorf("month start = %v, want %v", start, want)
		}
		if !end.Equal(now) {
			t.Errorf("month end = %v, want %v", end, now)
		}
	})

	t.Run("all spans from the epoch", func(t *testing.T) {
		start, _ := fixedClock(now, time.Monday).Bounds(PeriodAll)

		if !start.Equal(time.Unix(0, 0)) {
			t.Errorf("all-time start = %v, want epoch", start)
		}
	})
}

func TestClockDayStart(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	now := time.Date(2024, 5, 16, 23, 59, 59, 0, msk)

	got := fixedClock(now, time.Monday).DayStart()
	want := time.Date(2024, 5, 16, 0, 0, 0, 0, msk)
	if !got.Equal(want) {
		t.Errorf("DayStart = %v, want %v", got, want)
	}
}

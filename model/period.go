package model

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Period is an inclusive range of calendar days. End is the last instant of
// the final day.
type Period struct {
	Start time.Time
	End   time.Time
	Days  int
}

// NewPeriod builds a Period from two calendar dates, swapping them if reversed.
func NewPeriod(from, to time.Time) Period {
	start := startOfDay(from)
	last := startOfDay(to)
	if last.Before(start) {
		start, last = last, start
	}
	return Period{
		Start: start,
		End:   last.AddDate(0, 0, 1).Add(-time.Nanosecond),
		Days:  int(utcDate(last).Sub(utcDate(start))/day) + 1,
	}
}

// utcDate keeps only the calendar date so DST shifts cannot change day counts.
func utcDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Key identifies the calendar range only.
func (p Period) Key() string {
	return fmt.Sprintf("%s_%s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(p.Start) && !t.After(p.End)
}

// LastDay is local midnight of the final day.
func (p Period) LastDay() time.Time {
	return startOfDay(p.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

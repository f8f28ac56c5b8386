package utils

import (
	"regexp"
	"strconv"
	"time"
)

var (
	isoDatePat = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	ruDatePat  = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
)

// ParseDateFromAny finds a YYYY-MM-DD or DD.MM.YYYY date in value and returns
// local midnight of that calendar day.
func ParseDateFromAny(value string) (time.Time, bool) {
	if m := isoDatePat.FindStringSubmatch(value); m != nil {
		return calendarDate(m[1], m[2], m[3])
	}
	if m := ruDatePat.FindStringSubmatch(value); m != nil {
		return calendarDate(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

func calendarDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range values; reject those instead.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

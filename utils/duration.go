package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type durationUnit struct {
	pattern *regexp.Regexp
	seconds int64
}

// Each unit is matched independently and the results are summed, so mixed
// strings like "1 день 2 часа" work.
var durationUnits = []durationUnit{
	{regexp.MustCompile(`(?i)(\d+)\s*мес[а-яё]*`), 30 * 24 * 3600},
	{regexp.MustCompile(`(?i)(\d+)\s*нед[а-яё]*`), 7 * 24 * 3600},
	{regexp.MustCompile(`(?i)(\d+)\s*(?:д|сут)[а-яё]*`), 24 * 3600},
	{regexp.MustCompile(`(?i)(\d+)\s*ч[а-яё]*`), 3600},
	{regexp.MustCompile(`(?i)(\d+)\s*мин[а-яё]*`), 60},
	{regexp.MustCompile(`(?i)(\d+)\s*сек[а-яё]*`), 1},
}

var (
	hmsPat  = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2})$`)
	dhmsPat = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2}):(\d{1,2})$`)
)

// ParseDurationToSeconds understands Russian unit words and the H:MM:SS and
// D:HH:MM:SS numeric forms. ok is false when nothing was recognized.
func ParseDurationToSeconds(text string) (seconds int64, ok bool) {
	for _, unit := range durationUnits {
		for _, m := range unit.pattern.FindAllStringSubmatch(text, -1) {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				seconds += n * unit.seconds
				ok = true
			}
		}
	}
	if ok {
		return
	}

	trimmed := strings.TrimSpace(text)
	if m := dhmsPat.FindStringSubmatch(trimmed); m != nil {
		return atoi64(m[1])*86400 + atoi64(m[2])*3600 + atoi64(m[3])*60 + atoi64(m[4]), true
	}
	if m := hmsPat.FindStringSubmatch(trimmed); m != nil {
		return atoi64(m[1])*3600 + atoi64(m[2])*60 + atoi64(m[3]), true
	}
	return 0, false
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func clamp(seconds int64) int64 {
	if seconds < 0 {
		return 0
	}
	return seconds
}

// FormatHms renders HH:MM:SS; hours are not wrapped at 24.
func FormatHms(seconds int64) string {
	s := clamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

func FormatTotalHours(seconds int64) string {
	s := clamp(seconds)
	return fmt.Sprintf("%d ч %02d мин", s/3600, s%3600/60)
}

func FormatHmsTotal(seconds int64) string {
	s := clamp(seconds)
	return fmt.Sprintf("%d ч %02d мин %02d сек", s/3600, s%3600/60, s%60)
}

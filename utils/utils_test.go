package utils

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTrimmedURL(t *testing.T) {
	withSlash, err := url.Parse("http://somewhere.com/")
	require.Equal(t, nil, err)
	withoutSlash, err := url.Parse("http://somewhere.com")
	require.Equal(t, nil, err)

	require.Equal(t, TrimmedURL(withSlash), TrimmedURL(withoutSlash))

	withSlash, err = url.Parse("http://somewhere.com/forums/42/")
	require.Equal(t, nil, err)
	withoutSlash, err = url.Parse("http://somewhere.com/forums/42")
	require.Equal(t, nil, err)

	require.Equal(t, TrimmedURL(withSlash), TrimmedURL(withoutSlash))
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	stat, err := PathExists(tmpDir)
	require.Equal(t, nil, err)
	require.Equal(t, true, stat)

	stat, err = PathExists(tmpDir + "/non-existent-path")
	require.Equal(t, nil, err)
	require.Equal(t, false, stat)

	config := filepath.Join(tmpDir, "adminreport.yaml")
	fd, err := os.Create(config)
	require.Equal(t, nil, err)
	fd.Close()

	stat, err = PathExists(config)
	require.Equal(t, nil, err)
	require.Equal(t, true, stat)
}

func TestParseDurationToSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2 часа 30 минут", 9000, true},
		{"1:30:00", 5400, true},
		{"1:02:03:04", 86400 + 2*3600 + 3*60 + 4, true},
		{"1 день 1 час", 90000, true},
		{"2 недели", 14 * 86400, true},
		{"1 месяц", 30 * 86400, true},
		{"3 суток", 3 * 86400, true},
		{"45 секунд", 45, true},
		{"5 Минут 10 сек", 310, true},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDurationToSeconds(c.in)
		require.Equal(t, c.ok, ok, c.in)
		require.Equal(t, c.want, got, c.in)
	}
}

func TestFormatters(t *testing.T) {
	require.Equal(t, "02:30:00", FormatHms(9000))
	require.Equal(t, "27:00:05", FormatHms(27*3600+5))
	require.Equal(t, "00:00:00", FormatHms(-5))
	require.Equal(t, "2 ч 30 мин", FormatTotalHours(9000))
	require.Equal(t, "0 ч 00 мин", FormatTotalHours(-1))
	require.Equal(t, "1 ч 01 мин 01 сек", FormatHmsTotal(3661))
}

func TestParseDateFromAny(t *testing.T) {
	d, ok := ParseDateFromAny("2025-09-01")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local), d)

	d, ok = ParseDateFromAny("с 07.09.2025")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 9, 7, 0, 0, 0, 0, time.Local), d)

	_, ok = ParseDateFromAny("31.02.2025")
	require.False(t, ok)

	_, ok = ParseDateFromAny("вчера")
	require.False(t, ok)

	require.Equal(t, "07.09.2025", FormatDate(d))
	require.Equal(t, "2025-09-07", DayKey(d))
}

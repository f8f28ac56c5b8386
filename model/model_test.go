package model

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func TestPeriodKeyDependsOnlyOnCalendarDates(t *testing.T) {
	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 9, 7, 0, 0, 0, 0, time.Local)

	a := NewPeriod(from, to)
	b := NewPeriod(to.Add(15*time.Hour), from.Add(3*time.Hour))
	b.Days = 99

	require.Equal(t, "2025-09-01_2025-09-07", a.Key())
	require.Equal(t, a.Key(), b.Key())
	require.Equal(t, 7, a.Days)
}

func TestPeriodDaysAcrossDSTChanges(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	fallBack := NewPeriod(time.Date(2024, 10, 21, 0, 0, 0, 0, berlin), time.Date(2024, 10, 27, 0, 0, 0, 0, berlin))
	require.Equal(t, 7, fallBack.Days)
	require.Equal(t, "2024-10-21_2024-10-27", fallBack.Key())
	require.True(t, fallBack.Contains(time.Date(2024, 10, 27, 23, 30, 0, 0, berlin)))

	springForward := NewPeriod(time.Date(2024, 3, 25, 0, 0, 0, 0, berlin), time.Date(2024, 3, 31, 0, 0, 0, 0, berlin))
	require.Equal(t, 7, springForward.Days)
}

func TestPeriodContains(t *testing.T) {
	p := NewPeriod(time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local), time.Date(2025, 9, 1, 0, 0, 0, 0, time.Local))
	require.Equal(t, 1, p.Days)
	require.True(t, p.Contains(time.Date(2025, 9, 1, 23, 59, 0, 0, time.Local)))
	require.False(t, p.Contains(time.Date(2025, 9, 2, 0, 0, 0, 0, time.Local)))
	require.False(t, p.Contains(time.Date(2025, 8, 31, 23, 59, 0, 0, time.Local)))
	require.False(t, p.Contains(time.Time{}))
}

func TestForumConfigNormalize(t *testing.T) {
	cfg := ForumConfig{
		Groups: []ForumGroup{
			{Key: "complaints", Title: "Жалобы", Forums: []Forum{{ID: 10, Title: "A"}, {ID: 11, Title: "B"}, {ID: 10, Title: "dup"}}},
			{Key: "complaints", Title: "Duplicate", Forums: []Forum{{ID: 99}}},
			{Key: "appeals", Title: "Обжалования", Forums: []Forum{{ID: 11, Title: "B again"}, {ID: 12, Title: "C"}}},
		},
	}
	cfg.Normalize()

	require.Len(t, cfg.Groups, 2)
	require.Equal(t, []int{10, 11}, cfg.Groups[0].ForumIDs)
	require.Equal(t, []int{11, 12}, cfg.Groups[1].ForumIDs)
	require.Equal(t, []Forum{{ID: 10, Title: "A"}, {ID: 11, Title: "B"}, {ID: 12, Title: "C"}}, cfg.Forums)
	require.Equal(t, "B", cfg.ForumTitle(11))
}

func TestRosterAndInactivityLookups(t *testing.T) {
	r := NewAdminRoster()
	r.AllowedNicks[NickKey(" Ivan ")] = struct{}{}
	require.True(t, r.Allows("IVAN"))
	require.False(t, r.Allows("petr"))
	require.False(t, (*AdminRoster)(nil).Allows("ivan"))
	require.True(t, (*AdminRoster)(nil).Empty())

	rec := &InactivityRecord{ByNick: map[string]map[string]struct{}{
		"ivan": {"2025-09-01": {}, "2025-09-02": {}},
	}}
	require.Equal(t, 2, rec.DaysFor("Ivan"))
	require.Equal(t, 0, (*InactivityRecord)(nil).DaysFor("Ivan"))
}

// Package report renders the admin and forum reports as paste-ready text.
// Everything here is a pure function of its inputs.
package report

import (
	"math"
	"sort"

	"github.com/zvonler/adminreport/model"
)

const (
	TopReportersLimit = 3
	TopReportersMin   = 100
)

// BaseSeconds is the online-time requirement for the whole period.
func BaseSeconds(period model.Period, dailyNormHours float64) int64 {
	return int64(math.Round(float64(period.Days) * dailyNormHours * 3600))
}

// GetRequiredSeconds reduces the base requirement by the approved inactive
// days, never going below zero.
func GetRequiredSeconds(baseSeconds int64, inactiveDays int, dailyNormHours float64) int64 {
	required := baseSeconds - int64(math.Round(float64(inactiveDays)*dailyNormHours*3600))
	if required < 0 {
		return 0
	}
	return required
}

func IsShort(onlineSeconds, requiredSeconds int64) bool {
	return requiredSeconds > 0 && onlineSeconds < requiredSeconds
}

// LevelTop is the ranked reporters of one admin level.
type LevelTop struct {
	Level   int
	Entries []model.AdminEntry
}

// TopReporters groups admins of levels 1-4 with at least minReports reports
// by level, highest level first, keeping the limit best of each.
func TopReporters(entries []model.AdminEntry, limit, minReports int) []LevelTop {
	byLevel := make(map[int][]model.AdminEntry)
	for _, e := range entries {
		if e.Level < 1 || e.Level > 4 || e.Reports < minReports {
			continue
		}
		byLevel[e.Level] = append(byLevel[e.Level], e)
	}

	var tops []LevelTop
	for level := 4; level >= 1; level-- {
		group := byLevel[level]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Reports != group[j].Reports {
				return group[i].Reports > group[j].Reports
			}
			return model.NickKey(group[i].Nickname) < model.NickKey(group[j].Nickname)
		})
		if len(group) > limit {
			group = group[:limit]
		}
		tops = append(tops, LevelTop{Level: level, Entries: group})
	}
	return tops
}

// RewardFor is the payout for the best reporter of a level, or zero when
// rewards are off.
func RewardFor(reports int, cfg *model.ForumConfig) int {
	if cfg == nil || !cfg.ShowRewards || cfg.RewardReportsStep <= 0 || cfg.RewardAmountPerStep <= 0 {
		return 0
	}
	amount := (reports / cfg.RewardReportsStep) * cfg.RewardAmountPerStep
	if amount < 0 {
		return 0
	}
	return amount
}

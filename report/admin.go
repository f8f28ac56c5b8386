package report

import (
	"fmt"
	"strings"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/reportstate"
	"github.com/zvonler/adminreport/utils"
)

type AdminReportInput struct {
	Period     *model.Period
	Config     *model.ForumConfig
	Entries    []model.AdminEntry
	Roster     *model.AdminRoster
	Notes      map[string]string
	Inactivity *model.InactivityRecord
	ForumState *reportstate.State
}

// ShortAdmin is an admin below the online requirement for the period.
type ShortAdmin struct {
	Entry        model.AdminEntry
	Required     int64
	InactiveDays int
}

// ShortAdmins lists the entries whose online time is below their reduced
// requirement, in entry order.
func ShortAdmins(period model.Period, entries []model.AdminEntry, inactivity *model.InactivityRecord, dailyNormHours float64) (short []ShortAdmin) {
	base := BaseSeconds(period, dailyNormHours)
	for _, e := range entries {
		days := inactivity.DaysFor(e.Nickname)
		required := GetRequiredSeconds(base, days, dailyNormHours)
		if IsShort(e.Online(), required) {
			short = append(short, ShortAdmin{Entry: e, Required: required, InactiveDays: days})
		}
	}
	return
}

func periodLine(p model.Period) string {
	return fmt.Sprintf("📅 Период: %s - %s (%d дн.)", utils.FormatDate(p.Start), utils.FormatDate(p.End), p.Days)
}

func title(prefix string, cfg *model.ForumConfig) string {
	if cfg != nil && cfg.ServerTitle != "" {
		return prefix + " | " + cfg.ServerTitle
	}
	return prefix
}

func BuildAdminReport(in AdminReportInput) string {
	cfg := in.Config
	if cfg == nil {
		cfg = &model.ForumConfig{}
	}
	if in.Period == nil {
		return title("📊 Отчёт администрации", cfg) + "\n⚠️ Период отчёта не найден. Выберите период на странице статистики."
	}
	period := *in.Period

	var b strings.Builder
	fmt.Fprintln(&b, title("📊 Отчёт администрации", cfg))
	fmt.Fprintln(&b, periodLine(period))
	base := BaseSeconds(period, cfg.DailyNormHours)
	fmt.Fprintf(&b, "⏱ Норма онлайна: %s (%g ч в день)\n", utils.FormatTotalHours(base), cfg.DailyNormHours)

	if !in.Roster.Empty() {
		fmt.Fprintf(&b, "👥 Администраторов в составе: %d, в отчёте: %d\n", len(in.Roster.AllowedNicks), len(in.Entries))
	}

	replies := forumReplies(in.ForumState, period)

	if len(in.Entries) == 0 {
		fmt.Fprintln(&b, "\nНет администраторов для отчёта.")
	}
	level := -1
	for _, e := range in.Entries {
		if e.Level != level {
			level = e.Level
			fmt.Fprintf(&b, "\n👮 Уровень %d\n", level)
		}
		fmt.Fprintf(&b, "• %s | 📨 %d | 🕒 %s", e.Nickname, e.Reports, utils.FormatHms(e.Online()))
		if replies != nil {
			fmt.Fprintf(&b, " | 💬 %d", replies[model.NickKey(e.Nickname)])
		}
		b.WriteString("\n")
	}

	short := ShortAdmins(period, in.Entries, in.Inactivity, cfg.DailyNormHours)
	if len(short) == 0 {
		fmt.Fprintln(&b, "\n✅ Норму онлайна выполнили все.")
	} else {
		fmt.Fprintf(&b, "\n⚠️ Не выполнили норму онлайна (%d):\n", len(short))
		for _, s := range short {
			fmt.Fprintf(&b, "• %s: %s из %s", s.Entry.Nickname, utils.FormatHms(s.Entry.Online()), utils.FormatHms(s.Required))
			if s.InactiveDays > 0 {
				fmt.Fprintf(&b, " (неактив %d дн.)", s.InactiveDays)
			}
			if note := strings.TrimSpace(in.Notes[model.NickKey(s.Entry.Nickname)]); note != "" {
				fmt.Fprintf(&b, " 📝 %s", note)
			}
			b.WriteString("\n")
		}
	}

	if in.Inactivity != nil && len(in.Inactivity.Entries) > 0 {
		fmt.Fprintln(&b, "\n🏖 Неактивы в периоде:")
		for _, row := range in.Inactivity.Entries {
			mark := "⏳ не одобрен"
			if row.Approved {
				mark = "✅ одобрен"
			}
			fmt.Fprintf(&b, "• %s: %s - %s %s\n", row.Nick, utils.FormatDate(row.Start), utils.FormatDate(row.End), mark)
		}
	}

	tops := TopReporters(in.Entries, TopReportersLimit, TopReportersMin)
	fmt.Fprintf(&b, "\n🏆 Лучшие по репортам (от %d):\n", TopReportersMin)
	if len(tops) == 0 {
		fmt.Fprintln(&b, "Нет администраторов с достаточным числом репортов.")
	}
	for _, top := range tops {
		fmt.Fprintf(&b, "Уровень %d:\n", top.Level)
		for i, e := range top.Entries {
			fmt.Fprintf(&b, "%s %s: %d", rankEmoji(i), e.Nickname, e.Reports)
			if i == 0 {
				if reward := RewardFor(e.Reports, cfg); reward > 0 {
					fmt.Fprintf(&b, " 💰 %d", reward)
				}
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// forumReplies sums last-reply counters across groups, or nil when no ready
// forum data exists for the period.
func forumReplies(st *reportstate.State, period model.Period) map[string]int {
	if st == nil || st.Status != reportstate.Ready || st.Key != period.Key() || st.Data == nil {
		return nil
	}
	totals := make(map[string]int)
	for _, g := range st.Data.Groups {
		for key, c := range g.LastReply {
			if c != nil {
				totals[key] += c.Value
			}
		}
	}
	return totals
}

func rankEmoji(i int) string {
	medals := []string{"🥇", "🥈", "🥉"}
	if i < len(medals) {
		return medals[i]
	}
	return fmt.Sprintf("%d.", i+1)
}

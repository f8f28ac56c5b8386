package report

import (
	"fmt"
	"strings"

	"github.com/zvonler/adminreport/aggregate"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/reportstate"
	"github.com/zvonler/adminreport/utils"
)

const ClosersLimit = 10

type ForumReportInput struct {
	Period *model.Period
	Config *model.ForumConfig
	State  reportstate.State
}

func BuildForumReport(in ForumReportInput) string {
	cfg := in.Config
	if cfg == nil {
		cfg = &model.ForumConfig{}
	}
	head := title("📋 Статистика форума", cfg)
	if in.Period == nil {
		return head + "\n⚠️ Период отчёта не найден. Выберите период на странице статистики."
	}
	period := *in.Period
	head += "\n" + periodLine(period)

	st := in.State
	if st.Key != "" && st.Key != period.Key() {
		return head + "\nℹ️ Статистика форума за этот период ещё не загружена."
	}
	switch st.Status {
	case reportstate.Idle:
		return head + "\nℹ️ Статистика форума ещё не загружена."
	case reportstate.Loading:
		return head + "\n⏳ Статистика форума загружается..."
	case reportstate.Error:
		return head + "\n❌ Не удалось загрузить статистику форума: " + StatusMessage(st.Err)
	}
	if st.Data == nil {
		return head + "\nℹ️ Статистика форума ещё не загружена."
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")

	for _, g := range cfg.Groups {
		activity := st.Data.Groups[g.Key]
		name := g.Title
		if name == "" {
			name = g.Key
		}
		fmt.Fprintf(&b, "\n📂 %s\n", name)
		fmt.Fprintf(&b, "🆕 Созданные темы (%d):\n", aggregate.Total(activity.Created))
		writeLines(&b, aggregate.FormatTopWithTies(activity.Created))
		fmt.Fprintf(&b, "💬 Последние ответы (%d):\n", aggregate.Total(activity.LastReply))
		writeLines(&b, aggregate.FormatTopWithTies(activity.LastReply))
	}

	for _, f := range cfg.Forums {
		stats, ok := st.Data.Stats[f.ID]
		if !ok {
			continue
		}
		name := f.Title
		if name == "" {
			name = fmt.Sprintf("Раздел %d", f.ID)
		}
		fmt.Fprintf(&b, "\n🗂 %s (страниц: %d)\n", name, stats.Pages)
		fmt.Fprintf(&b, "Темы: %d | На рассмотрении: %d | Закреплено: %d | Не закреплено: %d\n",
			stats.Threads, stats.OnReview, stats.Pinned, stats.Unpinned)
		fmt.Fprintf(&b, "🔒 Закрыто: %d | 🔓 Открыто: %d\n", stats.Closed, stats.Open)
		fmt.Fprintf(&b, "⏱ Среднее время до закрытия: %s\n", utils.FormatHms(stats.AvgCloseSeconds))
		if closers := aggregate.RankClosers(stats, ClosersLimit); len(closers) > 0 {
			b.WriteString("Закрыли:\n")
			writeLines(&b, closers)
		}
	}

	if !st.Data.FetchedAt.IsZero() {
		fmt.Fprintf(&b, "\n🕓 Обновлено: %s", st.Data.FetchedAt.Format("02.01.2006 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeLines(b *strings.Builder, lines []string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
}

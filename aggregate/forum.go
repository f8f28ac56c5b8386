package aggregate

import (
	"fmt"
	"math"
	"regexp"

	"github.com/zvonler/adminreport/model"
)

var (
	onReviewPrefix = regexp.MustCompile(`(?i)рассмотр|review|ожида`)
	pinnedPrefix   = regexp.MustCompile(`(?i)закреп|важн|pinned|sticky`)
	closedPrefix   = regexp.MustCompile(`(?i)закрыт|отказ|одобр|решен|closed|resolved`)
)

var rankEmoji = []string{"🥇", "🥈", "🥉", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// ForumAccumulator collects statistics for one forum from threads whose last
// post falls inside the period.
type ForumAccumulator struct {
	period  model.Period
	stats   model.ForumStats
	closers model.Counts
	samples []int64
}

func NewForumAccumulator(forumID int, period model.Period) *ForumAccumulator {
	return &ForumAccumulator{
		period:  period,
		stats:   model.ForumStats{ForumID: forumID},
		closers: make(model.Counts),
	}
}

func (fa *ForumAccumulator) SetPages(pages int) {
	fa.stats.Pages = pages
}

func (fa *ForumAccumulator) Add(t model.Thread) {
	if !fa.period.Contains(t.LastPostAt) {
		return
	}
	fa.stats.Threads++

	if onReviewPrefix.MatchString(t.Prefix) {
		fa.stats.OnReview++
	}
	if t.Sticky || pinnedPrefix.MatchString(t.Prefix) {
		fa.stats.Pinned++
	} else {
		fa.stats.Unpinned++
	}

	if !t.Locked && !closedPrefix.MatchString(t.Prefix) {
		fa.stats.Open++
		return
	}
	fa.stats.Closed++

	if t.Locked {
		Increment(fa.closers, t.LastAuthor, t.LastAuthor)
	}
	if !t.CreatedAt.IsZero() {
		if d := t.LastPostAt.Sub(t.CreatedAt); d >= 0 {
			fa.samples = append(fa.samples, int64(d.Seconds()))
		}
	}
}

// Finalize computes the average close time, rounded to the nearest second,
// and the closers ordered by count then name.
func (fa *ForumAccumulator) Finalize() model.ForumStats {
	stats := fa.stats
	if len(fa.samples) > 0 {
		var sum int64
		for _, s := range fa.samples {
			sum += s
		}
		stats.AvgCloseSeconds = int64(math.Round(float64(sum) / float64(len(fa.samples))))
	}

	stats.Closers = nil
	for _, c := range sorted(fa.closers) {
		stats.Closers = append(stats.Closers, model.Closer{Key: c.Key, Name: c.Name, Count: c.Value})
	}
	return stats
}

// RankClosers renders up to limit closers with their share of the forum's
// closed threads.
func RankClosers(stats model.ForumStats, limit int) []string {
	if limit <= 0 || limit > len(rankEmoji) {
		limit = len(rankEmoji)
	}
	lines := make([]string, 0, limit)
	for i, c := range stats.Closers {
		if i >= limit {
			break
		}
		pct := "0.00"
		if stats.Closed > 0 {
			pct = fmt.Sprintf("%.2f", float64(c.Count)*100/float64(stats.Closed))
		}
		lines = append(lines, fmt.Sprintf("%s %s: %d (%s%%)", rankEmoji[i], c.Name, c.Count, pct))
	}
	return lines
}

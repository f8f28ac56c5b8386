package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/xf_scraper"
)

func week() model.Period {
	return model.NewPeriod(time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local), time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local))
}

func counts(pairs map[string]int) model.Counts {
	c := make(model.Counts)
	for name, n := range pairs {
		for i := 0; i < n; i++ {
			Increment(c, name, name)
		}
	}
	return c
}

func TestIncrementKeepsFirstName(t *testing.T) {
	c := make(model.Counts)
	Increment(c, "Ivan", "")
	Increment(c, " IVAN", "IVAN")
	Increment(c, "ivan", "Ivan")
	Increment(c, "  ", "nobody")

	require.Len(t, c, 1)
	assert.Equal(t, 3, c["ivan"].Value)
	assert.Equal(t, "IVAN", c["ivan"].Name)
}

func TestFormatTopWithTies(t *testing.T) {
	lines := FormatTopWithTies(counts(map[string]int{"Boris": 5, "Anna": 5, "Clara": 3, "Dmitry": 1, "Egor": 1, "Fedor": 0}))
	assert.Equal(t, []string{
		"🥇 Anna: 5",
		"🥇 Boris: 5",
		"🥈 Clara: 3",
		"🥉 Dmitry: 1",
		"🥉 Egor: 1",
	}, lines)
}

func TestFormatTopWithTiesPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"🥇 Anna: 2", "🥈 None", "🥉 None"}, FormatTopWithTies(counts(map[string]int{"Anna": 2})))
	assert.Equal(t, []string{"🥇 None", "🥈 None", "🥉 None"}, FormatTopWithTies(model.Counts{}))
}

func TestFormatTopWithTiesDropsFourthValue(t *testing.T) {
	lines := FormatTopWithTies(counts(map[string]int{"a": 4, "b": 3, "c": 2, "d": 1}))
	assert.Equal(t, []string{"🥇 a: 4", "🥈 b: 3", "🥉 c: 2"}, lines)
}

func TestForumAccumulator(t *testing.T) {
	p := week()
	in := p.Start.Add(30 * time.Hour)
	fa := NewForumAccumulator(9, p)
	fa.SetPages(2)

	fa.Add(model.Thread{LastAuthor: "Ivan", CreatedAt: in.Add(-2 * time.Hour), LastPostAt: in, Locked: true})
	fa.Add(model.Thread{LastAuthor: "ivan", CreatedAt: in.Add(-1 * time.Hour), LastPostAt: in, Locked: true})
	fa.Add(model.Thread{LastAuthor: "Anna", CreatedAt: in.Add(-3 * time.Second), LastPostAt: in, Locked: true})
	fa.Add(model.Thread{LastAuthor: "Oleg", LastPostAt: in, Prefix: "На рассмотрении"})
	fa.Add(model.Thread{LastAuthor: "Oleg", LastPostAt: in, Sticky: true})
	fa.Add(model.Thread{LastAuthor: "Oleg", CreatedAt: in, LastPostAt: in.Add(-time.Hour), Prefix: "Закрыто"})
	fa.Add(model.Thread{LastAuthor: "Late", LastPostAt: p.End.Add(time.Second), Locked: true})

	stats := fa.Finalize()
	assert.Equal(t, 9, stats.ForumID)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 6, stats.Threads)
	assert.Equal(t, 1, stats.OnReview)
	assert.Equal(t, 1, stats.Pinned)
	assert.Equal(t, 5, stats.Unpinned)
	assert.Equal(t, 4, stats.Closed)
	assert.Equal(t, 2, stats.Open)
	// (7200 + 3600 + 3) / 3 = 3601
	assert.Equal(t, int64(3601), stats.AvgCloseSeconds)
	assert.Equal(t, []model.Closer{
		{Key: "ivan", Name: "Ivan", Count: 2},
		{Key: "anna", Name: "Anna", Count: 1},
	}, stats.Closers)
}

func TestAverageRoundsToNearest(t *testing.T) {
	p := week()
	in := p.Start.Add(time.Hour)
	fa := NewForumAccumulator(1, p)
	fa.Add(model.Thread{CreatedAt: in.Add(-1 * time.Second), LastPostAt: in, Locked: true})
	fa.Add(model.Thread{CreatedAt: in.Add(-2 * time.Second), LastPostAt: in, Locked: true})
	assert.Equal(t, int64(2), fa.Finalize().AvgCloseSeconds)

	assert.Equal(t, int64(0), NewForumAccumulator(1, p).Finalize().AvgCloseSeconds)
}

func TestRankClosers(t *testing.T) {
	stats := model.ForumStats{Closed: 3, Closers: []model.Closer{{Name: "Ivan", Count: 2}, {Name: "Anna", Count: 1}}}
	assert.Equal(t, []string{"🥇 Ivan: 2 (66.67%)", "🥈 Anna: 1 (33.33%)"}, RankClosers(stats, 10))

	stats.Closed = 0
	assert.Equal(t, []string{"🥇 Ivan: 2 (0.00%)", "🥈 Anna: 1 (0.00%)"}, RankClosers(stats, 10))

	many := model.ForumStats{Closed: 12}
	for i := 0; i < 12; i++ {
		many.Closers = append(many.Closers, model.Closer{Name: string(rune('a' + i)), Count: 1})
	}
	lines := RankClosers(many, 10)
	require.Len(t, lines, 10)
	assert.Equal(t, "🔟 j: 1 (8.33%)", lines[9])
}

func TestGroupAccumulatorGates(t *testing.T) {
	p := week()
	in := p.Start.Add(time.Hour)
	before := p.Start.Add(-time.Hour)

	roster := model.NewAdminRoster()
	roster.AllowedNicks["ivan"] = struct{}{}

	ga := NewGroupAccumulator(p, roster)
	ga.Add(model.Thread{LastAuthor: "Ivan", CreatedAt: in, LastPostAt: in})
	ga.Add(model.Thread{LastAuthor: "Ivan", CreatedAt: before, LastPostAt: in})
	ga.Add(model.Thread{LastAuthor: "Ivan", CreatedAt: in, LastPostAt: time.Time{}})
	ga.Add(model.Thread{LastAuthor: "Stranger", CreatedAt: in, LastPostAt: in})

	act := ga.Activity()
	assert.Equal(t, 2, act.Created["ivan"].Value)
	assert.Equal(t, 2, act.LastReply["ivan"].Value)
	assert.NotContains(t, act.Created, "stranger")

	open := NewGroupAccumulator(p, nil)
	open.Add(model.Thread{LastAuthor: "Stranger", CreatedAt: in, LastPostAt: in})
	assert.Equal(t, 1, open.Activity().Created["stranger"].Value)
}

type fakeScraper struct {
	scans map[int]*xf_scraper.ForumScan
	err   map[int]error
	calls []int
}

func (f *fakeScraper) Scrape(_ context.Context, forumID int, _ model.Period) (*xf_scraper.ForumScan, error) {
	f.calls = append(f.calls, forumID)
	if err := f.err[forumID]; err != nil {
		return nil, err
	}
	if scan := f.scans[forumID]; scan != nil {
		return scan, nil
	}
	return &xf_scraper.ForumScan{ForumID: forumID, Pages: 1}, nil
}

func testConfig() *model.ForumConfig {
	cfg := &model.ForumConfig{Groups: []model.ForumGroup{
		{Key: "complaints", Forums: []model.Forum{{ID: 1}, {ID: 2}}},
		{Key: "appeals", Forums: []model.Forum{{ID: 2}, {ID: 3}}},
	}}
	cfg.Normalize()
	return cfg
}

func TestEngineRunScrapesEachForumOnce(t *testing.T) {
	p := week()
	in := p.Start.Add(time.Hour)
	fs := &fakeScraper{scans: map[int]*xf_scraper.ForumScan{
		2: {ForumID: 2, Pages: 1, Threads: []model.Thread{{LastAuthor: "Ivan", CreatedAt: in, LastPostAt: in, Locked: true}}},
	}}

	data, err := NewEngine(fs, zap.NewNop().Sugar(), nil).Run(context.Background(), testConfig(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, fs.calls)
	assert.Len(t, data.Stats, 3)
	assert.Equal(t, 1, data.Stats[2].Closed)
	assert.Equal(t, 1, data.Groups["complaints"].LastReply["ivan"].Value)
	assert.Equal(t, 1, data.Groups["appeals"].Created["ivan"].Value)
	assert.False(t, data.FetchedAt.IsZero())
}

func TestEngineRunAbortsOnScrapeError(t *testing.T) {
	fs := &fakeScraper{err: map[int]error{2: model.ErrNotAuthorized}}

	data, err := NewEngine(fs, zap.NewNop().Sugar(), nil).Run(context.Background(), testConfig(), week(), nil)
	require.Nil(t, data)
	require.True(t, errors.Is(err, model.ErrNotAuthorized))
	assert.Equal(t, []int{1, 2}, fs.calls)
}

func TestEngineRunWithoutForums(t *testing.T) {
	_, err := NewEngine(&fakeScraper{}, zap.NewNop().Sugar(), nil).Run(context.Background(), &model.ForumConfig{}, week(), nil)
	require.True(t, errors.Is(err, model.ErrConfigUnavailable))
}

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/configuration"
	"github.com/zvonler/adminreport/database"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
	"github.com/zvonler/adminreport/reportstate"
)

const dashboardPage = `<html><body>
<div class="period-info"><span id="period-start">04.03.2024</span> - <span id="period-end">10.03.2024</span></div>
<table>
 <tr><th>Ник</th><th>Уровень</th><th>Репорты</th><th>Онлайн</th></tr>
 <tr><td>Petr</td><td>3</td><td>240</td><td>30:00:00</td></tr>
 <tr><td>Anna</td><td>2</td><td>12</td><td>0:00:00</td></tr>
 <tr><td>Guest</td><td>6</td><td>0</td><td>0:00:00</td></tr>
</table>
</body></html>`

const rosterJSON = `{"admins": [
 {"nick": "Ivan", "level": 2, "vk": "id1"},
 {"nick": "Anna", "level": 2},
 {"nick": "Petr", "level": 3, "vk": "id3"}
]}`

const inactivesJSON = `{"data": {"rows": [
 {"id": 7, "nick": "Anna", "date_start": "2024-03-01", "date_end": "2024-03-20", "status": 1}
]}}`

const forumBase = "https://forum.example.com"

type staticDashboard string

func (d staticDashboard) Document(context.Context) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(string(d)))
}

type fakeFetcher struct {
	mu     sync.Mutex
	calls  map[relay.RequestType]int
	forums map[string]string
}

func (f *fakeFetcher) count(t relay.RequestType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[t]
}

func (f *fakeFetcher) Fetch(_ context.Context, req relay.Request) (*relay.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[relay.RequestType]int)
	}
	f.calls[req.Type]++

	switch req.Type {
	case relay.AdminList:
		return &relay.Response{OK: true, Data: []byte(rosterJSON)}, nil
	case relay.Inactives:
		return &relay.Response{OK: true, Data: []byte(inactivesJSON)}, nil
	case relay.AdminInfo:
		if req.VKID == "id1" {
			return &relay.Response{OK: true, Data: []byte(`{"response": {"admin": {"remark": "новичок, стажировка"}}}`)}, nil
		}
		return nil, errors.New("unexpected vk id " + req.VKID)
	case relay.ForumHTML:
		if body, ok := f.forums[req.URL]; ok {
			return &relay.Response{OK: true, HTML: body}, nil
		}
	}
	return &relay.Response{OK: false, Error: "not found"}, nil
}

func forumPage() string {
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local)
	return fmt.Sprintf(`<html><body>
<div class="structItem structItem--thread is-locked" data-author="Player">
 <div class="structItem-title"><a data-tp-primary="on" href="/threads/a.1/">Жалоба</a></div>
 <ul><li class="structItem-startDate"><time data-time="%d"></time></li></ul>
 <div class="structItem-cell structItem-cell--latest"><time data-time="%d"></time><a class="username">Ivan</a></div>
</div>
</body></html>`, created.Unix(), created.Add(90*time.Minute).Unix())
}

func forumConfig() *model.ForumConfig {
	return &model.ForumConfig{
		ServerTitle:    "Red",
		DailyNormHours: 3,
		Groups: []model.ForumGroup{
			{Key: "complaints", Title: "Жалобы", Forums: []model.Forum{{ID: 12, Title: "Жалобы на игроков"}}},
		},
	}
}

func newSession(t *testing.T, f *fakeFetcher, d DashboardSource, archive Archive) *Session {
	t.Helper()
	return New(Options{
		Settings: configuration.Settings{
			ForumBaseURL: forumBase,
			AdminListURL: "https://admin.example/list",
			AdminInfoURL: "https://admin.example/info",
			InactivesURL: "https://admin.example/inactives",
		},
		Config:    forumConfig(),
		Fetcher:   f,
		Dashboard: d,
		Archive:   archive,
		Logger:    zap.NewNop().Sugar(),
	})
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{forums: map[string]string{forumBase + "/forums/12/": forumPage()}}
}

func TestAdminReportIncludesMissingRosterAdmins(t *testing.T) {
	f := newFetcher()
	s := newSession(t, f, staticDashboard(dashboardPage), nil)

	text, err := s.AdminReport(context.Background(), AdminReportOptions{IncludeMissing: true, WithNotes: true})
	require.NoError(t, err)

	assert.Contains(t, text, "📅 Период: 04.03.2024 - 10.03.2024 (7 дн.)")
	assert.Contains(t, text, "• Ivan | 📨 0 | 🕒 00:00:00")
	assert.NotContains(t, text, "Guest")
	// Anna is inactive for the whole week, Ivan is not.
	assert.Contains(t, text, "⚠️ Не выполнили норму онлайна (1):\n• Ivan: 00:00:00 из 21:00:00 📝 новичок, стажировка")
	assert.Contains(t, text, "• Anna: 01.03.2024 - 20.03.2024 ✅ одобрен")
	assert.Contains(t, text, "🥇 Petr: 240")

	assert.Equal(t, 1, f.count(relay.AdminList))
	assert.Equal(t, 1, f.count(relay.AdminInfo))

	// Notes are cached for the session.
	_, err = s.AdminReport(context.Background(), AdminReportOptions{IncludeMissing: true, WithNotes: true})
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(relay.AdminInfo))
	assert.Equal(t, "новичок, стажировка", s.Notes()["ivan"])
}

func TestForumReportIsCachedPerPeriod(t *testing.T) {
	f := newFetcher()
	s := newSession(t, f, staticDashboard(dashboardPage), nil)

	first, err := s.ForumReport(context.Background())
	require.NoError(t, err)
	second, err := s.ForumReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.count(relay.ForumHTML))
	assert.Contains(t, first, "📂 Жалобы\n🆕 Созданные темы (1):\n🥇 Ivan: 1")
	assert.Contains(t, first, "Закрыли:\n🥇 Ivan: 1 (100.00%)")
	assert.Contains(t, first, "⏱ Среднее время до закрытия: 01:30:00")
	assert.Equal(t, reportstate.Ready, s.ReportState().Status)

	s.SetConfig(*forumConfig())
	assert.Equal(t, reportstate.Idle, s.ReportState().Status)
	_, err = s.ForumReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.count(relay.ForumHTML))
}

func TestAdminReportUsesCachedForumReplies(t *testing.T) {
	f := newFetcher()
	s := newSession(t, f, staticDashboard(dashboardPage), nil)

	text, err := s.AdminReport(context.Background(), AdminReportOptions{IncludeMissing: true})
	require.NoError(t, err)
	assert.NotContains(t, text, "💬")
	assert.Equal(t, 0, f.count(relay.ForumHTML))

	_, err = s.ForumReport(context.Background())
	require.NoError(t, err)

	text, err = s.AdminReport(context.Background(), AdminReportOptions{IncludeMissing: true})
	require.NoError(t, err)
	assert.Contains(t, text, "• Ivan | 📨 0 | 🕒 00:00:00 | 💬 1")
	assert.Contains(t, text, "• Petr | 📨 240 | 🕒 30:00:00 | 💬 0")
	assert.Equal(t, 1, f.count(relay.ForumHTML))
}

func TestForumReportLoginWall(t *testing.T) {
	f := &fakeFetcher{forums: map[string]string{forumBase + "/forums/12/": `<html data-template="login"></html>`}}
	s := newSession(t, f, staticDashboard(dashboardPage), nil)

	text, err := s.ForumReport(context.Background())
	require.True(t, errors.Is(err, model.ErrNotAuthorized))
	assert.Contains(t, text, "❌ Не удалось загрузить статистику форума: Нет доступа к форуму")
	assert.Equal(t, reportstate.Error, s.ReportState().Status)
}

func TestReportsWithoutPeriod(t *testing.T) {
	s := newSession(t, newFetcher(), staticDashboard(`<html><body>nothing here</body></html>`), nil)

	text, err := s.ForumReport(context.Background())
	require.True(t, errors.Is(err, model.ErrPeriodNotFound))
	assert.Contains(t, text, "Период отчёта не найден")

	text, err = s.AdminReport(context.Background(), AdminReportOptions{})
	require.True(t, errors.Is(err, model.ErrPeriodNotFound))
	assert.Contains(t, text, "Период отчёта не найден")
}

func TestReloadConfigKeepsPreviousOnFailure(t *testing.T) {
	s := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Config:     forumConfig(),
		Fetcher:    newFetcher(),
		Logger:     zap.NewNop().Sugar(),
	})

	err := s.ReloadConfig()
	require.True(t, errors.Is(err, model.ErrConfigUnavailable))
	assert.Equal(t, "Red", s.Config().ServerTitle)
}

func TestFileDashboardAndArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.html")
	require.NoError(t, os.WriteFile(path, []byte(dashboardPage), 0o644))

	archive, err := database.OpenArchiveDB(filepath.Join(dir, "archive.db"))
	require.NoError(t, err)
	defer archive.Close()

	f := newFetcher()
	s := newSession(t, f, NewDashboardSource(path, f), archive)

	p, err := s.ResolvePeriod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04_2024-03-10", p.Key())

	_, err = s.ForumData(context.Background())
	require.NoError(t, err)

	threads, err := archive.ListThreads(database.ThreadFilter{})
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Ivan", threads[0].LastAuthor)

	runs, err := archive.Runs(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ready", runs[0].Status)
	assert.Equal(t, s.ReportState().RunID, runs[0].RunID)
}

func TestNewDashboardSource(t *testing.T) {
	assert.IsType(t, RemoteDashboard{}, NewDashboardSource("https://admin.example/stats", nil))
	assert.IsType(t, FileDashboard{}, NewDashboardSource("saved.html", nil))
}

// Package session owns the per-process state behind both reports: the forum
// configuration, the admin roster, inactivity and note caches, and the forum
// report state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zvonler/adminreport/adminapi"
	"github.com/zvonler/adminreport/aggregate"
	"github.com/zvonler/adminreport/configuration"
	"github.com/zvonler/adminreport/dashboard"
	"github.com/zvonler/adminreport/database"
	"github.com/zvonler/adminreport/metrics"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/period"
	"github.com/zvonler/adminreport/relay"
	"github.com/zvonler/adminreport/report"
	"github.com/zvonler/adminreport/reportstate"
	"github.com/zvonler/adminreport/xf_scraper"
)

// Archive is the optional sink for scraped threads and run outcomes.
type Archive interface {
	xf_scraper.Archive
	RecordRun(run database.ScrapeRun) error
}

type Options struct {
	Settings   configuration.Settings
	ConfigPath string
	Config     *model.ForumConfig
	Fetcher    relay.Fetcher
	Dashboard  DashboardSource
	Archive    Archive
	Metrics    *metrics.Metrics
	Logger     *zap.SugaredLogger
}

type Session struct {
	mu            sync.Mutex
	settings      configuration.Settings
	configPath    string
	config        model.ForumConfig
	roster        *model.AdminRoster
	inactivity    *model.InactivityRecord
	inactivityKey string

	fetcher   relay.Fetcher
	dashboard DashboardSource
	archive   Archive
	notes     *adminapi.NoteCache
	engine    *aggregate.Engine
	machine   *reportstate.Machine
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Session{
		settings:   opts.Settings,
		configPath: opts.ConfigPath,
		fetcher:    opts.Fetcher,
		dashboard:  opts.Dashboard,
		archive:    opts.Archive,
		notes:      adminapi.NewNoteCache(logger),
		metrics:    opts.Metrics,
		logger:     logger,
	}

	if opts.Config != nil {
		s.config = *opts.Config
		s.config.Normalize()
	} else {
		s.config = configuration.DefaultForumConfig()
		if err := s.ReloadConfig(); err != nil {
			logger.Warnw("using default forum configuration", "error", err)
		}
	}

	if len(s.config.Forums) == 0 {
		logger.Warnw("no forums configured, forum reports are unavailable", "config", opts.ConfigPath)
	}

	scraper := xf_scraper.NewForumScraper(opts.Fetcher, opts.Settings.ForumBaseURL, logger).WithMetrics(opts.Metrics)
	if opts.Archive != nil {
		scraper.WithArchive(opts.Archive)
	}
	s.engine = aggregate.NewEngine(scraper, logger, opts.Metrics)
	s.machine = reportstate.NewMachine(s.runForumAggregation, logger, opts.Metrics)
	return s
}

func (s *Session) Config() model.ForumConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetConfig installs cfg and drops any cached forum report.
func (s *Session) SetConfig(cfg model.ForumConfig) {
	cfg.Normalize()
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	s.machine.Reset()
	s.logger.Infow("forum configuration updated", "groups", len(cfg.Groups), "forums", len(cfg.Forums))
}

// ReloadConfig rereads the configuration file. On failure the current
// configuration stays in effect.
func (s *Session) ReloadConfig() error {
	cfg, err := configuration.LoadForumConfig(s.configPath)
	if err != nil {
		s.logger.Warnw("forum configuration unavailable, keeping previous", "path", s.configPath, "error", err)
		return err
	}
	if s.machine == nil {
		s.mu.Lock()
		s.config = cfg
		s.mu.Unlock()
		return nil
	}
	s.SetConfig(cfg)
	return nil
}

func (s *Session) Roster() *model.AdminRoster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster
}

func (s *Session) Inactivity() *model.InactivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inactivity
}

func (s *Session) ReportState() reportstate.State {
	return s.machine.Snapshot()
}

func (s *Session) Notes() map[string]string {
	return s.notes.Snapshot()
}

func (s *Session) ResolvePeriod(ctx context.Context) (model.Period, error) {
	if s.dashboard == nil {
		return model.Period{}, fmt.Errorf("%w: no dashboard source", model.ErrPeriodNotFound)
	}
	doc, err := s.dashboard.Document(ctx)
	if err != nil {
		return model.Period{}, fmt.Errorf("%w: %v", model.ErrPeriodNotFound, err)
	}
	return period.Resolve(doc)
}

// AdminEntries parses the dashboard admin table and filters it against the
// cached roster.
func (s *Session) AdminEntries(ctx context.Context, includeMissing bool) ([]model.AdminEntry, error) {
	if s.dashboard == nil {
		return nil, errors.New("no dashboard source")
	}
	doc, err := s.dashboard.Document(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := dashboard.ParseAdminTable(doc)
	if err != nil {
		return nil, err
	}
	return dashboard.Filter(entries, s.Roster(), includeMissing), nil
}

func (s *Session) SyncRoster(ctx context.Context) (*model.AdminRoster, error) {
	roster, err := adminapi.FetchAdminList(ctx, s.fetcher, s.settings.AdminListURL)
	if err != nil {
		s.metrics.FetchError("admin_list")
		return nil, err
	}
	s.mu.Lock()
	s.roster = roster
	s.mu.Unlock()
	s.logger.Infow("admin roster synced", "admins", len(roster.AllowedNicks))
	return roster, nil
}

// LoadInactives fetches inactivity windows for the dashboard period. The
// result is cached per period.
func (s *Session) LoadInactives(ctx context.Context) (*model.InactivityRecord, error) {
	var p *model.Period
	key := ""
	if resolved, err := s.ResolvePeriod(ctx); err == nil {
		p = &resolved
		key = resolved.Key()
	} else {
		s.logger.Warnw("loading inactives without a period", "error", err)
	}

	record, err := adminapi.FetchInactivesForPeriod(ctx, s.fetcher, s.settings.InactivesURL, p)
	if err != nil {
		s.metrics.FetchError("inactives")
		return nil, err
	}
	s.mu.Lock()
	s.inactivity = record
	s.inactivityKey = key
	s.mu.Unlock()
	return record, nil
}

// ForumData requests the forum aggregation for the dashboard period, reusing
// a finished or in-flight run for the same period.
func (s *Session) ForumData(ctx context.Context) (*model.ForumReportData, error) {
	p, err := s.ResolvePeriod(ctx)
	if err != nil {
		return nil, err
	}
	return s.machine.Request(ctx, p)
}

// ForumReport renders the forum report, running the aggregation if needed.
// The report text is produced even when the run fails.
func (s *Session) ForumReport(ctx context.Context) (string, error) {
	cfg := s.Config()
	p, err := s.ResolvePeriod(ctx)
	if err != nil {
		s.metrics.ReportRequest("forum", "no_period")
		return report.BuildForumReport(report.ForumReportInput{Config: &cfg}), err
	}

	_, runErr := s.machine.Request(ctx, p)
	s.metrics.ReportRequest("forum", outcome(runErr))
	text := report.BuildForumReport(report.ForumReportInput{Period: &p, Config: &cfg, State: s.machine.Snapshot()})
	return text, runErr
}

type AdminReportOptions struct {
	IncludeMissing bool
	SyncRoster     bool
	LoadInactives  bool
	WithNotes      bool
	WithForum      bool
}

// AdminReport renders the admin report. Optional steps that fail are logged
// and the report is built from whatever is cached.
func (s *Session) AdminReport(ctx context.Context, opts AdminReportOptions) (string, error) {
	cfg := s.Config()

	p, err := s.ResolvePeriod(ctx)
	if err != nil {
		s.metrics.ReportRequest("admin", "no_period")
		return report.BuildAdminReport(report.AdminReportInput{Config: &cfg}), err
	}

	if opts.SyncRoster || s.Roster() == nil {
		if _, err := s.SyncRoster(ctx); err != nil {
			s.logger.Warnw("roster sync failed", "error", err)
		}
	}

	s.mu.Lock()
	stale := s.inactivity == nil || s.inactivityKey != p.Key()
	s.mu.Unlock()
	if opts.LoadInactives || stale {
		if _, err := s.LoadInactives(ctx); err != nil {
			s.logger.Warnw("loading inactives failed", "error", err)
		}
	}

	entries, err := s.AdminEntries(ctx, opts.IncludeMissing)
	if err != nil {
		s.metrics.ReportRequest("admin", "error")
		return "", err
	}

	roster := s.Roster()
	inactivity := s.Inactivity()

	if opts.WithNotes {
		var nicks []string
		for _, sa := range report.ShortAdmins(p, entries, inactivity, cfg.DailyNormHours) {
			nicks = append(nicks, sa.Entry.Nickname)
		}
		s.notes.Enrich(ctx, s.fetcher, s.settings.AdminInfoURL, nicks, roster)
	}

	// A ready forum result for this period is used even when no run is requested.
	if opts.WithForum {
		if _, err := s.machine.Request(ctx, p); err != nil {
			s.logger.Warnw("forum data unavailable for admin report", "error", err)
		}
	}
	forumState := s.machine.Snapshot()

	s.metrics.ReportRequest("admin", "ok")
	return report.BuildAdminReport(report.AdminReportInput{
		Period:     &p,
		Config:     &cfg,
		Entries:    entries,
		Roster:     roster,
		Notes:      s.notes.Snapshot(),
		Inactivity: inactivity,
		ForumState: &forumState,
	}), nil
}

func (s *Session) runForumAggregation(ctx context.Context, p model.Period) (*model.ForumReportData, error) {
	cfg := s.Config()
	started := time.Now()

	data, err := s.engine.Run(ctx, &cfg, p, s.Roster())

	if s.archive != nil {
		run := database.ScrapeRun{PeriodKey: p.Key(), Started: started, Finished: time.Now(), Status: string(reportstate.Ready)}
		if st := s.machine.Snapshot(); st.Key == p.Key() {
			run.RunID = st.RunID
		}
		if err != nil {
			run.Status = string(reportstate.Error)
			run.Error = err.Error()
		}
		if aerr := s.archive.RecordRun(run); aerr != nil {
			s.logger.Warnw("recording scrape run failed", "error", aerr)
		}
	}
	return data, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotAuthorized):
		return "not_authorized"
	default:
		return "error"
	}
}

package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zvonler/adminreport/metrics"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/xf_scraper"
)

type Scraper interface {
	Scrape(ctx context.Context, forumID int, period model.Period) (*xf_scraper.ForumScan, error)
}

type Engine struct {
	scraper Scraper
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewEngine(scraper Scraper, logger *zap.SugaredLogger, m *metrics.Metrics) *Engine {
	return &Engine{scraper: scraper, logger: logger, metrics: m}
}

// Run scrapes every configured forum once, in configuration order, and feeds
// the group and forum accumulators. The first scrape failure aborts the run,
// since partial data would understate the counters.
func (e *Engine) Run(ctx context.Context, cfg *model.ForumConfig, period model.Period, roster *model.AdminRoster) (*model.ForumReportData, error) {
	if cfg == nil || len(cfg.Forums) == 0 {
		return nil, fmt.Errorf("%w: no forums configured", model.ErrConfigUnavailable)
	}
	started := time.Now()

	scans := make(map[int]*xf_scraper.ForumScan)
	for _, forum := range cfg.Forums {
		if _, done := scans[forum.ID]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scan, err := e.scraper.Scrape(ctx, forum.ID, period)
		if err != nil {
			return nil, err
		}
		e.logger.Infow("forum scanned", "forum", forum.ID, "pages", scan.Pages, "threads", len(scan.Threads))
		scans[forum.ID] = scan
	}

	data := &model.ForumReportData{
		FetchedAt: time.Now(),
		Stats:     make(map[int]model.ForumStats, len(scans)),
		Groups:    make(map[string]model.GroupActivity, len(cfg.Groups)),
	}

	for id, scan := range scans {
		fa := NewForumAccumulator(id, period)
		fa.SetPages(scan.Pages)
		for _, t := range scan.Threads {
			fa.Add(t)
		}
		data.Stats[id] = fa.Finalize()
	}

	for _, g := range cfg.Groups {
		ga := NewGroupAccumulator(period, roster)
		for _, f := range g.Forums {
			if scan := scans[f.ID]; scan != nil {
				for _, t := range scan.Threads {
					ga.Add(t)
				}
			}
		}
		data.Groups[g.Key] = ga.Activity()
	}

	e.metrics.ObserveScrape(time.Since(started).Seconds())
	return data, nil
}

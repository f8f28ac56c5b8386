package xf_scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/metrics"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
)

// MaxPages caps how many listing pages are read per forum.
const MaxPages = 50

// Archive receives every parsed listing page.
type Archive interface {
	RecordThreads(forumURL string, threads []model.Thread) error
}

type ForumScan struct {
	ForumID int
	Pages   int
	Threads []model.Thread
}

type ForumScraper struct {
	fetcher relay.Fetcher
	baseURL string
	logger  *zap.SugaredLogger
	archive Archive
	metrics *metrics.Metrics
}

func NewForumScraper(fetcher relay.Fetcher, baseURL string, logger *zap.SugaredLogger) *ForumScraper {
	return &ForumScraper{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (fs *ForumScraper) WithArchive(a Archive) *ForumScraper {
	fs.archive = a
	return fs
}

func (fs *ForumScraper) WithMetrics(m *metrics.Metrics) *ForumScraper {
	fs.metrics = m
	return fs
}

func (fs *ForumScraper) ForumURL(forumID int) string {
	return fmt.Sprintf("%s/forums/%d/", fs.baseURL, forumID)
}

// Scrape walks the forum's listing pages newest-first. It stops at the page
// cap, on a revisited URL, on an empty page, when a whole page is older than
// the period, or when there is no next page. A login wall fails the scan.
func (fs *ForumScraper) Scrape(ctx context.Context, forumID int, period model.Period) (*ForumScan, error) {
	scan := &ForumScan{ForumID: forumID}
	visited := make(map[string]bool)
	forumURL := fs.ForumURL(forumID)

	for pageURL := forumURL; pageURL != "" && scan.Pages < MaxPages && !visited[pageURL]; {
		visited[pageURL] = true

		page, err := fs.fetchPage(ctx, pageURL)
		if err != nil {
			fs.metrics.FetchError("forum")
			return nil, fmt.Errorf("forum %d: %w", forumID, err)
		}
		if page.LoginWall {
			fs.metrics.FetchError("login_wall")
			return nil, fmt.Errorf("forum %d: %w", forumID, model.ErrNotAuthorized)
		}
		scan.Pages++
		fs.metrics.PageScraped(forumID)
		fs.logger.Debugw("forum page parsed", "forum", forumID, "page", scan.Pages, "url", pageURL, "threads", len(page.Threads))

		if len(page.Threads) == 0 {
			break
		}
		scan.Threads = append(scan.Threads, page.Threads...)

		if fs.archive != nil {
			if err := fs.archive.RecordThreads(forumURL, page.Threads); err != nil {
				fs.logger.Warnw("archiving threads failed", "forum", forumID, "error", err)
			}
		}

		// Listings are ordered by last post, newest first: once a whole
		// page predates the period nothing further back can qualify.
		if latest := page.MaxLastPost(); !latest.IsZero() && latest.Before(period.Start) {
			break
		}
		pageURL = page.NextURL
	}

	return scan, nil
}

func (fs *ForumScraper) fetchPage(ctx context.Context, pageURL string) (ListingPage, error) {
	body, err := relay.HTML(ctx, fs.fetcher, relay.Request{Type: relay.ForumHTML, URL: pageURL})
	if err != nil {
		return ListingPage{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ListingPage{}, fmt.Errorf("%w: parsing %s: %v", model.ErrInvalidResponse, pageURL, err)
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ListingPage{}, fmt.Errorf("bad page URL %q: %w", pageURL, err)
	}
	return ParseListing(doc, u), nil
}

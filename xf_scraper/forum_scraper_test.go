package xf_scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
)

type pageFetcher struct {
	pages     map[string]string
	requested []string
}

func (f *pageFetcher) Fetch(_ context.Context, req relay.Request) (*relay.Response, error) {
	f.requested = append(f.requested, req.URL)
	body, ok := f.pages[req.URL]
	if !ok {
		return &relay.Response{OK: false, Error: "404"}, nil
	}
	return &relay.Response{OK: true, HTML: body}, nil
}

type memArchive struct {
	recorded map[string]int
}

func (a *memArchive) RecordThreads(forumURL string, threads []model.Thread) error {
	if a.recorded == nil {
		a.recorded = make(map[string]int)
	}
	a.recorded[forumURL] += len(threads)
	return nil
}

const base = "https://forum.example.com"

// listingPage renders one thread row per last-post time and an optional next link.
func listingPage(next string, lastPosts ...time.Time) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i, lp := range lastPosts {
		fmt.Fprintf(&b, `<div class="structItem structItem--thread" data-author="A%d">
<div class="structItem-title"><a data-tp-primary="on" href="/threads/t.%d/">T%d</a></div>
<ul><li class="structItem-startDate"><time data-time="%d"></time></li></ul>
<div class="structItem-cell structItem-cell--latest"><time data-time="%d"></time><a class="username">U%d</a></div>
</div>`, i, i, i, lp.Add(-time.Hour).Unix(), lp.Unix(), i)
	}
	if next != "" {
		fmt.Fprintf(&b, `<a class="pageNav-jump pageNav-jump--next" href="%s">next</a>`, next)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func testPeriod() model.Period {
	return model.NewPeriod(time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local), time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local))
}

func newScraper(f relay.Fetcher) *ForumScraper {
	return NewForumScraper(f, base+"/", zap.NewNop().Sugar())
}

func TestForumURL(t *testing.T) {
	assert.Equal(t, "https://forum.example.com/forums/12/", newScraper(nil).ForumURL(12))
}

func TestScrapeStopsWhenPageOlderThanPeriod(t *testing.T) {
	p := testPeriod()
	inside := p.Start.Add(48 * time.Hour)
	before := p.Start.Add(-time.Minute)

	f := &pageFetcher{pages: map[string]string{
		base + "/forums/7/":       listingPage("/forums/7/page-2", inside, inside.Add(-time.Hour)),
		base + "/forums/7/page-2": listingPage("/forums/7/page-3", before, before.Add(-time.Hour)),
		base + "/forums/7/page-3": listingPage("", before.Add(-48*time.Hour)),
	}}
	archive := &memArchive{}

	scan, err := newScraper(f).WithArchive(archive).Scrape(context.Background(), 7, p)
	require.NoError(t, err)
	assert.Equal(t, 2, scan.Pages)
	assert.Len(t, scan.Threads, 4)
	assert.Equal(t, []string{base + "/forums/7/", base + "/forums/7/page-2"}, f.requested)
	assert.Equal(t, 4, archive.recorded[base+"/forums/7/"])
}

func TestScrapeFollowsNextLinkUntilAbsent(t *testing.T) {
	p := testPeriod()
	inside := p.Start.Add(time.Hour)

	f := &pageFetcher{pages: map[string]string{
		base + "/forums/2/":       listingPage("page-2", inside),
		base + "/forums/2/page-2": listingPage("", inside),
	}}

	scan, err := newScraper(f).Scrape(context.Background(), 2, p)
	require.NoError(t, err)
	assert.Equal(t, 2, scan.Pages)
	assert.Len(t, scan.Threads, 2)
}

func TestScrapeStopsOnEmptyPage(t *testing.T) {
	p := testPeriod()
	f := &pageFetcher{pages: map[string]string{
		base + "/forums/3/":       listingPage("page-2", p.Start.Add(time.Hour)),
		base + "/forums/3/page-2": listingPage("page-3"),
		base + "/forums/3/page-3": listingPage("", p.Start.Add(time.Hour)),
	}}

	scan, err := newScraper(f).Scrape(context.Background(), 3, p)
	require.NoError(t, err)
	assert.Equal(t, 2, scan.Pages)
	assert.Len(t, scan.Threads, 1)
	assert.Len(t, f.requested, 2)
}

func TestScrapeCycleGuard(t *testing.T) {
	p := testPeriod()
	inside := p.Start.Add(time.Hour)
	f := &pageFetcher{pages: map[string]string{
		base + "/forums/4/":       listingPage("page-2", inside),
		base + "/forums/4/page-2": listingPage("/forums/4/", inside),
	}}

	scan, err := newScraper(f).Scrape(context.Background(), 4, p)
	require.NoError(t, err)
	assert.Equal(t, 2, scan.Pages)
	assert.Len(t, f.requested, 2)
}

func TestScrapePageCap(t *testing.T) {
	p := testPeriod()
	inside := p.Start.Add(time.Hour)
	pages := make(map[string]string)
	pages[base+"/forums/5/"] = listingPage("page-2", inside)
	for i := 2; i <= MaxPages+5; i++ {
		pages[fmt.Sprintf("%s/forums/5/page-%d", base, i)] = listingPage(fmt.Sprintf("page-%d", i+1), inside)
	}

	scan, err := newScraper(&pageFetcher{pages: pages}).Scrape(context.Background(), 5, p)
	require.NoError(t, err)
	assert.Equal(t, MaxPages, scan.Pages)
}

func TestScrapeLoginWallFails(t *testing.T) {
	p := testPeriod()
	f := &pageFetcher{pages: map[string]string{
		base + "/forums/6/":       listingPage("page-2", p.Start.Add(time.Hour)),
		base + "/forums/6/page-2": `<html data-template="login"><body></body></html>`,
	}}

	scan, err := newScraper(f).Scrape(context.Background(), 6, p)
	require.Nil(t, scan)
	require.True(t, errors.Is(err, model.ErrNotAuthorized))
}

func TestScrapeFetchFailureAborts(t *testing.T) {
	scan, err := newScraper(&pageFetcher{}).Scrape(context.Background(), 8, testPeriod())
	require.Nil(t, scan)
	require.True(t, errors.Is(err, model.ErrInvalidResponse))
}

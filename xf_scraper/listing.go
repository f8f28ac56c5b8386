package xf_scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/zvonler/adminreport/model"
)

// ListingPage is what one forum listing page yields.
type ListingPage struct {
	Threads   []model.Thread
	NextURL   string
	LoginWall bool
}

// MaxLastPost is the newest last-post time on the page, or zero.
func (p ListingPage) MaxLastPost() (latest time.Time) {
	for _, t := range p.Threads {
		if t.LastPostAt.After(latest) {
			latest = t.LastPostAt
		}
	}
	return
}

func ParseListing(doc *goquery.Document, pageURL *url.URL) ListingPage {
	page := ListingPage{LoginWall: IsLoginWall(doc)}
	if page.LoginWall {
		return page
	}

	root := doc.Selection
	for _, selector := range threadRowSelectors {
		rows := root.Find(selector)
		if rows.Length() == 0 {
			continue
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			page.Threads = append(page.Threads, parseThreadRow(row, pageURL))
		})
		break
	}

	if next := firstMatch(root, nextPageSelectors); next != nil {
		href, _ := next.Attr("href")
		page.NextURL = resolve(pageURL, href)
	}
	return page
}

func IsLoginWall(doc *goquery.Document) bool {
	if matchesAny(doc.Selection, loginWallSelectors) {
		return true
	}
	// Permission errors render the generic error template with a login prompt.
	if doc.Find(`html[data-template="error"]`).Length() > 0 {
		msg := strings.ToLower(visibleText(doc.Find(".blockMessage")))
		return strings.Contains(msg, "войти") || strings.Contains(msg, "log in")
	}
	return false
}

func parseThreadRow(row *goquery.Selection, pageURL *url.URL) model.Thread {
	t := model.Thread{
		CreatedAt:  parseTime(firstMatch(row, startDateSelectors)),
		LastPostAt: parseTime(firstMatch(row, latestTimeSelectors)),
		LastAuthor: visibleText(firstMatch(row, latestUserSelectors)),
		Prefix:     visibleText(firstMatch(row, prefixSelectors)),
	}

	if author, ok := row.Attr("data-author"); ok && author != "" {
		t.Starter = strings.TrimSpace(author)
	} else {
		t.Starter = visibleText(firstMatch(row, starterSelectors))
	}

	if title := firstMatch(row, titleSelectors); title != nil {
		t.Title = visibleText(title)
		href, _ := title.Attr("href")
		t.URL = resolve(pageURL, href)
	}

	t.Locked = matchesAny(row, lockedSelectors) || hasClass(row, "is-locked", "locked")
	t.Sticky = matchesAny(row, stickySelectors) || hasClass(row, "is-sticky", "sticky") ||
		row.ParentsFiltered(".structItemContainer-group--sticky").Length() > 0
	return t
}

package xf_scraper

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

/*---------------------------------------------------------------------------*/

// Each field is read through an ordered list of selectors; the first one that
// matches anything wins, so XenForo 2 markup is tried before older layouts.

var (
	threadRowSelectors  = []string{"div.structItem--thread", "li.discussionListItem", "div.discussionListItem"}
	startDateSelectors  = []string{"li.structItem-startDate time", ".structItem-startDate time", ".posterDate time", ".posterDate .DateTime"}
	latestTimeSelectors = []string{"div.structItem-cell--latest time", ".structItem-cell--latest time", ".lastPost time", ".lastPostInfo .DateTime"}
	latestUserSelectors = []string{"div.structItem-cell--latest .username", ".structItem-cell--latest a[data-user-id]", ".lastPost .username", ".lastPostInfo .username"}
	starterSelectors    = []string{".structItem-minor .username", ".posterDate .username"}
	titleSelectors      = []string{".structItem-title a[data-tp-primary]", ".structItem-title a:not(.labelLink)", "h3.title a.PreviewTooltip", "h3.title a"}
	prefixSelectors     = []string{".structItem-title .label", ".structItem-title .labelLink", ".title .prefix", ".prefix"}
	lockedSelectors     = []string{".structItem-status--locked", ".iconKey .locked"}
	stickySelectors     = []string{".structItem-status--sticky", ".iconKey .sticky"}
	nextPageSelectors   = []string{"a.pageNav-jump--next", "link[rel=next]", ".PageNav a[rel=next]"}
	loginWallSelectors  = []string{`html[data-template="login"]`, `.p-body-pageContent form[action*="login/login"]`, "form#pageLogin"}
)

func firstMatch(sel *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if found := sel.Find(s); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

func matchesAny(sel *goquery.Selection, selectors []string) bool {
	return firstMatch(sel, selectors) != nil
}

// visibleText joins the text nodes under sel, skipping scripts and styles,
// with non-breaking spaces and runs of whitespace collapsed.
func visibleText(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for _, n := range sel.Nodes {
		collect(n)
	}
	text := strings.ReplaceAll(b.String(), "\u00a0", " ")
	return strings.Join(strings.Fields(text), " ")
}

// parseTime reads a XenForo <time> element: data-time holds unix seconds,
// datetime an ISO timestamp.
func parseTime(sel *goquery.Selection) time.Time {
	if sel == nil {
		return time.Time{}
	}
	if dataTime, ok := sel.Attr("data-time"); ok {
		if tm, err := strconv.ParseInt(strings.TrimSpace(dataTime), 10, 64); err == nil && tm > 0 {
			return time.Unix(tm, 0)
		}
	}
	if dt, ok := sel.Attr("datetime"); ok {
		for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
			if tm, err := time.Parse(layout, dt); err == nil {
				return tm
			}
		}
	}
	return time.Time{}
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func hasClass(sel *goquery.Selection, names ...string) bool {
	for _, name := range names {
		if sel.HasClass(name) {
			return true
		}
	}
	return false
}

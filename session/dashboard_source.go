package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zvonler/adminreport/relay"
)

// DashboardSource supplies the admin dashboard page the period and admin
// table are read from.
type DashboardSource interface {
	Document(ctx context.Context) (*goquery.Document, error)
}

// FileDashboard reads a saved copy of the dashboard page.
type FileDashboard struct {
	Path string
}

func (d FileDashboard) Document(_ context.Context) (*goquery.Document, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return goquery.NewDocumentFromReader(f)
}

// RemoteDashboard fetches the dashboard through a relay.Fetcher.
type RemoteDashboard struct {
	Fetcher relay.Fetcher
	URL     string
}

func (d RemoteDashboard) Document(ctx context.Context) (*goquery.Document, error) {
	if d.URL == "" {
		return nil, fmt.Errorf("no dashboard URL configured")
	}
	body, err := relay.HTML(ctx, d.Fetcher, relay.Request{Type: relay.DashboardHTML, URL: d.URL})
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// NewDashboardSource treats location as a URL when it has an http(s) scheme
// and as a file path otherwise.
func NewDashboardSource(location string, f relay.Fetcher) DashboardSource {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return RemoteDashboard{Fetcher: f, URL: location}
	}
	return FileDashboard{Path: location}
}

package relay

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caffix/cloudflare-roundtripper/cfrt"
	"github.com/gocolly/colly"
	"go.uber.org/zap"
)

// Direct fetches without a relay. HTML pages go through a colly collector so
// Cloudflare challenges and the forum session cookie are handled the same way
// for every page; JSON endpoints use a plain HTTP client.
type Direct struct {
	collector  *colly.Collector
	httpClient *http.Client
	cookie     string
	logger     *zap.SugaredLogger
}

func NewDirect(cookie string, timeout time.Duration, logger *zap.SugaredLogger) (*Direct, error) {
	collector, err := newCollectorWithCFRoundtripper(timeout)
	if err != nil {
		return nil, err
	}
	d := &Direct{
		collector:  collector,
		httpClient: &http.Client{Timeout: timeout},
		cookie:     cookie,
		logger:     logger,
	}

	d.collector.OnRequest(func(r *colly.Request) {
		if d.cookie != "" {
			r.Headers.Set("Cookie", d.cookie)
		}
		d.logger.Debugw("direct fetch visiting", "url", r.URL.String())
	})
	d.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put("body", string(r.Body))
		r.Ctx.Put("status", r.StatusCode)
	})
	d.collector.OnError(func(r *colly.Response, err error) {
		d.logger.Warnw("direct fetch failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
	})

	return d, nil
}

func newCollectorWithCFRoundtripper(timeout time.Duration) (*colly.Collector, error) {
	collector := colly.NewCollector(
		colly.IgnoreRobotsTxt(),
		colly.UserAgent("Mozilla"),
		colly.AllowURLRevisit(),
	)
	// Login walls come back as 403 pages; let them through so they can be detected.
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(timeout)

	transport, err :=
		cfrt.New(&http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   15 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		})
	if err != nil {
		return nil, fmt.Errorf("creating cloudflare transport: %w", err)
	}
	collector.WithTransport(transport)
	return collector, nil
}

func (d *Direct) Fetch(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Type.IsHTML() {
		return d.fetchHTML(req)
	}
	return d.fetchJSON(ctx, req)
}

func (d *Direct) fetchHTML(req Request) (*Response, error) {
	cctx := colly.NewContext()
	if err := d.collector.Request(http.MethodGet, req.URL, nil, cctx, nil); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	status, _ := cctx.GetAny("status").(int)
	if !htmlStatusOK(status) {
		return &Response{OK: false, Error: fmt.Sprintf("HTTP %d", status)}, nil
	}
	return &Response{OK: true, HTML: cctx.Get("body")}, nil
}

// htmlStatusOK accepts success and the 401/403 pages XenForo serves as its
// login wall, which the listing parser detects itself.
func htmlStatusOK(status int) bool {
	switch {
	case status >= 200 && status < 300:
		return true
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return true
	}
	return false
}

func (d *Direct) fetchJSON(ctx context.Context, req Request) (*Response, error) {
	var httpReq *http.Request
	var err error
	if req.Type == AdminInfo {
		form := url.Values{"vkid": {req.VKID}}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, req.URL, strings.NewReader(form.Encode()))
		if err == nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	}
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if d.cookie != "" {
		httpReq.Header.Set("Cookie", d.cookie)
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &Response{OK: false, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}, nil
	}
	return &Response{OK: true, Data: body}, nil
}

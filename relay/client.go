package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/model"
)

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	HTML  string          `json:"html"`
	Error string          `json:"error"`
}

// Client talks to a relay service that performs fetches with the dashboard
// user's credentials.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries uint64
	logger     *zap.SugaredLogger
}

func NewClient(endpoint string, timeout time.Duration, maxRetries uint64, logger *zap.SugaredLogger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding relay request: %w", err)
	}

	var raw []byte
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("relay returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("relay returned status %d", resp.StatusCode))
		}
		raw, err = io.ReadAll(resp.Body)
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(250*time.Millisecond),
		backoff.WithMaxInterval(5*time.Second),
	), c.maxRetries)
	notify := func(err error, wait time.Duration) {
		c.logger.Debugw("relay fetch failed, retrying", "type", req.Type, "url", req.URL, "wait", wait, "error", err)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: relay envelope: %v", model.ErrInvalidResponse, err)
	}
	return &Response{OK: env.OK, Data: env.Data, HTML: env.HTML, Error: env.Error}, nil
}

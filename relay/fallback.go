package relay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Fallback prefers Primary and switches to Secondary for a request whenever
// Primary is missing or unreachable.
type Fallback struct {
	Primary   Fetcher
	Secondary Fetcher
	Logger    *zap.SugaredLogger
}

func (f *Fallback) Fetch(ctx context.Context, req Request) (*Response, error) {
	if f.Primary != nil {
		resp, err := f.Primary.Fetch(ctx, req)
		if err == nil || !errors.Is(err, ErrRelayUnavailable) || f.Secondary == nil {
			return resp, err
		}
		if f.Logger != nil {
			f.Logger.Warnw("relay unavailable, fetching directly", "type", req.Type, "url", req.URL, "error", err)
		}
	}
	if f.Secondary == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", ErrRelayUnavailable)
	}
	return f.Secondary.Fetch(ctx, req)
}

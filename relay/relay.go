// Package relay performs the cross-origin fetches the report engine needs,
// either through a relay service or directly with equivalent semantics.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/zvonler/adminreport/jsonvalue"
	"github.com/zvonler/adminreport/model"
)

type RequestType string

const (
	AdminList     RequestType = "adminList"
	AdminInfo     RequestType = "adminInfo"
	Inactives     RequestType = "inactives"
	ForumHTML     RequestType = "forumHtml"
	DashboardHTML RequestType = "dashboardHtml"
)

func (t RequestType) IsHTML() bool {
	return t == ForumHTML || t == DashboardHTML
}

type Request struct {
	Type RequestType `json:"type"`
	URL  string      `json:"url"`
	VKID string      `json:"vkid,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Data  []byte `json:"-"`
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// ErrRelayUnavailable means the relay could not be reached at all, as opposed
// to the relay reporting a failed upstream fetch.
var ErrRelayUnavailable = errors.New("relay unavailable")

// HTML fetches an HTML document, turning an ok=false response into ErrInvalidResponse.
func HTML(ctx context.Context, f Fetcher, req Request) (string, error) {
	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("%w: %s %s: %s", model.ErrInvalidResponse, req.Type, req.URL, resp.Error)
	}
	return resp.HTML, nil
}

// JSON fetches and parses a JSON payload.
func JSON(ctx context.Context, f Fetcher, req Request) (jsonvalue.Value, error) {
	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if !resp.OK {
		return jsonvalue.Value{}, fmt.Errorf("%w: %s %s: %s", model.ErrInvalidResponse, req.Type, req.URL, resp.Error)
	}
	v, err := jsonvalue.Parse(resp.Data)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("%w: %s: %v", model.ErrInvalidResponse, req.Type, err)
	}
	return v, nil
}

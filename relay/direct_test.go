package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/model"
)

func newDirectServer(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forums/1/":
			if r.Header.Get("Cookie") != "xf_session=abc" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte(`<html><body><div class="structItem--thread">row</div></body></html>`))
		case "/forums/2/":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`<html data-template="login"><body><form class="blockMessage">Log in</form></body></html>`))
		case "/api/admins":
			w.Write([]byte(`{"admins": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<html><body>Not found</body></html>`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDirect(t *testing.T) *Direct {
	d, err := NewDirect("xf_session=abc", 5*time.Second, zap.NewNop().Sugar())
	require.NoError(t, err)
	return d
}

func TestDirectHTMLSuccess(t *testing.T) {
	srv := newDirectServer(t)
	html, err := HTML(context.Background(), newTestDirect(t), Request{Type: ForumHTML, URL: srv.URL + "/forums/1/"})
	require.NoError(t, err)
	require.Contains(t, html, "structItem--thread")
}

func TestDirectHTMLPassesLoginWallThrough(t *testing.T) {
	srv := newDirectServer(t)
	html, err := HTML(context.Background(), newTestDirect(t), Request{Type: ForumHTML, URL: srv.URL + "/forums/2/"})
	require.NoError(t, err)
	require.Contains(t, html, `data-template="login"`)
}

func TestDirectHTMLNotFoundIsAnError(t *testing.T) {
	srv := newDirectServer(t)
	_, err := HTML(context.Background(), newTestDirect(t), Request{Type: ForumHTML, URL: srv.URL + "/forums/404/"})
	require.ErrorIs(t, err, model.ErrInvalidResponse)
	require.Contains(t, err.Error(), "HTTP 404")
}

func TestDirectJSON(t *testing.T) {
	srv := newDirectServer(t)
	d := newTestDirect(t)

	v, err := JSON(context.Background(), d, Request{Type: AdminList, URL: srv.URL + "/api/admins"})
	require.NoError(t, err)
	require.True(t, v.Field("admins").IsArray())

	_, err = JSON(context.Background(), d, Request{Type: Inactives, URL: srv.URL + "/api/missing"})
	require.ErrorIs(t, err, model.ErrInvalidResponse)
}

func TestDirectHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestDirect(t).Fetch(ctx, Request{Type: ForumHTML, URL: "http://127.0.0.1:1/"})
	require.ErrorIs(t, err, context.Canceled)
}

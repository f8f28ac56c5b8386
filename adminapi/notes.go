package adminapi

import (
	"context"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zvonler/adminreport/jsonvalue"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
)

// NoteScanDepth bounds the recursive note search below the payload root.
const NoteScanDepth = 3

var (
	notePaths = [][]string{
		{"note"},
		{"data", "note"},
		{"admin", "note"},
		{"data", "admin", "note"},
		{"comment"},
		{"data", "comment"},
		{"info", "note"},
		{"data", "info", "note"},
	}
	noteKeyPat = regexp.MustCompile(`(?i)note|comment|remark|примеч|коммент|замет`)
)

// ExtractNote returns the admin note embedded in an admin info payload.
func ExtractNote(payload jsonvalue.Value) string {
	for _, path := range notePaths {
		if v := payload.Get(path...); v.Kind() == jsonvalue.String && v.Text() != "" {
			return v.Text()
		}
	}
	if s, ok := payload.FindString(noteKeyPat, NoteScanDepth); ok {
		return s
	}
	return ""
}

// NoteCache holds notes per nickname for the life of the session.
type NoteCache struct {
	mu     sync.Mutex
	notes  map[string]string
	group  singleflight.Group
	logger *zap.SugaredLogger
}

func NewNoteCache(logger *zap.SugaredLogger) *NoteCache {
	return &NoteCache{notes: make(map[string]string), logger: logger}
}

func (c *NoteCache) Get(nick string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	note, ok := c.notes[model.NickKey(nick)]
	return note, ok
}

// Snapshot copies the cached notes keyed by NickKey.
func (c *NoteCache) Snapshot() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make(map[string]string, len(c.notes))
	for k, v := range c.notes {
		res[k] = v
	}
	return res
}

func (c *NoteCache) put(key, note string) {
	c.mu.Lock()
	c.notes[key] = note
	c.mu.Unlock()
}

// Enrich fetches notes for nicknames not cached yet. Admins without an
// external id get an empty note without a request; failed fetches are logged
// and cached as empty so one bad record does not abort the batch.
func (c *NoteCache) Enrich(ctx context.Context, f relay.Fetcher, url string, nicks []string, roster *model.AdminRoster) {
	for _, nick := range nicks {
		key := model.NickKey(nick)
		if _, ok := c.Get(key); ok {
			continue
		}
		c.group.Do(key, func() (interface{}, error) {
			if _, ok := c.Get(key); ok {
				return nil, nil
			}
			vk := ""
			if roster != nil {
				vk = roster.VKByNick[key]
			}
			if vk == "" {
				c.put(key, "")
				return nil, nil
			}
			payload, err := relay.JSON(ctx, f, relay.Request{Type: relay.AdminInfo, URL: url, VKID: vk})
			if err != nil {
				c.logger.Warnw("admin note fetch failed", "nick", nick, "error", err)
				c.put(key, "")
				return nil, nil
			}
			c.put(key, ExtractNote(payload))
			return nil, nil
		})
	}
}

package model

import (
	"strings"
	"time"
)

// Thread is one row of a forum listing page. Zero times mean the listing did
// not expose the value.
type Thread struct {
	URL        string
	Title      string
	Starter    string
	LastAuthor string
	CreatedAt  time.Time
	LastPostAt time.Time
	Locked     bool
	Sticky     bool
	Prefix     string
}

type AdminEntry struct {
	Nickname      string
	Level         int
	Reports       int
	OnlineSeconds *int64
}

func (e AdminEntry) Online() int64 {
	if e.OnlineSeconds == nil {
		return 0
	}
	return *e.OnlineSeconds
}

type AdminMeta struct {
	Nickname string
	Level    int
}

// AdminRoster is keyed by NickKey.
type AdminRoster struct {
	AllowedNicks map[string]struct{}
	VKByNick     map[string]string
	MetaByNick   map[string]AdminMeta
}

func NewAdminRoster() *AdminRoster {
	return &AdminRoster{
		AllowedNicks: make(map[string]struct{}),
		VKByNick:     make(map[string]string),
		MetaByNick:   make(map[string]AdminMeta),
	}
}

func (r *AdminRoster) Empty() bool {
	return r == nil || len(r.AllowedNicks) == 0
}

func (r *AdminRoster) Allows(nick string) bool {
	if r == nil {
		return false
	}
	_, ok := r.AllowedNicks[NickKey(nick)]
	return ok
}

// NickKey is the normalized form used for every nickname lookup.
func NickKey(nick string) string {
	return strings.ToLower(strings.TrimSpace(nick))
}

type InactiveRow struct {
	ID         int64
	UID        string
	UserID     string
	Nick       string
	DateStart  string
	DateEnd    string
	Status     string
	StatusCode *int
	StatusInfo string
	Start      time.Time
	End        time.Time
	Approved   bool
}

type InactivityRecord struct {
	Entries []InactiveRow
	ByNick  map[string]map[string]struct{}
}

func (r *InactivityRecord) DaysFor(nick string) int {
	if r == nil {
		return 0
	}
	return len(r.ByNick[NickKey(nick)])
}

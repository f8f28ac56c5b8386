// Package adminapi reads the admin JSON APIs: roster, inactivity requests and
// per-admin notes.
package adminapi

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/zvonler/adminreport/jsonvalue"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
)

var (
	levelFields   = []string{"level", "lvl", "admin_level", "adminLevel", "alvl", "rank"}
	levelFieldPat = regexp.MustCompile(`(?i)level|lvl|rank|уров`)
	vkFields      = []string{"vk", "vkid", "vk_id", "vkId", "vk_link", "vk_url"}
	nickFields    = []string{"nick", "nickname", "name", "login"}
	adminArrays   = [][]string{{"admins"}, {"data", "admins"}, {"data"}, {"list"}}
)

// FetchAdminList builds the roster from the admin list endpoint.
func FetchAdminList(ctx context.Context, f relay.Fetcher, url string) (*model.AdminRoster, error) {
	payload, err := relay.JSON(ctx, f, relay.Request{Type: relay.AdminList, URL: url})
	if err != nil {
		return nil, err
	}
	if marker := payload.Field("error"); marker.Exists() && marker.Text() != "" && marker.Text() != "false" {
		return nil, fmt.Errorf("%w: admin list error: %s", model.ErrInvalidResponse, marker.Text())
	}

	var admins jsonvalue.Value
	for _, path := range adminArrays {
		if v := payload.Get(path...); v.IsArray() {
			admins = v
			break
		}
	}
	if !admins.IsArray() {
		return nil, fmt.Errorf("%w: admin list has no admins array", model.ErrInvalidResponse)
	}

	roster := model.NewAdminRoster()
	for _, record := range admins.Items() {
		nick := strings.TrimSpace(firstText(record, nickFields))
		if nick == "" {
			continue
		}
		key := model.NickKey(nick)
		roster.AllowedNicks[key] = struct{}{}
		level, _ := ExtractLevel(record)
		roster.MetaByNick[key] = model.AdminMeta{Nickname: nick, Level: level}
		if vk := strings.TrimSpace(firstText(record, vkFields)); vk != "" {
			roster.VKByNick[key] = vk
		}
	}
	return roster, nil
}

// ExtractLevel checks the known level field names first, then any other field
// whose name looks like a level or rank, and returns the first integer found.
func ExtractLevel(record jsonvalue.Value) (int, bool) {
	for _, name := range levelFields {
		if n, ok := record.Field(name).Int(); ok {
			return int(n), true
		}
	}
	for _, m := range record.Members() {
		if !levelFieldPat.MatchString(m.Key) {
			continue
		}
		if n, ok := m.Value.Int(); ok {
			return int(n), true
		}
	}
	return 0, false
}

func firstText(record jsonvalue.Value, fields []string) string {
	for _, name := range fields {
		if s := record.Field(name).Text(); s != "" {
			return s
		}
	}
	return ""
}

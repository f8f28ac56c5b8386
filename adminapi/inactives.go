package adminapi

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zvonler/adminreport/jsonvalue"
	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
	"github.com/zvonler/adminreport/utils"
)

// InactiveLimit bounds how many of the most recent requests are considered.
const InactiveLimit = 100

var (
	approvedPat = regexp.MustCompile(`(?i)одобр|approved`)
	rejectedPat = regexp.MustCompile(`(?i)не\s*одобр|not approved|unapproved`)
)

// FetchInactivesForPeriod loads inactivity requests and credits every approved
// day that overlaps the period. A nil period keeps every parseable row and
// credits nothing.
func FetchInactivesForPeriod(ctx context.Context, f relay.Fetcher, url string, period *model.Period) (*model.InactivityRecord, error) {
	payload, err := relay.JSON(ctx, f, relay.Request{Type: relay.Inactives, URL: url})
	if err != nil {
		return nil, err
	}
	rows := payload.Get("data", "rows")
	if !rows.IsArray() {
		return nil, fmt.Errorf("%w: inactives payload has no data.rows", model.ErrInvalidResponse)
	}
	return BuildInactivity(rows.Items(), period), nil
}

func BuildInactivity(items []jsonvalue.Value, period *model.Period) *model.InactivityRecord {
	parsed := make([]model.InactiveRow, 0, len(items))
	for _, item := range items {
		parsed = append(parsed, parseInactiveRow(item))
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].ID > parsed[j].ID })
	if len(parsed) > InactiveLimit {
		parsed = parsed[:InactiveLimit]
	}

	rec := &model.InactivityRecord{ByNick: make(map[string]map[string]struct{})}
	for _, row := range parsed {
		start, okStart := utils.ParseDateFromAny(row.DateStart)
		end, okEnd := utils.ParseDateFromAny(row.DateEnd)
		if !okStart || !okEnd {
			continue
		}
		if end.Before(start) {
			start, end = end, start
		}
		row.Start, row.End = start, end

		if period == nil {
			rec.Entries = append(rec.Entries, row)
			continue
		}

		from, to := start, end
		if periodStart := period.Start; from.Before(periodStart) {
			from = periodStart
		}
		if last := period.LastDay(); to.After(last) {
			to = last
		}
		if to.Before(from) {
			continue
		}

		rec.Entries = append(rec.Entries, row)
		if !row.Approved {
			continue
		}
		key := model.NickKey(row.Nick)
		days := rec.ByNick[key]
		if days == nil {
			days = make(map[string]struct{})
			rec.ByNick[key] = days
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			days[utils.DayKey(d)] = struct{}{}
		}
	}
	return rec
}

func parseInactiveRow(item jsonvalue.Value) model.InactiveRow {
	row := model.InactiveRow{
		UID:        item.Field("uid").Text(),
		UserID:     item.Field("user_id").Text(),
		Nick:       strings.TrimSpace(item.Field("nick").Text()),
		DateStart:  item.Field("date_start").Text(),
		DateEnd:    item.Field("date_end").Text(),
		Status:     item.Field("status").Text(),
		StatusInfo: item.Field("status_info").Text(),
	}
	if id, ok := item.Field("id").Int(); ok {
		row.ID = id
	}

	status := item.Field("status")
	if status.Kind() == jsonvalue.Number || (status.Kind() == jsonvalue.String && isInteger(status.Text())) {
		if code, ok := status.Int(); ok {
			c := int(code)
			row.StatusCode = &c
		}
	}
	row.Approved = (row.StatusCode != nil && *row.StatusCode == 1) ||
		approvedText(row.Status) || approvedText(row.StatusInfo)
	return row
}

func approvedText(s string) bool {
	return approvedPat.MatchString(s) && !rejectedPat.MatchString(s)
}

func isInteger(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

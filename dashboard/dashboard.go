// Package dashboard reads the admin table from the dashboard page.
package dashboard

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/utils"
)

var ErrNoAdminTable = errors.New("admin table not found")

type column int

const (
	colNick column = iota
	colLevel
	colReports
	colOnline
	numColumns
)

var headerKeywords = [numColumns]*regexp.Regexp{
	colNick:    regexp.MustCompile(`(?i)ник|nick|имя`),
	colLevel:   regexp.MustCompile(`(?i)уров|lvl|level`),
	colReports: regexp.MustCompile(`(?i)репорт|жалоб|отчет|отчёт|report`),
	colOnline:  regexp.MustCompile(`(?i)онлайн|online|время`),
}

var digitsPat = regexp.MustCompile(`\d+`)

// ParseAdminTable finds the first table whose header names a nickname column
// and returns one entry per data row. Columns not recognized by header text
// fall back to positions 0..3.
func ParseAdminTable(doc *goquery.Document) ([]model.AdminEntry, error) {
	var table *goquery.Selection
	var headers []string
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		h := headerCells(t)
		for _, text := range h {
			if headerKeywords[colNick].MatchString(text) {
				table, headers = t, h
				return false
			}
		}
		return true
	})
	if table == nil {
		return nil, ErrNoAdminTable
	}

	idx := columnIndexes(headers)

	var entries []model.AdminEntry
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		cell := func(c column) string {
			i := idx[c]
			if i < 0 || i >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		nick := cell(colNick)
		if nick == "" {
			return
		}
		entry := model.AdminEntry{
			Nickname: nick,
			Level:    firstInt(cell(colLevel)),
			Reports:  firstInt(strings.ReplaceAll(cell(colReports), " ", "")),
		}
		if secs, ok := utils.ParseDurationToSeconds(cell(colOnline)); ok {
			entry.OnlineSeconds = &secs
		}
		entries = append(entries, entry)
	})
	return entries, nil
}

func headerCells(t *goquery.Selection) (res []string) {
	head := t.Find("thead th")
	if head.Length() == 0 {
		head = t.Find("tr").First().Find("th")
	}
	head.Each(func(_ int, th *goquery.Selection) {
		res = append(res, strings.TrimSpace(th.Text()))
	})
	return
}

func columnIndexes(headers []string) [numColumns]int {
	var idx [numColumns]int
	used := make(map[int]bool)
	for c := colNick; c < numColumns; c++ {
		idx[c] = -1
		for i, text := range headers {
			if !used[i] && headerKeywords[c].MatchString(text) {
				idx[c] = i
				used[i] = true
				break
			}
		}
	}
	for c := colNick; c < numColumns; c++ {
		if idx[c] < 0 && !used[int(c)] {
			idx[c] = int(c)
			used[int(c)] = true
		}
	}
	return idx
}

func firstInt(s string) int {
	if m := digitsPat.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

// Filter keeps admins of level 1..4. With a non-empty roster only roster
// members are kept, and includeMissing adds zeroed rows for roster admins the
// table does not list.
func Filter(entries []model.AdminEntry, roster *model.AdminRoster, includeMissing bool) []model.AdminEntry {
	res := make([]model.AdminEntry, 0, len(entries))
	seen := make(map[string]bool)
	for _, e := range entries {
		key := model.NickKey(e.Nickname)
		if !roster.Empty() {
			if !roster.Allows(key) {
				continue
			}
			if e.Level == 0 {
				e.Level = roster.MetaByNick[key].Level
			}
		}
		if e.Level < 1 || e.Level > 4 || seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, e)
	}

	if includeMissing && !roster.Empty() {
		for key := range roster.AllowedNicks {
			if seen[key] {
				continue
			}
			meta := roster.MetaByNick[key]
			if meta.Level < 1 || meta.Level > 4 {
				continue
			}
			name := meta.Nickname
			if name == "" {
				name = key
			}
			zero := int64(0)
			res = append(res, model.AdminEntry{Nickname: name, Level: meta.Level, OnlineSeconds: &zero})
			seen[key] = true
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Level != res[j].Level {
			return res[i].Level > res[j].Level
		}
		return strings.ToLower(res[i].Nickname) < strings.ToLower(res[j].Nickname)
	})
	return res
}

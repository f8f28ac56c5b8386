// Package aggregate turns scraped forum listings into per-group activity
// counters and per-forum statistics, and ranks them for the reports.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/zvonler/adminreport/model"
)

var medals = []string{"🥇", "🥈", "🥉"}

// Increment bumps the counter for key. The first non-empty display name seen
// for a key is kept.
func Increment(counts model.Counts, key, name string) {
	key = model.NickKey(key)
	if key == "" {
		return
	}
	c, ok := counts[key]
	if !ok {
		c = &model.Count{}
		counts[key] = c
	}
	if c.Name == "" {
		c.Name = name
	}
	c.Value++
}

type rankedCount struct {
	Key   string
	Name  string
	Value int
}

// sorted drops zero counts and orders by count descending, then name.
func sorted(counts model.Counts) []rankedCount {
	entries := make([]rankedCount, 0, len(counts))
	for key, c := range counts {
		if c == nil || c.Value <= 0 {
			continue
		}
		name := c.Name
		if name == "" {
			name = key
		}
		entries = append(entries, rankedCount{Key: key, Name: name, Value: c.Value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// FormatTopWithTies gives a medal to each of the three highest distinct
// counts. Everyone sharing a medal count gets a line; medals with no count
// get a "None" line.
func FormatTopWithTies(counts model.Counts) (lines []string) {
	entries := sorted(counts)

	rank := 0
	for i := 0; i < len(entries) && rank < len(medals); {
		value := entries[i].Value
		for ; i < len(entries) && entries[i].Value == value; i++ {
			lines = append(lines, fmt.Sprintf("%s %s: %d", medals[rank], entries[i].Name, value))
		}
		rank++
	}
	for ; rank < len(medals); rank++ {
		lines = append(lines, medals[rank]+" None")
	}
	return
}

func Total(counts model.Counts) (total int) {
	for _, c := range counts {
		if c != nil {
			total += c.Value
		}
	}
	return
}

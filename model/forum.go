package model

import "time"

type Forum struct {
	ID    int    `mapstructure:"id" yaml:"id" json:"id"`
	Title string `mapstructure:"title" yaml:"title" json:"title"`
}

type ForumGroup struct {
	Key      string  `mapstructure:"key" yaml:"key" json:"key"`
	Title    string  `mapstructure:"title" yaml:"title" json:"title"`
	Forums   []Forum `mapstructure:"forums" yaml:"forums" json:"forums"`
	ForumIDs []int   `mapstructure:"-" yaml:"-" json:"forumIds"`
}

type ForumConfig struct {
	ServerTitle         string       `mapstructure:"server_title" yaml:"server_title" json:"serverTitle"`
	ShowRewards         bool         `mapstructure:"show_rewards" yaml:"show_rewards" json:"showRewards"`
	RewardReportsStep   int          `mapstructure:"reward_reports_step" yaml:"reward_reports_step" json:"rewardReportsStep"`
	RewardAmountPerStep int          `mapstructure:"reward_amount_per_step" yaml:"reward_amount_per_step" json:"rewardAmountPerStep"`
	DailyNormHours      float64      `mapstructure:"daily_norm_hours" yaml:"daily_norm_hours" json:"dailyNormHours"`
	Groups              []ForumGroup `mapstructure:"groups" yaml:"groups" json:"groups"`
	Forums              []Forum      `mapstructure:"-" yaml:"-" json:"forums"`
}

// Normalize drops duplicate group keys and forum ids (first occurrence wins)
// and rebuilds the derived ForumIDs and Forums lists.
func (c *ForumConfig) Normalize() {
	seenKeys := make(map[string]bool)
	seenForums := make(map[int]bool)
	groups := make([]ForumGroup, 0, len(c.Groups))
	c.Forums = c.Forums[:0]

	for _, g := range c.Groups {
		if g.Key == "" || seenKeys[g.Key] {
			continue
		}
		seenKeys[g.Key] = true

		inGroup := make(map[int]bool)
		forums := make([]Forum, 0, len(g.Forums))
		for _, f := range g.Forums {
			if f.ID <= 0 || inGroup[f.ID] {
				continue
			}
			inGroup[f.ID] = true
			forums = append(forums, f)
			if !seenForums[f.ID] {
				seenForums[f.ID] = true
				c.Forums = append(c.Forums, f)
			}
		}
		g.Forums = forums
		g.ForumIDs = make([]int, len(forums))
		for i, f := range forums {
			g.ForumIDs[i] = f.ID
		}
		groups = append(groups, g)
	}
	c.Groups = groups
}

func (c *ForumConfig) ForumTitle(id int) string {
	for _, f := range c.Forums {
		if f.ID == id {
			return f.Title
		}
	}
	return ""
}

type Closer struct {
	Key   string
	Name  string
	Count int
}

type ForumStats struct {
	ForumID         int
	Pages           int
	Threads         int
	OnReview        int
	Pinned          int
	Unpinned        int
	Closed          int
	Open            int
	AvgCloseSeconds int64
	Closers         []Closer
}

// Count is one tallied identity; Name is the first non-empty display name seen.
type Count struct {
	Name  string
	Value int
}

// Counts is keyed by NickKey of the author.
type Counts map[string]*Count

type GroupActivity struct {
	Created   Counts
	LastReply Counts
}

type ForumReportData struct {
	RunID     string
	FetchedAt time.Time
	Stats     map[int]ForumStats
	Groups    map[string]GroupActivity
}

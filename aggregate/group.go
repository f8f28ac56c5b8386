package aggregate

import "github.com/zvonler/adminreport/model"

// GroupAccumulator tallies created and last-reply counters for one forum
// group, restricted to roster admins when a roster is known.
type GroupAccumulator struct {
	period   model.Period
	roster   *model.AdminRoster
	activity model.GroupActivity
}

func NewGroupAccumulator(period model.Period, roster *model.AdminRoster) *GroupAccumulator {
	return &GroupAccumulator{
		period: period,
		roster: roster,
		activity: model.GroupActivity{
			Created:   make(model.Counts),
			LastReply: make(model.Counts),
		},
	}
}

func (ga *GroupAccumulator) passesAdminFilter(t model.Thread) bool {
	return ga.roster.Empty() || ga.roster.Allows(t.LastAuthor)
}

func (ga *GroupAccumulator) Add(t model.Thread) {
	if !ga.passesAdminFilter(t) {
		return
	}
	if ga.period.Contains(t.CreatedAt) {
		Increment(ga.activity.Created, t.LastAuthor, t.LastAuthor)
	}
	if ga.period.Contains(t.LastPostAt) {
		Increment(ga.activity.LastReply, t.LastAuthor, t.LastAuthor)
	}
}

func (ga *GroupAccumulator) Activity() model.GroupActivity {
	return ga.activity
}

// Package advice turns a week of activity totals into textual suggestions.
package advice

import "timesaver/backend/internal/model"

const (
	MsgLowStudy     = "You studied less than 10 hours this week. Try setting concrete goals for each day."
	MsgTooMuchRest  = "Rest is good, but you may be getting distracted too often. Try the Pomodoro technique."
	MsgLowSleep     = "You are sleeping less than 6 hours a night. That can hurt your concentration."
	MsgBalanced     = "Great balance between study, rest and sleep. Keep it up!"
	MsgInsufficient = "Not enough data yet. Add more entries to get recommendations."
)

// Totals are the trailing-week hours the rules look at. Values are taken
// as-is; nothing is clamped.
type Totals struct {
	StudyHours float64
	RestHours  float64
	SleepHours float64
}

// TotalsFromHours picks the categories the rules care about out of an
// aggregation keyed by category.
func TotalsFromHours(hours map[model.Category]float64) Totals {
	return Totals{
		StudyHours: hours[model.CategoryStudy],
		RestHours:  hours[model.CategoryRest],
		SleepHours: hours[model.CategorySleep],
	}
}

type rule struct {
	applies func(Totals) bool
	message string
}

// Rules fire independently, and output follows declaration order.
var rules = []rule{
	{
		applies: func(t Totals) bool { return t.StudyHours < 10 },
		message: MsgLowStudy,
	},
	{
		applies: func(t Totals) bool { return t.RestHours > 15 },
		message: MsgTooMuchRest,
	},
	{
		applies: func(t Totals) bool { return t.SleepHours < 40 },
		message: MsgLowSleep,
	},
	{
		applies: func(t Totals) bool {
			return t.StudyHours >= 15 && t.StudyHours <= 25 &&
				t.SleepHours >= 35 && t.SleepHours <= 50 &&
				t.RestHours <= 10
		},
		message: MsgBalanced,
	},
}

// Generate evaluates every rule against t. When none fires it returns the
// single insufficient-data message.
func Generate(t Totals) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.applies(t) {
			out = append(out, r.message)
		}
	}
	if len(out) == 0 {
		out = append(out, MsgInsufficient)
	}
	return out
}

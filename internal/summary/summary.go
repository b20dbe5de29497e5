// Package summary reduces activity entries into per-category totals and
// computes the time windows those totals are taken over.
//
// Every function here is pure: totals are recomputed from the entries passed
// in and nothing is cached between calls.
package summary

import (
	"fmt"
	"time"

	"timesaver/backend/internal/model"
)

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// ByCategory sums DurationMinutes per category. All known categories are
// present in the result, zero when there is no data.
func ByCategory(entries []model.Entry) map[model.Category]int {
	totals := make(map[model.Category]int, len(model.Categories))
	for _, c := range model.Categories {
		totals[c] = 0
	}
	for _, e := range entries {
		mustKnow(e.Category)
		totals[e.Category] += e.DurationMinutes()
	}
	return totals
}

// HoursByCategory is ByCategory measured in fractional hours of exact
// elapsed time rather than floored minutes.
func HoursByCategory(entries []model.Entry) map[model.Category]float64 {
	totals := make(map[model.Category]float64, len(model.Categories))
	for _, c := range model.Categories {
		totals[c] = 0
	}
	for _, e := range entries {
		mustKnow(e.Category)
		d := e.End.Sub(e.Start)
		if d < 0 {
			d = 0
		}
		totals[e.Category] += d.Hours()
	}
	return totals
}

// Day is the local calendar day containing now: [midnight, next midnight) in loc.
func Day(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

// TrailingWeek is [now-7d, now).
func TrailingWeek(now time.Time) Window {
	return Window{From: now.Add(-7 * 24 * time.Hour), To: now}
}

// Filter keeps the entries whose start lies inside w.
func Filter(entries []model.Entry, w Window) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if w.Contains(e.Start) {
			out = append(out, e)
		}
	}
	return out
}

func mustKnow(c model.Category) {
	if !c.Valid() {
		panic(fmt.Sprintf("summary: unknown category %q", c))
	}
}

package model

import (
	"fmt"
	"time"
)

// Category is the closed set of activity kinds a user can log.
type Category string

const (
	CategoryStudy Category = "study"
	CategoryRest  Category = "rest"
	CategorySleep Category = "sleep"
	CategoryOther Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryStudy, CategoryRest, CategorySleep, CategoryOther}

var categoryLabels = map[Category]string{
	CategoryStudy: "Study",
	CategoryRest:  "Rest",
	CategorySleep: "Sleep",
	CategoryOther: "Other",
}

func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the presentation name used by exports. Never key data by it.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Category  Category  `json:"category"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Note      string    `json:"note"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize swaps Start and End when they are reversed. It reports whether a
// swap happened.
func (e *Entry) Normalize() bool {
	if e.End.Before(e.Start) {
		e.Start, e.End = e.End, e.Start
		return true
	}
	return false
}

// DurationMinutes is floor((End-Start)/1m). Normalized entries never go
// negative; a reversed entry reports 0.
func (e Entry) DurationMinutes() int {
	d := e.End.Sub(e.Start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// EntryView is the wire shape of an entry, carrying the derived duration.
type EntryView struct {
	Entry
	DurationMinutes int `json:"durationMinutes"`
}

func (e Entry) View() EntryView {
	return EntryView{Entry: e, DurationMinutes: e.DurationMinutes()}
}

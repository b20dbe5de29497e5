package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSwapsReversedInterval(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	end := start.Add(-90 * time.Minute)
	entry := Entry{Start: start, End: end}

	swapped := entry.Normalize()

	assert.True(t, swapped)
	assert.Equal(t, end, entry.Start)
	assert.Equal(t, start, entry.End)
	assert.Equal(t, 90, entry.DurationMinutes())
}

func TestNormalizeKeepsOrderedAndEqualInterval(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	ordered := Entry{Start: start, End: start.Add(time.Hour)}
	assert.False(t, ordered.Normalize())
	assert.Equal(t, start, ordered.Start)

	empty := Entry{Start: start, End: start}
	assert.False(t, empty.Normalize())
	assert.Equal(t, 0, empty.DurationMinutes())
}

func TestDurationMinutesFloors(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		span time.Duration
		want int
	}{
		{"zero", 0, 0},
		{"59 seconds", 59 * time.Second, 0},
		{"exactly one minute", time.Minute, 1},
		{"just under two minutes", 2*time.Minute - time.Nanosecond, 1},
		{"two hours", 2 * time.Hour, 120},
		{"reversed never negative", -5 * time.Minute, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Entry{Start: start, End: start.Add(tc.span)}
			assert.Equal(t, tc.want, e.DurationMinutes())
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("Учёба")
	assert.Error(t, err)
	_, err = ParseCategory("")
	assert.Error(t, err)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Study", CategoryStudy.Label())
	assert.Equal(t, "Other", CategoryOther.Label())
	assert.Equal(t, "mystery", Category("mystery").Label())
}

func TestEntryViewCarriesDuration(t *testing.T) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	e := Entry{ID: "e1", Category: CategorySleep, Start: start, End: start.Add(8 * time.Hour)}

	raw, err := json.Marshal(e.View())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "e1", decoded["id"])
	assert.Equal(t, "sleep", decoded["category"])
	assert.EqualValues(t, 480, decoded["durationMinutes"])
}

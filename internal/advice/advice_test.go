package advice

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"timesaver/backend/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGenerate(t *testing.T) {
	cases := []struct {
		name   string
		totals Totals
		want   []string
	}{
		{
			name:   "low study and low sleep",
			totals: Totals{StudyHours: 5, RestHours: 5, SleepHours: 30},
			want:   []string{MsgLowStudy, MsgLowSleep},
		},
		{
			name:   "balanced week",
			totals: Totals{StudyHours: 20, RestHours: 5, SleepHours: 42},
			want:   []string{MsgBalanced},
		},
		{
			name:   "too much rest only",
			totals: Totals{StudyHours: 20, RestHours: 20, SleepHours: 60},
			want:   []string{MsgTooMuchRest},
		},
		{
			name:   "three rules at once keep declaration order",
			totals: Totals{StudyHours: 2, RestHours: 30, SleepHours: 10},
			want:   []string{MsgLowStudy, MsgTooMuchRest, MsgLowSleep},
		},
		{
			name:   "balance boundaries are inclusive",
			totals: Totals{StudyHours: 25, RestHours: 10, SleepHours: 50},
			want:   []string{MsgBalanced},
		},
		{
			name:   "nothing fires falls back",
			totals: Totals{StudyHours: 12, RestHours: 12, SleepHours: 45},
			want:   []string{MsgInsufficient},
		},
		{
			name:   "out of range values are accepted as-is",
			totals: Totals{StudyHours: 200, RestHours: 0, SleepHours: 500},
			want:   []string{MsgInsufficient},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Generate(tc.totals)); diff != "" {
				t.Fatalf("Generate(%+v) mismatch (-want +got):\n%s", tc.totals, diff)
			}
		})
	}
}

func TestGenerateEmptyWeek(t *testing.T) {
	got := Generate(Totals{})

	assert.Equal(t, []string{MsgLowStudy, MsgLowSleep}, got)
}

func TestTotalsFromHoursIgnoresOther(t *testing.T) {
	got := TotalsFromHours(map[model.Category]float64{
		model.CategoryStudy: 12.5,
		model.CategoryRest:  3,
		model.CategorySleep: 49,
		model.CategoryOther: 100,
	})

	assert.Equal(t, Totals{StudyHours: 12.5, RestHours: 3, SleepHours: 49}, got)
}

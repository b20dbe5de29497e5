package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"timesaver/backend/internal/advice"
	"timesaver/backend/internal/model"
	"timesaver/backend/internal/repository"
	"timesaver/backend/internal/testsupport"
)

type fixture struct {
	entries  *EntryService
	reports  *ReportService
	messages *MessageService
	auth     *AuthService
	repo     *repository.EntryRepository
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T, loc *time.Location, now time.Time) fixture {
	t.Helper()
	database := testsupport.OpenDB(t)

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	users := repository.NewUserRepository(database)
	entryRepo := repository.NewEntryRepository(database)
	messageRepo := repository.NewMessageRepository(database)

	f := fixture{
		entries:  NewEntryService(entryRepo, loc, logger),
		reports:  NewReportService(entryRepo, users, loc, logger),
		messages: NewMessageService(messageRepo, users, zaptest.NewLogger(t)),
		auth:     NewAuthService(users, "test-secret", time.Hour, zaptest.NewLogger(t)),
		repo:     entryRepo,
		logs:     logs,
	}
	clock := func() time.Time { return now }
	f.entries.now = clock
	f.reports.now = clock
	f.messages.now = clock
	return f
}

func (f fixture) register(t *testing.T, email string) string {
	t.Helper()
	result, apiErr := f.auth.Register(context.Background(), RegisterInput{Email: email, Password: "secret1"})
	require.Nil(t, apiErr)
	return result.User.ID
}

func TestEntryServiceCreateSwapsReversedInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC, time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC))
	userID := f.register(t, "swap@example.com")

	view, apiErr := f.entries.Create(ctx, userID, EntryInput{
		Category: "study",
		Start:    "2025-05-05T10:00:00Z",
		End:      "2025-05-05T08:30:00Z",
	})
	require.Nil(t, apiErr)

	assert.Equal(t, time.Date(2025, time.May, 5, 8, 30, 0, 0, time.UTC), view.Start)
	assert.Equal(t, time.Date(2025, time.May, 5, 10, 0, 0, 0, time.UTC), view.End)
	assert.Equal(t, 90, view.DurationMinutes)
	assert.Equal(t, 1, view.Version)
	assert.Equal(t, 1, f.logs.FilterMessage("entry start and end swapped").Len())

	stored, err := f.repo.GetForUser(ctx, view.ID, userID)
	require.NoError(t, err)
	assert.False(t, stored.End.Before(stored.Start))
}

func TestEntryServiceParsesLocalTimestampsInZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	f := newFixture(t, loc, time.Now())
	userID := f.register(t, "tz@example.com")

	view, apiErr := f.entries.Create(context.Background(), userID, EntryInput{
		Category: "sleep",
		Start:    "2025-05-05T23:00",
		End:      "2025-05-06T07:15",
	})
	require.Nil(t, apiErr)

	assert.True(t, view.Start.Equal(time.Date(2025, time.May, 5, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, loc, view.Start.Location())
	assert.Equal(t, 495, view.DurationMinutes)
}

func TestEntryServiceValidation(t *testing.T) {
	f := newFixture(t, time.UTC, time.Now())
	userID := f.register(t, "v@example.com")

	_, apiErr := f.entries.Create(context.Background(), userID, EntryInput{
		Category: "gaming",
		Start:    "yesterday",
	})
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_failed", apiErr.Code)
	assert.Equal(t, map[string]string{
		"category": "must be one of study, rest, sleep, other",
		"start":    "start must be a valid timestamp",
		"end":      "end is required",
	}, apiErr.Details)

	entries, apiErr := f.entries.List(context.Background(), userID, ListInput{})
	require.Nil(t, apiErr)
	assert.Empty(t, entries)
}

func TestEntryServiceOwnershipIsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC, time.Now())
	owner := f.register(t, "owner@example.com")
	intruder := f.register(t, "intruder@example.com")

	view, apiErr := f.entries.Create(ctx, owner, EntryInput{Category: "rest", Start: "2025-05-05T10:00:00Z", End: "2025-05-05T10:20:00Z"})
	require.Nil(t, apiErr)

	_, foreignGet := f.entries.Get(ctx, intruder, view.ID)
	_, missingGet := f.entries.Get(ctx, intruder, "does-not-exist")
	require.NotNil(t, foreignGet)
	assert.Equal(t, missingGet, foreignGet)

	foreignDelete := f.entries.Delete(ctx, intruder, view.ID)
	require.NotNil(t, foreignDelete)
	assert.Equal(t, http.StatusNotFound, foreignDelete.Status)
	assert.Equal(t, "entry_not_found", foreignDelete.Code)

	_, foreignUpdate := f.entries.Update(ctx, intruder, view.ID, EntryInput{Category: "study", Start: "2025-05-05T10:00:00Z", End: "2025-05-05T11:00:00Z"})
	require.NotNil(t, foreignUpdate)
	assert.Equal(t, "entry_not_found", foreignUpdate.Code)

	got, apiErr := f.entries.Get(ctx, owner, view.ID)
	require.Nil(t, apiErr)
	assert.Equal(t, model.CategoryRest, got.Category)
	assert.Equal(t, 20, got.DurationMinutes)

	require.Nil(t, f.entries.Delete(ctx, owner, view.ID))
	second := f.entries.Delete(ctx, owner, view.ID)
	require.NotNil(t, second)
	assert.Equal(t, "entry_not_found", second.Code)
}

func TestEntryServiceUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC, time.Now())
	userID := f.register(t, "edit@example.com")

	view, apiErr := f.entries.Create(ctx, userID, EntryInput{Category: "study", Start: "2025-05-05T10:00:00Z", End: "2025-05-05T11:00:00Z"})
	require.Nil(t, apiErr)

	updated, apiErr := f.entries.Update(ctx, userID, view.ID, EntryInput{
		Category:    "other",
		Start:       "2025-05-05T12:00:00Z",
		End:         "2025-05-05T11:15:00Z",
		Note:        "reversed on purpose",
		BaseVersion: 1,
	})
	require.Nil(t, apiErr)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, model.CategoryOther, updated.Category)
	assert.Equal(t, 45, updated.DurationMinutes)
	assert.Equal(t, "reversed on purpose", updated.Note)

	_, stale := f.entries.Update(ctx, userID, view.ID, EntryInput{
		Category:    "study",
		Start:       "2025-05-05T10:00:00Z",
		End:         "2025-05-05T11:00:00Z",
		BaseVersion: 1,
	})
	require.NotNil(t, stale)
	assert.Equal(t, http.StatusConflict, stale.Status)
	assert.Equal(t, "entry_conflict", stale.Code)
	details, ok := stale.Details.(map[string]interface{})
	require.True(t, ok)
	current, ok := details["entry"].(model.EntryView)
	require.True(t, ok)
	assert.Equal(t, 2, current.Version)
}

func TestEntryServiceListWindowAndOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC, time.Now())
	userID := f.register(t, "list@example.com")

	for _, start := range []string{"2025-05-01T08:00:00Z", "2025-05-03T08:00:00Z", "2025-05-02T08:00:00Z"} {
		_, apiErr := f.entries.Create(ctx, userID, EntryInput{Category: "study", Start: start, End: start[:11] + "09:00:00Z"})
		require.Nil(t, apiErr)
	}

	desc, apiErr := f.entries.List(ctx, userID, ListInput{})
	require.Nil(t, apiErr)
	require.Len(t, desc, 3)
	assert.Equal(t, 3, desc[0].Start.Day())
	assert.Equal(t, 1, desc[2].Start.Day())

	windowed, apiErr := f.entries.List(ctx, userID, ListInput{From: "2025-05-02T00:00", To: "2025-05-03T00:00", Order: "asc"})
	require.Nil(t, apiErr)
	require.Len(t, windowed, 1)
	assert.Equal(t, 2, windowed[0].Start.Day())

	_, apiErr = f.entries.List(ctx, userID, ListInput{Order: "sideways"})
	require.NotNil(t, apiErr)
	assert.Equal(t, "validation_failed", apiErr.Code)
}

func TestReportServiceDashboardCountsOnlyToday(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2025, time.May, 5, 12, 0, 0, 0, loc)
	f := newFixture(t, loc, now)
	userID := f.register(t, "dash@example.com")

	inputs := []EntryInput{
		{Category: "study", Start: "2025-05-05T00:00", End: "2025-05-05T02:00"},
		{Category: "rest", Start: "2025-05-05T10:00", End: "2025-05-05T10:30"},
		{Category: "sleep", Start: "2025-05-04T23:00", End: "2025-05-05T06:00"},
		{Category: "study", Start: "2025-05-06T00:00", End: "2025-05-06T01:00"},
	}
	for _, in := range inputs {
		_, apiErr := f.entries.Create(ctx, userID, in)
		require.Nil(t, apiErr)
	}

	dashboard, apiErr := f.reports.Dashboard(ctx, userID)
	require.Nil(t, apiErr)
	assert.Equal(t, map[model.Category]int{
		model.CategoryStudy: 120,
		model.CategoryRest:  30,
		model.CategorySleep: 0,
		model.CategoryOther: 0,
	}, dashboard.Data)
	assert.Equal(t, time.Date(2025, time.May, 5, 0, 0, 0, 0, loc), dashboard.From)
}

func TestReportServiceAdvice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, time.UTC, now)
	userID := f.register(t, "advice@example.com")

	got, apiErr := f.reports.Advice(ctx, userID)
	require.Nil(t, apiErr)
	assert.Equal(t, []string{advice.MsgLowStudy, advice.MsgLowSleep}, got)

	// Six full days inside [now-7d, now): 18h study, 42h sleep.
	for day := 4; day <= 9; day++ {
		start := time.Date(2025, time.May, day, 0, 0, 0, 0, time.UTC)
		_, apiErr = f.entries.Create(ctx, userID, EntryInput{
			Category: "sleep",
			Start:    start.Format(time.RFC3339),
			End:      start.Add(7 * time.Hour).Format(time.RFC3339),
		})
		require.Nil(t, apiErr)
		_, apiErr = f.entries.Create(ctx, userID, EntryInput{
			Category: "study",
			Start:    start.Add(8 * time.Hour).Format(time.RFC3339),
			End:      start.Add(11 * time.Hour).Format(time.RFC3339),
		})
		require.Nil(t, apiErr)
	}

	got, apiErr = f.reports.Advice(ctx, userID)
	require.Nil(t, apiErr)
	assert.Equal(t, []string{advice.MsgBalanced}, got)
}

func TestReportServiceExportReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC, time.Now())
	userID := f.register(t, "export.user@example.com")

	for _, start := range []string{"2025-05-01T08:00:00Z", "2025-05-02T08:00:00Z"} {
		_, apiErr := f.entries.Create(ctx, userID, EntryInput{Category: "rest", Start: start, End: start[:11] + "08:40:00Z"})
		require.Nil(t, apiErr)
	}

	report, apiErr := f.reports.ExportReport(ctx, userID)
	require.Nil(t, apiErr)
	assert.Equal(t, "export.user", report.UserName)
	require.Len(t, report.Entries, 2)
	assert.True(t, report.Entries[0].Start.After(report.Entries[1].Start))
	assert.Equal(t, 80, report.Totals[model.CategoryRest])
}

func TestEntryServiceRejectsYearsOutsideStorableRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.UTC, time.Now())
	userID := f.register(t, "far@example.com")

	_, apiErr := f.entries.Create(ctx, userID, EntryInput{
		Category: "study",
		Start:    "9999-12-31T22:00:00-05:00",
		End:      "9999-12-31T23:00:00-05:00",
	})
	require.NotNil(t, apiErr)
	assert.Equal(t, "validation_failed", apiErr.Code)
	assert.Equal(t, map[string]string{
		"start": "start is out of range",
		"end":   "end is out of range",
	}, apiErr.Details)

	edge, apiErr := f.entries.Create(ctx, userID, EntryInput{
		Category: "study",
		Start:    "9999-12-31T18:00:00-05:00",
		End:      "9999-12-31T18:30:00-05:00",
	})
	require.Nil(t, apiErr)
	assert.Equal(t, 30, edge.DurationMinutes)

	entries, apiErr := f.entries.List(ctx, userID, ListInput{})
	require.Nil(t, apiErr)
	require.Len(t, entries, 1)
	assert.Equal(t, edge.ID, entries[0].ID)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "timesaver/backend/internal/errors"
	"timesaver/backend/internal/model"
	"timesaver/backend/internal/observability"
	"timesaver/backend/internal/repository"
)

// localLayouts are the HTML datetime-local forms; they carry no offset and
// are read in the configured zone.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

type EntryService struct {
	repo   *repository.EntryRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// EntryInput is the raw, unvalidated payload of a create or edit.
type EntryInput struct {
	Category string
	Start    string
	End      string
	Note     string
	// BaseVersion enables an optimistic-lock check on edit when > 0.
	BaseVersion int
}

type ListInput struct {
	From  string
	To    string
	Order string
}

func NewEntryService(repo *repository.EntryRepository, loc *time.Location, logger *zap.Logger) *EntryService {
	return &EntryService{
		repo:   repo,
		loc:    loc,
		logger: logger.Named("entries"),
		now:    time.Now,
	}
}

func (s *EntryService) Create(ctx context.Context, userID string, input EntryInput) (*model.EntryView, *apperrors.APIError) {
	fields, apiErr := s.validate(input)
	if apiErr != nil {
		return nil, apiErr
	}

	now := s.now().UTC()
	entry := model.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  fields.Category,
		Start:     fields.Start,
		End:       fields.End,
		Note:      fields.Note,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.normalize(&entry)

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error("create entry", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to create entry")
	}

	view := s.toView(entry)
	return &view, nil
}

func (s *EntryService) Get(ctx context.Context, userID, id string) (*model.EntryView, *apperrors.APIError) {
	entry, err := s.repo.GetForUser(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.EntryNotFound()
	}
	if err != nil {
		s.logger.Error("get entry", zap.String("entry_id", id), zap.Error(err))
		return nil, apperrors.Internal("failed to get entry")
	}
	view := s.toView(*entry)
	return &view, nil
}

// Update fully replaces category, start, end and note of an owned entry.
func (s *EntryService) Update(ctx context.Context, userID, id string, input EntryInput) (*model.EntryView, *apperrors.APIError) {
	fields, apiErr := s.validate(input)
	if apiErr != nil {
		return nil, apiErr
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	entry, err := s.repo.GetForUserTx(ctx, tx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.EntryNotFound()
	}
	if err != nil {
		s.logger.Error("load entry for update", zap.String("entry_id", id), zap.Error(err))
		return nil, apperrors.Internal("failed to get entry")
	}

	if apiErr := s.ensureVersion(input.BaseVersion, entry); apiErr != nil {
		return nil, apiErr
	}

	entry.Category = fields.Category
	entry.Start = fields.Start
	entry.End = fields.End
	entry.Note = fields.Note
	entry.Version++
	entry.UpdatedAt = s.now().UTC()
	s.normalize(entry)

	if err := s.repo.UpdateTx(ctx, tx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.EntryNotFound()
		}
		s.logger.Error("update entry", zap.String("entry_id", id), zap.Error(err))
		return nil, apperrors.Internal("failed to update entry")
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	view := s.toView(*entry)
	return &view, nil
}

// Delete is not idempotent: a second delete of the same id is not found.
func (s *EntryService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.EntryNotFound()
	}
	if err != nil {
		s.logger.Error("delete entry", zap.String("entry_id", id), zap.Error(err))
		return apperrors.Internal("failed to delete entry")
	}
	return nil
}

func (s *EntryService) List(ctx context.Context, userID string, input ListInput) ([]model.EntryView, *apperrors.APIError) {
	filter := repository.EntryFilter{}
	problems := map[string]string{}

	if input.From != "" {
		from, err := s.parseTimestamp(input.From)
		if err != nil {
			problems["from"] = "must be an ISO-8601 timestamp"
		} else {
			filter.From = &from
		}
	}
	if input.To != "" {
		to, err := s.parseTimestamp(input.To)
		if err != nil {
			problems["to"] = "must be an ISO-8601 timestamp"
		} else {
			filter.To = &to
		}
	}
	switch strings.ToLower(input.Order) {
	case "", "desc":
	case "asc":
		filter.Ascending = true
	default:
		problems["order"] = "must be asc or desc"
	}
	if len(problems) > 0 {
		return nil, apperrors.Validation(problems)
	}

	entries, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("list entries", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to list entries")
	}

	views := make([]model.EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, s.toView(e))
	}
	return views, nil
}

type entryFields struct {
	Category model.Category
	Start    time.Time
	End      time.Time
	Note     string
}

func (s *EntryService) validate(input EntryInput) (entryFields, *apperrors.APIError) {
	var fields entryFields
	problems := map[string]string{}

	category, err := model.ParseCategory(strings.TrimSpace(input.Category))
	if err != nil {
		problems["category"] = "must be one of study, rest, sleep, other"
	}
	fields.Category = category

	if strings.TrimSpace(input.Start) == "" {
		problems["start"] = "start is required"
	} else if fields.Start, err = s.parseTimestamp(input.Start); err != nil {
		problems["start"] = "start must be a valid timestamp"
	}

	if strings.TrimSpace(input.End) == "" {
		problems["end"] = "end is required"
	} else if fields.End, err = s.parseTimestamp(input.End); err != nil {
		problems["end"] = "end must be a valid timestamp"
	}

	if _, bad := problems["start"]; !bad && !storableYear(fields.Start) {
		problems["start"] = "start is out of range"
	}
	if _, bad := problems["end"]; !bad && !storableYear(fields.End) {
		problems["end"] = "end is out of range"
	}

	if len(problems) > 0 {
		return entryFields{}, apperrors.Validation(problems)
	}
	fields.Note = input.Note
	return fields, nil
}

// storableYear keeps the UTC form within the four-digit years the
// fixed-width column format can hold.
func storableYear(t time.Time) bool {
	year := t.UTC().Year()
	return year >= 1 && year <= 9999
}

func (s *EntryService) parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, raw, s.loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (s *EntryService) normalize(entry *model.Entry) {
	if !entry.Normalize() {
		return
	}
	observability.RecordEntryNormalized()
	s.logger.Warn("entry start and end swapped",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", entry.UserID),
		zap.Time("start", entry.Start),
		zap.Time("end", entry.End),
	)
}

func (s *EntryService) ensureVersion(baseVersion int, entry *model.Entry) *apperrors.APIError {
	if baseVersion <= 0 || baseVersion == entry.Version {
		return nil
	}
	return apperrors.Conflict("entry_conflict", "entry changed since it was loaded", map[string]interface{}{
		"entry": s.toView(*entry),
	})
}

func (s *EntryService) toView(entry model.Entry) model.EntryView {
	entry.Start = entry.Start.In(s.loc)
	entry.End = entry.End.In(s.loc)
	return entry.View()
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"timesaver/backend/internal/advice"
	apperrors "timesaver/backend/internal/errors"
	"timesaver/backend/internal/export"
	"timesaver/backend/internal/model"
	"timesaver/backend/internal/repository"
	"timesaver/backend/internal/summary"
)

// ReportService derives dashboards, advice and exports from stored entries.
// Nothing it computes is cached or persisted.
type ReportService struct {
	entries *repository.EntryRepository
	users   *repository.UserRepository
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

func NewReportService(
	entries *repository.EntryRepository,
	users *repository.UserRepository,
	loc *time.Location,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		entries: entries,
		users:   users,
		loc:     loc,
		logger:  logger.Named("reports"),
		now:     time.Now,
	}
}

type Dashboard struct {
	Data map[model.Category]int `json:"data"`
	From time.Time              `json:"from"`
	To   time.Time              `json:"to"`
}

// Dashboard totals today's minutes per category, today being the local
// calendar day in the configured zone.
func (s *ReportService) Dashboard(ctx context.Context, userID string) (*Dashboard, *apperrors.APIError) {
	window := summary.Day(s.now(), s.loc)
	entries, apiErr := s.listWindow(ctx, userID, window)
	if apiErr != nil {
		return nil, apiErr
	}
	return &Dashboard{
		Data: summary.ByCategory(entries),
		From: window.From,
		To:   window.To,
	}, nil
}

func (s *ReportService) Advice(ctx context.Context, userID string) ([]string, *apperrors.APIError) {
	entries, apiErr := s.listWindow(ctx, userID, summary.TrailingWeek(s.now()))
	if apiErr != nil {
		return nil, apiErr
	}
	totals := advice.TotalsFromHours(summary.HoursByCategory(entries))
	return advice.Generate(totals), nil
}

// ExportReport collects every entry of the user, newest first, for a renderer.
func (s *ReportService) ExportReport(ctx context.Context, userID string) (*export.Report, *apperrors.APIError) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized("user no longer exists")
	}
	if err != nil {
		s.logger.Error("load user for export", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to load user")
	}

	entries, err := s.entries.List(ctx, userID, repository.EntryFilter{})
	if err != nil {
		s.logger.Error("list entries for export", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to list entries")
	}

	return &export.Report{
		UserName:    user.DisplayName,
		GeneratedAt: s.now(),
		Location:    s.loc,
		Entries:     entries,
		Totals:      summary.ByCategory(entries),
	}, nil
}

func (s *ReportService) listWindow(ctx context.Context, userID string, window summary.Window) ([]model.Entry, *apperrors.APIError) {
	entries, err := s.entries.List(ctx, userID, repository.EntryFilter{
		From:      &window.From,
		To:        &window.To,
		Ascending: true,
	})
	if err != nil {
		s.logger.Error("list entries in window", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to list entries")
	}
	return summary.Filter(entries, window), nil
}

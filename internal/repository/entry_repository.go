package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"timesaver/backend/internal/model"
)

type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// EntryFilter narrows List. From and To bound the entry start as [From, To).
type EntryFilter struct {
	From      *time.Time
	To        *time.Time
	Ascending bool
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const entryColumns = `id, user_id, category, start_at, end_at, note, version, created_at, updated_at`

func (r *EntryRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *EntryRepository) Create(ctx context.Context, entry *model.Entry) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO activity_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		string(entry.Category),
		formatTime(entry.Start),
		formatTime(entry.End),
		entry.Note,
		entry.Version,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// GetForUser loads an entry only if userID owns it. A foreign entry is
// reported as ErrNotFound.
func (r *EntryRepository) GetForUser(ctx context.Context, id, userID string) (*model.Entry, error) {
	return getEntry(ctx, r.db, id, userID)
}

func (r *EntryRepository) GetForUserTx(ctx context.Context, tx *sql.Tx, id, userID string) (*model.Entry, error) {
	return getEntry(ctx, tx, id, userID)
}

func getEntry(ctx context.Context, q rowQuerier, id, userID string) (*model.Entry, error) {
	row := q.QueryRowContext(
		ctx,
		`SELECT `+entryColumns+` FROM activity_entries WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanEntry(row)
}

func (r *EntryRepository) UpdateTx(ctx context.Context, tx *sql.Tx, entry *model.Entry) error {
	res, err := tx.ExecContext(
		ctx,
		`UPDATE activity_entries
		 SET category = ?,
		     start_at = ?,
		     end_at = ?,
		     note = ?,
		     version = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		string(entry.Category),
		formatTime(entry.Start),
		formatTime(entry.End),
		entry.Note,
		entry.Version,
		formatTime(entry.UpdatedAt),
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return requireAffected(res, "update entry")
}

func (r *EntryRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(
		ctx,
		`DELETE FROM activity_entries WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireAffected(res, "delete entry")
}

func (r *EntryRepository) List(ctx context.Context, userID string, filter EntryFilter) ([]model.Entry, error) {
	var query strings.Builder
	query.WriteString(`SELECT ` + entryColumns + ` FROM activity_entries WHERE user_id = ?`)
	args := []interface{}{userID}

	if filter.From != nil {
		query.WriteString(` AND start_at >= ?`)
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		query.WriteString(` AND start_at < ?`)
		args = append(args, formatTime(*filter.To))
	}
	if filter.Ascending {
		query.WriteString(` ORDER BY start_at ASC, id ASC`)
	} else {
		query.WriteString(` ORDER BY start_at DESC, id DESC`)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(s scanner) (*model.Entry, error) {
	var entry model.Entry
	var category string
	var startAt, endAt, createdAt, updatedAt string
	err := s.Scan(
		&entry.ID,
		&entry.UserID,
		&category,
		&startAt,
		&endAt,
		&entry.Note,
		&entry.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	entry.Category, err = model.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("scan entry %s: %w", entry.ID, err)
	}

	times := []struct {
		raw  string
		dest *time.Time
		name string
	}{
		{startAt, &entry.Start, "start_at"},
		{endAt, &entry.End, "end_at"},
		{createdAt, &entry.CreatedAt, "created_at"},
		{updatedAt, &entry.UpdatedAt, "updated_at"},
	}
	for _, field := range times {
		parsed, parseErr := parseTime(field.raw)
		if parseErr != nil {
			return nil, fmt.Errorf("parse entry %s: %w", field.name, parseErr)
		}
		*field.dest = parsed
	}

	return &entry, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

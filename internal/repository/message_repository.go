package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"timesaver/backend/internal/model"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = `id, sender_id, recipient_id, text, is_read, created_at`

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.SenderID,
		msg.RecipientID,
		msg.Text,
		msg.Read,
		formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListInbox returns messages received by recipientID, newest first.
func (r *MessageRepository) ListInbox(ctx context.Context, recipientID string) ([]model.Message, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE recipient_id = ?
		 ORDER BY created_at DESC, id DESC`,
		recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return collectMessages(rows)
}

func (r *MessageRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM messages WHERE recipient_id = ? AND is_read = 0`,
		recipientID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

// MarkReadTx flags every unread message from senderID to recipientID as read.
func (r *MessageRepository) MarkReadTx(ctx context.Context, tx *sql.Tx, recipientID, senderID string) (int64, error) {
	res, err := tx.ExecContext(
		ctx,
		`UPDATE messages SET is_read = 1
		 WHERE recipient_id = ? AND sender_id = ? AND is_read = 0`,
		recipientID,
		senderID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark read rows affected: %w", err)
	}
	return affected, nil
}

// ListThreadTx returns the conversation between two users in both
// directions, oldest first.
func (r *MessageRepository) ListThreadTx(ctx context.Context, tx *sql.Tx, userID, otherID string) ([]model.Message, error) {
	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		 ORDER BY created_at ASC, id ASC`,
		userID, otherID, otherID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func scanMessage(s scanner) (*model.Message, error) {
	var msg model.Message
	var createdAt string
	if err := s.Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Text, &msg.Read, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse message created_at: %w", err)
	}
	msg.CreatedAt = parsed
	return &msg, nil
}

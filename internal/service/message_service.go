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
	"timesaver/backend/internal/repository"
)

type MessageService struct {
	messages *repository.MessageRepository
	users    *repository.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewMessageService(messages *repository.MessageRepository, users *repository.UserRepository, logger *zap.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		logger:   logger.Named("messages"),
		now:      time.Now,
	}
}

type Inbox struct {
	Messages []model.Message `json:"messages"`
	Unread   int             `json:"unread"`
}

func (s *MessageService) Send(ctx context.Context, senderID, recipientID, text string) (*model.Message, *apperrors.APIError) {
	text = strings.TrimSpace(text)
	recipientID = strings.TrimSpace(recipientID)

	problems := map[string]string{}
	if recipientID == "" {
		problems["recipientId"] = "recipient is required"
	}
	if text == "" {
		problems["text"] = "text is required"
	}
	if len(problems) > 0 {
		return nil, apperrors.Validation(problems)
	}

	if apiErr := s.requireUser(ctx, recipientID); apiErr != nil {
		return nil, apiErr
	}

	msg := model.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		s.logger.Error("create message", zap.String("sender_id", senderID), zap.Error(err))
		return nil, apperrors.Internal("failed to send message")
	}
	return &msg, nil
}

func (s *MessageService) Inbox(ctx context.Context, userID string) (*Inbox, *apperrors.APIError) {
	messages, err := s.messages.ListInbox(ctx, userID)
	if err != nil {
		s.logger.Error("list inbox", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to list messages")
	}
	unread, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("count unread", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to list messages")
	}
	return &Inbox{Messages: messages, Unread: unread}, nil
}

// Thread returns the conversation with otherID, oldest first, and marks the
// messages otherID sent to userID as read.
func (s *MessageService) Thread(ctx context.Context, userID, otherID string) ([]model.Message, *apperrors.APIError) {
	if apiErr := s.requireUser(ctx, otherID); apiErr != nil {
		return nil, apiErr
	}

	tx, err := s.messages.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	marked, err := s.messages.MarkReadTx(ctx, tx, userID, otherID)
	if err != nil {
		s.logger.Error("mark thread read", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to open thread")
	}
	thread, err := s.messages.ListThreadTx(ctx, tx, userID, otherID)
	if err != nil {
		s.logger.Error("list thread", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to open thread")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}

	if marked > 0 {
		s.logger.Debug("thread marked read", zap.String("user_id", userID), zap.Int64("count", marked))
	}
	return thread, nil
}

func (s *MessageService) Contacts(ctx context.Context, userID string) ([]model.User, *apperrors.APIError) {
	users, err := s.users.ListOthers(ctx, userID)
	if err != nil {
		s.logger.Error("list contacts", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to list users")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *MessageService) requireUser(ctx context.Context, id string) *apperrors.APIError {
	_, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("recipient_not_found", "recipient not found")
	}
	if err != nil {
		s.logger.Error("load recipient", zap.String("recipient_id", id), zap.Error(err))
		return apperrors.Internal("failed to load user")
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"realtime/internal/middleware"
	"realtime/internal/models"
	"realtime/internal/notifications"
	"realtime/internal/repository"
)

// MessageService provides direct-message business logic and live feed
// publication.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	feed        *notifications.ConversationFeed
	notifier    *notifications.Notifier
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	SenderID    string
	RecipientID string
	Text        string
	ImageRef    string
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	feed *notifications.ConversationFeed,
	notifier *notifications.Notifier,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		feed:        feed,
		notifier:    notifier,
	}
}

// SendMessage persists a new message with a server-assigned id and timestamp
// and publishes the refreshed conversation snapshot to live subscribers.
// A failed write leaves no partial record and nothing is published.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.RecipientID == "" {
		return nil, models.NewValidationError("Recipient is required")
	}
	if in.SenderID == in.RecipientID {
		return nil, models.NewValidationError("Cannot message yourself")
	}
	if in.Text == "" && in.ImageRef == "" {
		return nil, models.NewValidationError("Message must carry text or an image")
	}

	if _, err := s.userRepo.GetByID(ctx, in.SenderID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, in.RecipientID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Text:        in.Text,
		ImageRef:    in.ImageRef,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.publishSnapshot(ctx, in.SenderID, in.RecipientID)
	return message, nil
}

// GetConversation returns every message between the two users, timestamp
// ascending.
func (s *MessageService) GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, userB); err != nil {
		return nil, err
	}
	return s.messageRepo.GetConversation(ctx, userA, userB)
}

// Subscribe opens a live view on the conversation between the two users and
// returns the current snapshot alongside the subscription. The caller owns
// the subscription and must Cancel it to release the listener.
func (s *MessageService) Subscribe(ctx context.Context, userA, userB string) (*notifications.FeedSubscription, []models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, userB); err != nil {
		return nil, nil, err
	}
	snapshot, err := s.messageRepo.GetConversation(ctx, userA, userB)
	if err != nil {
		return nil, nil, err
	}
	return s.feed.Subscribe(userA, userB), snapshot, nil
}

// publishSnapshot reloads the conversation and pushes the full-refresh
// snapshot. With Redis available the snapshot travels through pub/sub so
// every instance delivers it; otherwise it goes straight to local
// subscribers. Publication is best-effort: the message is already durable.
func (s *MessageService) publishSnapshot(ctx context.Context, userA, userB string) {
	snapshot, err := s.messageRepo.GetConversation(ctx, userA, userB)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "feed snapshot reload failed",
			slog.String("error", err.Error()))
		return
	}

	key := models.ConversationKey(userA, userB)
	if s.notifier.Enabled() {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "feed snapshot marshal failed",
				slog.String("error", err.Error()))
			return
		}
		if err := s.notifier.PublishConversation(ctx, key, string(payload)); err != nil {
			middleware.Logger.ErrorContext(ctx, "feed snapshot publish failed",
				slog.String("conversation", key),
				slog.String("error", err.Error()))
		}
		return
	}

	s.feed.Publish(key, snapshot)
}

package repository

import (
	"context"

	"realtime/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
}

// messageRepository implements MessageRepository
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewTransientError("message write", err)
	}
	return nil
}

// GetConversation returns every message exchanged between the two users,
// matching the pair in either order, ordered by timestamp ascending with
// the insertion sequence as a stable tie-break.
func (r *messageRepository) GetConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("timestamp ASC, seq ASC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

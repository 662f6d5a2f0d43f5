// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a direct message between two users. Messages are immutable once
// created; a conversation is the unordered pair of sender and recipient,
// derived by querying both orders of the pair.
//
// Seq is an internal insertion ordinal used to break ties between messages
// that carry the same timestamp. ID is the public, server-assigned identifier.
type Message struct {
	Seq         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID          string    `gorm:"uniqueIndex;size:36;not null" json:"id"`
	SenderID    string    `gorm:"size:36;not null;index:idx_messages_sender" json:"sender_id"`
	RecipientID string    `gorm:"size:36;not null;index:idx_messages_recipient" json:"recipient_id"`
	Text        string    `gorm:"type:text" json:"text"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}

// BeforeCreate assigns the server-side id and timestamp.
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

// ConversationKey returns the canonical key for the unordered user pair.
// Both orders of the same pair map to the same key.
func ConversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

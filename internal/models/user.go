// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered user in the directory.
type User struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Email           string    `gorm:"unique;not null" json:"email"`
	Name            string    `gorm:"not null" json:"name"`
	Password        string    `gorm:"not null" json:"-"`
	ProfileImageRef string    `json:"profile_image_ref,omitempty"`
	BannerImageRef  string    `json:"banner_image_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assigns a generated id when none was provided.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Friendship is a one-directional friend edge owned by OwnerID.
// The relationship is singly stored: adding a friend only creates the
// initiator's edge, the other user's list is untouched.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:36;not null;uniqueIndex:idx_friend_edge" json:"owner_id"`
	FriendID  string    `gorm:"size:36;not null;uniqueIndex:idx_friend_edge" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

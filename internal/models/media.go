// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaBlob is the metadata row for a stored binary upload. Blobs are
// content-addressed: Hash is the sha256 of the bytes, and uploading the same
// content twice resolves to the same row.
type MediaBlob struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Hash        string    `gorm:"uniqueIndex;size:64;not null" json:"hash"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Bytes       int64     `gorm:"not null" json:"bytes"`
	Path        string    `gorm:"not null" json:"-"`
	UploaderID  string    `gorm:"size:36;index" json:"uploader_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns a generated id when none was provided.
func (b *MediaBlob) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

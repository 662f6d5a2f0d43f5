// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Story is a single ephemeral media post. Stories are immutable after
// creation and are deleted either explicitly by their author or by the
// retention sweeper once they pass the configured TTL.
type Story struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"size:36;not null;index:idx_stories_author_ts" json:"author_id"`
	ImageRef  string    `gorm:"not null" json:"image_ref"`
	Timestamp time.Time `gorm:"not null;index:idx_stories_author_ts" json:"timestamp"`
}

// BeforeCreate assigns a generated id and timestamp when missing.
func (s *Story) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	return nil
}

// Storyline is a named grouping of stories by one author, with a lifecycle
// independent from the stories it references. Deleting a story does not
// rewrite storyline membership; dangling references are skipped on read.
type Storyline struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	// Populated on read, not stored on the storyline row itself.
	Stories               []Story `gorm:"-" json:"stories"`
	AuthorProfileImageRef string  `gorm:"-" json:"author_profile_image_ref,omitempty"`
}

// BeforeCreate assigns a generated id when none was provided.
func (s *Storyline) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StorylineStory is the ordered membership row linking a storyline to a story.
type StorylineStory struct {
	StorylineID string `gorm:"primaryKey;size:36" json:"storyline_id"`
	StoryID     string `gorm:"primaryKey;size:36" json:"story_id"`
	Position    int    `gorm:"not null" json:"position"`
}

// TableName specifies the table name for GORM
func (StorylineStory) TableName() string {
	return "storyline_stories"
}

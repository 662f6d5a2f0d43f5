package repository

import (
	"context"
	"errors"

	"realtime/internal/models"

	"gorm.io/gorm"
)

// StorylineRepository defines the interface for storyline data operations.
type StorylineRepository interface {
	Create(ctx context.Context, storyline *models.Storyline, storyIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Storyline, error)
	ListForAuthor(ctx context.Context, authorID string) ([]models.Storyline, error)
}

// storylineRepository implements StorylineRepository
type storylineRepository struct {
	db *gorm.DB
}

// NewStorylineRepository creates a new storyline repository
func NewStorylineRepository(db *gorm.DB) StorylineRepository {
	return &storylineRepository{db: db}
}

// Create persists the storyline row and its ordered membership rows in one
// transaction, so a failed write leaves no partial grouping behind.
func (r *storylineRepository) Create(ctx context.Context, storyline *models.Storyline, storyIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(storyline).Error; err != nil {
			return err
		}
		for i, storyID := range storyIDs {
			member := models.StorylineStory{
				StorylineID: storyline.ID,
				StoryID:     storyID,
				Position:    i,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewTransientError("storyline write", err)
	}
	return nil
}

func (r *storylineRepository) GetByID(ctx context.Context, id string) (*models.Storyline, error) {
	var storyline models.Storyline
	if err := r.db.WithContext(ctx).First(&storyline, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Storyline", id)
		}
		return nil, models.NewInternalError(err)
	}
	stories, err := r.resolveStories(ctx, storyline.ID)
	if err != nil {
		return nil, err
	}
	storyline.Stories = stories
	return &storyline, nil
}

// ListForAuthor returns the author's storylines, most recent first, each with
// its member stories resolved in position order. Storylines and stories have
// independent lifecycles: membership rows pointing at deleted stories are
// skipped here rather than cascaded on delete.
func (r *storylineRepository) ListForAuthor(ctx context.Context, authorID string) ([]models.Storyline, error) {
	var storylines []models.Storyline
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&storylines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for i := range storylines {
		stories, err := r.resolveStories(ctx, storylines[i].ID)
		if err != nil {
			return nil, err
		}
		storylines[i].Stories = stories
	}
	return storylines, nil
}

func (r *storylineRepository) resolveStories(ctx context.Context, storylineID string) ([]models.Story, error) {
	var stories []models.Story
	if err := r.db.WithContext(ctx).
		Table("stories").
		Joins("JOIN storyline_stories ss ON ss.story_id = stories.id").
		Where("ss.storyline_id = ?", storylineID).
		Order("ss.position ASC").
		Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if stories == nil {
		stories = []models.Story{}
	}
	return stories, nil
}

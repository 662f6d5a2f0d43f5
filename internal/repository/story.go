package repository

import (
	"context"
	"errors"
	"time"

	"realtime/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id string) (*models.Story, error)
	Delete(ctx context.Context, id string) error
	ListForAuthor(ctx context.Context, authorID string, cutoff time.Time) ([]models.Story, error)
	ListExpired(ctx context.Context, cutoff time.Time) ([]models.Story, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// storyRepository implements StoryRepository
type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return models.NewTransientError("story write", err)
	}
	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &story, nil
}

func (r *storyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Story{}, "id = ?", id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Story", id)
	}
	return nil
}

// ListForAuthor returns the author's stories ordered most recent first.
// Stories older than cutoff are filtered out; pass the zero time to disable
// the filter.
func (r *storyRepository) ListForAuthor(ctx context.Context, authorID string, cutoff time.Time) ([]models.Story, error) {
	var stories []models.Story
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID)
	if !cutoff.IsZero() {
		q = q.Where("timestamp >= ?", cutoff)
	}
	if err := q.Order("timestamp DESC").Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

// ListExpired returns stories older than cutoff, for the retention sweeper.
func (r *storyRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]models.Story, error) {
	var stories []models.Story
	if err := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

func (r *storyRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Delete(&models.Story{}, "id IN ?", ids)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

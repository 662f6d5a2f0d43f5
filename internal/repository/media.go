package repository

import (
	"context"
	"errors"

	"realtime/internal/models"

	"gorm.io/gorm"
)

// MediaRepository defines storage operations for uploaded blob metadata.
type MediaRepository interface {
	Create(ctx context.Context, blob *models.MediaBlob) error
	GetByHash(ctx context.Context, hash string) (*models.MediaBlob, error)
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository returns a repository implementation for blob metadata.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, blob *models.MediaBlob) error {
	if err := r.db.WithContext(ctx).Create(blob).Error; err != nil {
		return models.NewTransientError("media metadata write", err)
	}
	return nil
}

func (r *mediaRepository) GetByHash(ctx context.Context, hash string) (*models.MediaBlob, error) {
	var blob models.MediaBlob
	if err := r.db.WithContext(ctx).First(&blob, "hash = ?", hash).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Media", hash)
		}
		return nil, models.NewInternalError(err)
	}
	return &blob, nil
}

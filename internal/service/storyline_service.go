package service

import (
	"context"

	"realtime/internal/models"
	"realtime/internal/repository"
)

// StorylineService provides storyline grouping business logic.
type StorylineService struct {
	storylineRepo repository.StorylineRepository
	storyRepo     repository.StoryRepository
	userRepo      repository.UserRepository
}

// NewStorylineService returns a new StorylineService.
func NewStorylineService(
	storylineRepo repository.StorylineRepository,
	storyRepo repository.StoryRepository,
	userRepo repository.UserRepository,
) *StorylineService {
	return &StorylineService{
		storylineRepo: storylineRepo,
		storyRepo:     storyRepo,
		userRepo:      userRepo,
	}
}

// CreateStoryline groups existing stories into a new storyline owned by the
// author. Every referenced story must exist and belong to the author.
func (s *StorylineService) CreateStoryline(ctx context.Context, authorID string, storyIDs []string) (*models.Storyline, error) {
	if len(storyIDs) == 0 {
		return nil, models.NewValidationError("At least one story is required")
	}
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	for _, storyID := range storyIDs {
		story, err := s.storyRepo.GetByID(ctx, storyID)
		if err != nil {
			return nil, err
		}
		if story.AuthorID != authorID {
			return nil, models.NewUnauthorizedError("Storylines can only group your own stories")
		}
	}

	storyline := &models.Storyline{AuthorID: authorID}
	if err := s.storylineRepo.Create(ctx, storyline, storyIDs); err != nil {
		return nil, err
	}

	created, err := s.storylineRepo.GetByID(ctx, storyline.ID)
	if err != nil {
		return nil, err
	}
	created.AuthorProfileImageRef = author.ProfileImageRef
	return created, nil
}

// ListStorylinesForUser returns the author's storylines, most recent first,
// each annotated with the author's current profile image reference.
func (s *StorylineService) ListStorylinesForUser(ctx context.Context, userID string) ([]models.Storyline, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	storylines, err := s.storylineRepo.ListForAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range storylines {
		storylines[i].AuthorProfileImageRef = user.ProfileImageRef
	}
	if storylines == nil {
		storylines = []models.Storyline{}
	}
	return storylines, nil
}

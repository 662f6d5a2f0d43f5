package service

import (
	"context"
	"time"

	"realtime/internal/cache"
	"realtime/internal/models"
	"realtime/internal/repository"
)

// StoryService provides story business logic: creation, author-only
// deletion, and expiry-aware listings.
type StoryService struct {
	storyRepo repository.StoryRepository
	userRepo  repository.UserRepository
	ttl       time.Duration
}

// NewStoryService returns a new StoryService. A zero ttl disables expiry.
func NewStoryService(storyRepo repository.StoryRepository, userRepo repository.UserRepository, ttl time.Duration) *StoryService {
	return &StoryService{
		storyRepo: storyRepo,
		userRepo:  userRepo,
		ttl:       ttl,
	}
}

// TTL returns the configured story retention duration (zero when disabled).
func (s *StoryService) TTL() time.Duration { return s.ttl }

// expiryCutoff returns the oldest timestamp still considered live, or the
// zero time when expiry is disabled.
func (s *StoryService) expiryCutoff() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().Add(-s.ttl)
}

// CreateStory persists a new story for the author. A failed write leaves no
// partial record.
func (s *StoryService) CreateStory(ctx context.Context, authorID, imageRef string) (*models.Story, error) {
	if imageRef == "" {
		return nil, models.NewValidationError("Image reference is required")
	}
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	story := &models.Story{
		AuthorID: authorID,
		ImageRef: imageRef,
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	if err := cache.InvalidateUserStories(ctx, authorID); err != nil {
		return nil, models.NewTransientError("story cache invalidation", err)
	}
	return story, nil
}

// DeleteStory removes a story. Only the author may delete; the check runs
// here, server-side, not in any client. The cached listing is invalidated
// before returning so the caller never observes the deleted story again.
func (s *StoryService) DeleteStory(ctx context.Context, requesterID, storyID string) error {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != requesterID {
		return models.NewUnauthorizedError("Only the author can delete a story")
	}

	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return err
	}
	if err := cache.InvalidateUserStories(ctx, story.AuthorID); err != nil {
		return models.NewTransientError("story cache invalidation", err)
	}
	return nil
}

// ListStoriesForUser returns the user's live stories, most recent first.
func (s *StoryService) ListStoriesForUser(ctx context.Context, userID string) ([]models.Story, error) {
	if stories, ok := cache.GetUserStories(ctx, userID); ok {
		return stories, nil
	}

	stories, err := s.storyRepo.ListForAuthor(ctx, userID, s.expiryCutoff())
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []models.Story{}
	}
	cache.SetUserStories(ctx, userID, stories)
	return stories, nil
}

// ListStoriesForUsers is the batch form used by the feed aggregator:
// one listing per requested user, merged into a map keyed by author. Every
// requested id is present in the result, with an empty slice when the user
// has no live stories.
func (s *StoryService) ListStoriesForUsers(ctx context.Context, userIDs []string) (map[string][]models.Story, error) {
	result := make(map[string][]models.Story, len(userIDs))
	for _, id := range userIDs {
		stories, err := s.ListStoriesForUser(ctx, id)
		if err != nil {
			return nil, err
		}
		result[id] = stories
	}
	return result, nil
}

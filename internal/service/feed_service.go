package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"realtime/internal/middleware"
	"realtime/internal/models"
	"realtime/internal/observability"
	"realtime/internal/repository"
)

// FriendFeed is the merged fan-out result: one entry per friend for both
// stories and storylines, present even when the friend contributed nothing.
type FriendFeed struct {
	Stories    map[string][]models.Story     `json:"stories"`
	Storylines map[string][]models.Storyline `json:"storylines"`
}

// FeedService aggregates stories and storylines across a viewer's friends.
type FeedService struct {
	userRepo   repository.UserRepository
	stories    *StoryService
	storylines *StorylineService
	legTimeout time.Duration
}

// NewFeedService returns a new FeedService. legTimeout bounds each
// per-friend fetch.
func NewFeedService(
	userRepo repository.UserRepository,
	stories *StoryService,
	storylines *StorylineService,
	legTimeout time.Duration,
) *FeedService {
	return &FeedService{
		userRepo:   userRepo,
		stories:    stories,
		storylines: storylines,
		legTimeout: legTimeout,
	}
}

// RefreshFriendFeed resolves the viewer's friend list and fetches every
// friend's stories and storylines concurrently. The merged result is
// published in one return only after every leg has completed or timed out:
// a slow or failed leg degrades to an empty entry for that friend, it never
// fails the aggregate or blocks it forever.
func (s *FeedService) RefreshFriendFeed(ctx context.Context, viewerID string) (*FriendFeed, error) {
	friendIDs, err := s.userRepo.GetFriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	feed := &FriendFeed{
		Stories:    make(map[string][]models.Story, len(friendIDs)),
		Storylines: make(map[string][]models.Storyline, len(friendIDs)),
	}
	// Pre-seed empty entries so failed legs still appear in the result.
	for _, id := range friendIDs {
		feed.Stories[id] = []models.Story{}
		feed.Storylines[id] = []models.Storyline{}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, friendID := range friendIDs {
		wg.Add(2)

		go func(id string) {
			defer wg.Done()
			legCtx, cancel := context.WithTimeout(ctx, s.legTimeout)
			defer cancel()

			stories, err := s.stories.ListStoriesForUser(legCtx, id)
			if err != nil {
				observability.FanoutLegFailures.WithLabelValues("stories").Inc()
				middleware.Logger.WarnContext(ctx, "feed leg degraded to empty",
					slog.String("kind", "stories"),
					slog.String("friend_id", id),
					slog.String("error", err.Error()))
				return
			}
			mu.Lock()
			feed.Stories[id] = stories
			mu.Unlock()
		}(friendID)

		go func(id string) {
			defer wg.Done()
			legCtx, cancel := context.WithTimeout(ctx, s.legTimeout)
			defer cancel()

			storylines, err := s.storylines.ListStorylinesForUser(legCtx, id)
			if err != nil {
				observability.FanoutLegFailures.WithLabelValues("storylines").Inc()
				middleware.Logger.WarnContext(ctx, "feed leg degraded to empty",
					slog.String("kind", "storylines"),
					slog.String("friend_id", id),
					slog.String("error", err.Error()))
				return
			}
			mu.Lock()
			feed.Storylines[id] = storylines
			mu.Unlock()
		}(friendID)
	}

	wg.Wait()
	return feed, nil
}

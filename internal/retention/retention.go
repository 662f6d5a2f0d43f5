// Package retention removes expired stories in the background.
package retention

import (
	"context"
	"log/slog"
	"time"

	"realtime/internal/cache"
	"realtime/internal/middleware"
	"realtime/internal/observability"
	"realtime/internal/repository"
)

// sweepInterval is how often the sweeper scans for expired stories.
const sweepInterval = 5 * time.Minute

// sweepBatchTimeout bounds a single sweep pass.
const sweepBatchTimeout = 30 * time.Second

// StorySweeper periodically deletes stories older than the configured TTL.
// Expired stories are already filtered out of every read path; the sweeper
// only reclaims storage. A zero TTL disables both expiry and the sweeper.
type StorySweeper struct {
	storyRepo repository.StoryRepository
	ttl       time.Duration
	interval  time.Duration
}

// NewStorySweeper returns a sweeper for the given retention duration.
func NewStorySweeper(storyRepo repository.StoryRepository, ttl time.Duration) *StorySweeper {
	return &StorySweeper{
		storyRepo: storyRepo,
		ttl:       ttl,
		interval:  sweepInterval,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled. When retention is
// disabled it returns immediately.
func (s *StorySweeper) Run(ctx context.Context) {
	if s.ttl <= 0 {
		middleware.Logger.Info("story retention disabled, sweeper not running")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single expiry pass.
func (s *StorySweeper) SweepOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, sweepBatchTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.ttl)
	expired, err := s.storyRepo.ListExpired(sweepCtx, cutoff)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "expired story scan failed",
			slog.String("error", err.Error()))
		return
	}
	if len(expired) == 0 {
		return
	}

	ids := make([]string, 0, len(expired))
	authors := make(map[string]struct{})
	for _, story := range expired {
		ids = append(ids, story.ID)
		authors[story.AuthorID] = struct{}{}
	}

	deleted, err := s.storyRepo.DeleteByIDs(sweepCtx, ids)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "expired story delete failed",
			slog.String("error", err.Error()))
		return
	}
	observability.StoriesExpired.Add(float64(deleted))

	// Drop cached listings so readers stop seeing the removed stories.
	for authorID := range authors {
		if err := cache.InvalidateUserStories(sweepCtx, authorID); err != nil {
			middleware.Logger.WarnContext(ctx, "story cache invalidation failed after sweep",
				slog.String("author_id", authorID),
				slog.String("error", err.Error()))
		}
	}

	middleware.Logger.InfoContext(ctx, "expired stories removed",
		slog.Int64("count", deleted),
		slog.Int("authors", len(authors)))
}

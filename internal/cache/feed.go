package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"realtime/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	userStoriesKeyPrefix = "stories:user:%s"

	// UserStoriesTTL bounds staleness of a cached per-user story listing.
	UserStoriesTTL = 2 * time.Minute
)

// UserStoriesKey derives the cache key for a user's story listing.
func UserStoriesKey(userID string) string {
	return fmt.Sprintf(userStoriesKeyPrefix, userID)
}

// GetUserStories returns the cached story listing for a user, or ok=false on
// a miss or when the cache is unavailable.
func GetUserStories(ctx context.Context, userID string) ([]models.Story, bool) {
	if client == nil {
		return nil, false
	}
	raw, err := client.Get(ctx, UserStoriesKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var stories []models.Story
	if err := json.Unmarshal([]byte(raw), &stories); err != nil {
		return nil, false
	}
	return stories, true
}

// SetUserStories caches a user's story listing. Failures are ignored; the
// cache is an optimization, never the source of truth.
func SetUserStories(ctx context.Context, userID string, stories []models.Story) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(stories)
	if err != nil {
		return
	}
	client.Set(ctx, UserStoriesKey(userID), raw, UserStoriesTTL)
}

// InvalidateUserStories drops the cached story listing for a user.
// Returns an error only when the cache is reachable but the delete failed,
// so callers can refuse to leave a stale listing behind.
func InvalidateUserStories(ctx context.Context, userID string) error {
	if client == nil {
		return nil
	}
	if err := client.Del(ctx, UserStoriesKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

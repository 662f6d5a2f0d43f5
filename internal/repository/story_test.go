package repository

import (
	"context"
	"testing"
	"time"

	"realtime/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Author", "author@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")

	now := time.Now().UTC()

	t.Run("Create and GetByID", func(t *testing.T) {
		story := &models.Story{AuthorID: author.ID, ImageRef: "ref-1"}
		err := repo.Create(ctx, story)
		assert.NoError(t, err)
		assert.NotEmpty(t, story.ID)

		got, err := repo.GetByID(ctx, story.ID)
		assert.NoError(t, err)
		assert.Equal(t, author.ID, got.AuthorID)
	})

	t.Run("ListForAuthor newest first", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewStoryRepository(db)

		seed := []models.Story{
			{AuthorID: author.ID, ImageRef: "old", Timestamp: now.Add(-3 * time.Hour)},
			{AuthorID: author.ID, ImageRef: "new", Timestamp: now.Add(-1 * time.Hour)},
			{AuthorID: author.ID, ImageRef: "mid", Timestamp: now.Add(-2 * time.Hour)},
			{AuthorID: other.ID, ImageRef: "noise", Timestamp: now},
		}
		for i := range seed {
			require.NoError(t, repo.Create(ctx, &seed[i]))
		}

		stories, err := repo.ListForAuthor(ctx, author.ID, time.Time{})
		assert.NoError(t, err)
		require.Len(t, stories, 3)
		assert.Equal(t, "new", stories[0].ImageRef)
		assert.Equal(t, "mid", stories[1].ImageRef)
		assert.Equal(t, "old", stories[2].ImageRef)
	})

	t.Run("ListForAuthor honors expiry cutoff", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewStoryRepository(db)

		live := &models.Story{AuthorID: author.ID, ImageRef: "live", Timestamp: now.Add(-1 * time.Hour)}
		expired := &models.Story{AuthorID: author.ID, ImageRef: "expired", Timestamp: now.Add(-48 * time.Hour)}
		require.NoError(t, repo.Create(ctx, live))
		require.NoError(t, repo.Create(ctx, expired))

		stories, err := repo.ListForAuthor(ctx, author.ID, now.Add(-24*time.Hour))
		assert.NoError(t, err)
		require.Len(t, stories, 1)
		assert.Equal(t, "live", stories[0].ImageRef)
	})

	t.Run("Delete removes the story", func(t *testing.T) {
		story := &models.Story{AuthorID: author.ID, ImageRef: "doomed"}
		require.NoError(t, repo.Create(ctx, story))

		err := repo.Delete(ctx, story.ID)
		assert.NoError(t, err)

		_, err = repo.GetByID(ctx, story.ID)
		assert.Error(t, err)
	})

	t.Run("Delete missing story is NotFound", func(t *testing.T) {
		err := repo.Delete(ctx, "missing-id")
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("ListExpired and DeleteByIDs", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewStoryRepository(db)

		fresh := &models.Story{AuthorID: author.ID, ImageRef: "fresh", Timestamp: now}
		stale1 := &models.Story{AuthorID: author.ID, ImageRef: "stale-1", Timestamp: now.Add(-30 * time.Hour)}
		stale2 := &models.Story{AuthorID: other.ID, ImageRef: "stale-2", Timestamp: now.Add(-40 * time.Hour)}
		for _, s := range []*models.Story{fresh, stale1, stale2} {
			require.NoError(t, repo.Create(ctx, s))
		}

		expired, err := repo.ListExpired(ctx, now.Add(-24*time.Hour))
		assert.NoError(t, err)
		require.Len(t, expired, 2)

		ids := []string{expired[0].ID, expired[1].ID}
		deleted, err := repo.DeleteByIDs(ctx, ids)
		assert.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		remaining, err := repo.ListForAuthor(ctx, author.ID, time.Time{})
		assert.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "fresh", remaining[0].ImageRef)
	})
}

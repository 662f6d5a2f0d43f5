package repository

import (
	"context"
	"testing"
	"time"

	"realtime/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorylineRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStorylineRepository(db)
	storyRepo := NewStoryRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Author", "author@example.com")

	makeStory := func(ref string) *models.Story {
		story := &models.Story{AuthorID: author.ID, ImageRef: ref}
		require.NoError(t, storyRepo.Create(ctx, story))
		return story
	}

	t.Run("Create and GetByID resolve stories in position order", func(t *testing.T) {
		s1, s2, s3 := makeStory("a"), makeStory("b"), makeStory("c")

		storyline := &models.Storyline{AuthorID: author.ID}
		err := repo.Create(ctx, storyline, []string{s3.ID, s1.ID, s2.ID})
		assert.NoError(t, err)
		assert.NotEmpty(t, storyline.ID)

		got, err := repo.GetByID(ctx, storyline.ID)
		assert.NoError(t, err)
		require.Len(t, got.Stories, 3)
		assert.Equal(t, "c", got.Stories[0].ImageRef)
		assert.Equal(t, "a", got.Stories[1].ImageRef)
		assert.Equal(t, "b", got.Stories[2].ImageRef)
	})

	t.Run("Deleted member stories are skipped on read", func(t *testing.T) {
		s1, s2 := makeStory("keep"), makeStory("drop")

		storyline := &models.Storyline{AuthorID: author.ID}
		require.NoError(t, repo.Create(ctx, storyline, []string{s1.ID, s2.ID}))

		require.NoError(t, storyRepo.Delete(ctx, s2.ID))

		got, err := repo.GetByID(ctx, storyline.ID)
		assert.NoError(t, err)
		require.Len(t, got.Stories, 1)
		assert.Equal(t, "keep", got.Stories[0].ImageRef)
	})

	t.Run("ListForAuthor newest first", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewStorylineRepository(db)

		older := &models.Storyline{AuthorID: author.ID, CreatedAt: time.Now().UTC().Add(-time.Hour)}
		newer := &models.Storyline{AuthorID: author.ID, CreatedAt: time.Now().UTC()}
		require.NoError(t, repo.Create(ctx, older, nil))
		require.NoError(t, repo.Create(ctx, newer, nil))

		storylines, err := repo.ListForAuthor(ctx, author.ID)
		assert.NoError(t, err)
		require.Len(t, storylines, 2)
		assert.Equal(t, newer.ID, storylines[0].ID)
		assert.Equal(t, older.ID, storylines[1].ID)
		// Resolved story slices are non-nil even when empty.
		assert.NotNil(t, storylines[0].Stories)
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing-id")
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

package server

import (
	"realtime/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateStory handles POST /api/stories
func (s *Server) CreateStory(c *fiber.Ctx) error {
	var req struct {
		ImageRef string `json:"image_ref"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.CreateStory(c.Context(), currentUserID(c), req.ImageRef)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// DeleteStory handles DELETE /api/stories/:id. Only the author may delete.
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	id, err := s.requireParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.storyService.DeleteStory(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserStories handles GET /api/users/:id/stories. Expired stories are
// filtered server-side regardless of what is still on disk.
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	id, err := s.requireParam(c, "id")
	if err != nil {
		return nil
	}

	stories, err := s.storyService.ListStoriesForUser(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}

// CreateStoryline handles POST /api/storylines
func (s *Server) CreateStoryline(c *fiber.Ctx) error {
	var req struct {
		StoryIDs []string `json:"story_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	storyline, err := s.storylineService.CreateStoryline(c.Context(), currentUserID(c), req.StoryIDs)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(storyline)
}

// GetUserStorylines handles GET /api/users/:id/storylines
func (s *Server) GetUserStorylines(c *fiber.Ctx) error {
	id, err := s.requireParam(c, "id")
	if err != nil {
		return nil
	}

	storylines, err := s.storylineService.ListStorylinesForUser(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"storylines": storylines})
}

// GetFriendFeed handles GET /api/feed: the aggregated stories and
// storylines of every friend, assembled concurrently.
func (s *Server) GetFriendFeed(c *fiber.Ctx) error {
	feed, err := s.feedService.RefreshFriendFeed(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(feed)
}

package server

import (
	"realtime/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.directoryService.GetUser(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.requireParam(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.directoryService.GetUser(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users with optional ?q= name/email filter.
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	filter := c.Query("q")

	users, err := s.directoryService.ListUsers(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"users":  users,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// UpdateMyImages handles PUT /api/users/me/images
func (s *Server) UpdateMyImages(c *fiber.Ctx) error {
	var req struct {
		ProfileImageRef string `json:"profile_image_ref"`
		BannerImageRef  string `json:"banner_image_ref"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.directoryService.UpdateImageRefs(c.Context(), currentUserID(c), req.ProfileImageRef, req.BannerImageRef)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(user)
}

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.directoryService.GetFriends(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{"friends": friends})
}

// AddFriend handles POST /api/friends/:userId. The edge is one-directional:
// only the caller's friend list grows. Re-adding an existing friend is a
// no-op success.
func (s *Server) AddFriend(c *fiber.Ctx) error {
	friendID, err := s.requireParam(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.directoryService.AddFriend(c.Context(), currentUserID(c), friendID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

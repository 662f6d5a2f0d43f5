package server

import (
	"realtime/internal/models"
	"realtime/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		RecipientID string `json:"recipient_id"`
		Text        string `json:"text"`
		ImageRef    string `json:"image_ref"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:    currentUserID(c),
		RecipientID: req.RecipientID,
		Text:        req.Text,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversation handles GET /api/messages/:userId. It returns every
// message between the caller and the other user, oldest first.
func (s *Server) GetConversation(c *fiber.Ctx) error {
	otherID, err := s.requireParam(c, "userId")
	if err != nil {
		return nil
	}

	messages, err := s.messageService.GetConversation(c.Context(), currentUserID(c), otherID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if messages == nil {
		messages = []models.Message{}
	}
	return c.JSON(fiber.Map{"messages": messages})
}

package server

import (
	"io"

	"realtime/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media. Accepts a multipart "file" field or
// a raw request body, and returns the blob's opaque ref.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	var data []byte
	contentType := c.Get("Content-Type")

	if file, err := c.FormFile("file"); err == nil {
		f, openErr := file.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unreadable upload"))
		}
		defer f.Close()

		data, err = io.ReadAll(f)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unreadable upload"))
		}
		contentType = file.Header.Get("Content-Type")
	} else {
		data = c.Body()
	}

	blob, err := s.mediaService.Upload(c.Context(), currentUserID(c), contentType, data)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ref":          s.mediaService.RefFor(blob),
		"hash":         blob.Hash,
		"content_type": blob.ContentType,
		"bytes":        blob.Bytes,
	})
}

// DownloadMedia handles GET /api/media/:hash
func (s *Server) DownloadMedia(c *fiber.Ctx) error {
	hash, err := s.requireParam(c, "hash")
	if err != nil {
		return nil
	}

	data, contentType, err := s.mediaService.Download(c.Context(), hash)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	c.Set("Content-Type", contentType)
	// Content-addressed blobs never change, cache aggressively.
	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Send(data)
}

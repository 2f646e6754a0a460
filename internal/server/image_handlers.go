package server

import (
	"io"
	"strings"

	"moodblog/internal/models"
	"moodblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images. The uploaded file is validated,
// re-encoded and stored; the response carries the URLs to attach to a post.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	uploaded, err := s.imageService.Upload(service.UploadImageInput{
		UserID:      userID,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

// ServeMedia handles GET /media/i/:hash/:file where file is master.jpg or
// master.webp. The hash is validated before any path is built.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	hash := strings.TrimSpace(c.Params("hash"))
	file := c.Params("file")

	format := strings.TrimPrefix(file, "master.")
	if format == file {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid media path"))
	}

	path, err := s.imageService.ResolveForServing(hash, format)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.SendFile(path)
}

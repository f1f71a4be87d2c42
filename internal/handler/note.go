package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/notmat/api/internal/middleware"
	"github.com/notmat/api/internal/model"
	"github.com/notmat/api/internal/service"
	"github.com/notmat/api/internal/store"
	"github.com/notmat/api/pkg/response"
)

type NoteHandler struct {
	service   *service.NoteService
	validator *validator.Validate
}

func NewNoteHandler(svc *service.NoteService, v *validator.Validate) *NoteHandler {
	return &NoteHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/v1/notes
func (h *NoteHandler) Create(c *fiber.Ctx) error {
	var req model.CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.CreateNote(c.Context(), middleware.GetUserID(c), req.RawText, req.Options)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, result)
}

// Status handles GET /api/v1/notes/:revisionId/status
func (h *NoteHandler) Status(c *fiber.Ctx) error {
	revisionID := c.Params("revisionId")
	if revisionID == "" {
		return response.ValidationError(c, "Revision ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), revisionID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return response.NotFound(c, "Revision not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/v1/notes/:revisionId/result
func (h *NoteHandler) Result(c *fiber.Ctx) error {
	revisionID := c.Params("revisionId")
	if revisionID == "" {
		return response.ValidationError(c, "Revision ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), revisionID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return response.NotFound(c, "Revision not found")
		}
		if errors.Is(err, service.ErrNotReady) {
			return response.NotReady(c, "Revision not ready")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Export handles GET /api/v1/notes/:revisionId/export?format=markdown
func (h *NoteHandler) Export(c *fiber.Ctx) error {
	revisionID := c.Params("revisionId")
	if revisionID == "" {
		return response.ValidationError(c, "Revision ID is required", nil)
	}

	content, err := h.service.GetExport(c.Context(), revisionID, c.Query("format"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidFormat) {
			return response.ValidationError(c, "Invalid format. Must be markdown, html, or text", nil)
		}
		if errors.Is(err, store.ErrJobNotFound) {
			return response.NotFound(c, "Revision not found")
		}
		if errors.Is(err, service.ErrNotReady) {
			return response.NotReady(c, "Revision not ready")
		}
		return response.ServiceError(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(content)
}

// List handles GET /api/v1/notes
func (h *NoteHandler) List(c *fiber.Ctx) error {
	items, err := h.service.ListNotes(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, items)
}

func formatValidationErrors(err error) []fiber.Map {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	details := make([]fiber.Map, 0, len(ve))
	for _, fieldErr := range ve {
		details = append(details, fiber.Map{
			"field": fieldErr.Field(),
			"rule":  fieldErr.Tag(),
		})
	}
	return details
}

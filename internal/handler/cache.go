package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/notmat/api/internal/service"
	"github.com/notmat/api/pkg/response"
)

type CacheHandler struct {
	service *service.NoteService
}

func NewCacheHandler(svc *service.NoteService) *CacheHandler {
	return &CacheHandler{service: svc}
}

// Invalidate handles POST /api/v1/cache/invalidate. It clears the cache
// index only; stored revisions stay retrievable by id.
func (h *CacheHandler) Invalidate(c *fiber.Ctx) error {
	if err := h.service.InvalidateCache(c.Context()); err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, fiber.Map{"invalidated": true})
}

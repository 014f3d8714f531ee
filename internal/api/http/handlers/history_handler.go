package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/service"
)

// HistoryHandler serves ticket audit trails.
type HistoryHandler struct {
	service *service.HistoryService
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: historyService}
}

// List GET /tickets/:id/history.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListHistory(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ID:         e.ID,
			ChangedBy:  e.ChangedBy,
			ChangeType: e.ChangeType,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			CreatedAt:  e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

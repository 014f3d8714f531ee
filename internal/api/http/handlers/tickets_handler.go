package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/service"
)

// TicketsHandler manages ticket endpoints for every role.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{Items: items, Limit: filter.Limit, Offset: filter.Offset}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Transitions GET /tickets/:id/transitions.
func (h *TicketsHandler) Transitions(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	allowed, err := h.service.AllowedTransitions(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionsResponse{TicketID: id, Allowed: allowed}})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), actor, id, service.StatusUpdateInput{
		Status:          req.Status,
		SupportFeedback: req.SupportFeedback,
		InternalNotes:   req.InternalNotes,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateFeedback PUT /tickets/:id/feedback.
func (h *TicketsHandler) UpdateFeedback(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateFeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.UpdateFeedback(c.UserContext(), actor, id, service.FeedbackInput{
		Feedback:        req.Feedback,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// AssignTicket PUT /tickets/:id/assignee.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := h.service.AssignTicket(c.UserContext(), actor, id, service.AssignInput{
		Assignee:        req.Assignee,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id. An optional ?version= guards against stale deletes.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	version, err := optionalInt(c.Query("version"))
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), actor, id, version); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = 20
	case filter.Limit > 100:
		filter.Limit = 100
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.SearchTerm = &q
	}
	if creator := c.Query("created_by"); creator != "" {
		filter.CreatedBy = &creator
	}
	if assignee := c.Query("assignee"); assignee != "" {
		filter.Assignee = &assignee
	}

	var err error
	if filter.Statuses, err = splitEnum("status", c.Query("status"), domain.ParseTicketStatus); err != nil {
		return filter, err
	}
	if filter.Priorities, err = splitEnum("priority", c.Query("priority"), domain.ParseTicketPriority); err != nil {
		return filter, err
	}
	if filter.Categories, err = splitEnum("category", c.Query("category"), domain.ParseTicketCategory); err != nil {
		return filter, err
	}
	return filter, nil
}

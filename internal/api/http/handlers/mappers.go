package handlers

import (
	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/domain"
)

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Priority:        ticket.Priority,
		Category:        ticket.Category,
		Status:          ticket.Status,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		CreatedBy:       ticket.CreatedBy,
		LastUpdatedBy:   ticket.LastUpdatedBy,
		Assignee:        ticket.Assignee,
		Feedback:        ticket.Feedback,
		SupportFeedback: ticket.SupportFeedback,
		InternalNotes:   ticket.InternalNotes,
		Sentiment:       ticket.Sentiment,
		Version:         ticket.Version,
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

package dto

import (
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title" validate:"required,max=400"`
	Description string                `json:"description" validate:"max=10000"`
	Priority    domain.TicketPriority `json:"priority" validate:"required,oneof=Low Medium High"`
	Category    domain.TicketCategory `json:"category" validate:"required,oneof=Bug Feature Support"`
}

// UpdateStatusRequest payload. Omitted notes keep their stored value.
type UpdateStatusRequest struct {
	Status          domain.TicketStatus `json:"status" validate:"required,oneof=New InProgress Resolved"`
	SupportFeedback *string             `json:"support_feedback" validate:"omitempty,max=10000"`
	InternalNotes   *string             `json:"internal_notes" validate:"omitempty,max=10000"`
	ExpectedVersion *int                `json:"expected_version" validate:"omitempty,min=1"`
}

// UpdateFeedbackRequest payload.
type UpdateFeedbackRequest struct {
	Feedback        string `json:"feedback" validate:"max=10000"`
	ExpectedVersion *int   `json:"expected_version" validate:"omitempty,min=1"`
}

// AssignTicketRequest payload; a null assignee clears the assignment.
type AssignTicketRequest struct {
	Assignee        *string `json:"assignee" validate:"omitempty,min=1,max=64"`
	ExpectedVersion *int    `json:"expected_version" validate:"omitempty,min=1"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID              int64                 `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Priority        domain.TicketPriority `json:"priority"`
	Category        domain.TicketCategory `json:"category"`
	Status          domain.TicketStatus   `json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	CreatedBy       string                `json:"created_by"`
	LastUpdatedBy   *string               `json:"last_updated_by"`
	Assignee        *string               `json:"assignee"`
	Feedback        *string               `json:"feedback"`
	SupportFeedback *string               `json:"support_feedback"`
	InternalNotes   *string               `json:"internal_notes,omitempty"`
	Sentiment       domain.Sentiment      `json:"sentiment"`
	Version         int                   `json:"version"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Items  []TicketResponse `json:"items"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// TransitionsResponse lists the statuses the caller may choose.
type TransitionsResponse struct {
	TicketID int64                 `json:"ticket_id"`
	Allowed  []domain.TicketStatus `json:"allowed"`
}

// HistoryEntryResponse is one audit trail entry.
type HistoryEntryResponse struct {
	ID         int64                   `json:"id"`
	ChangedBy  string                  `json:"changed_by"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

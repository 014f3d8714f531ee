package events

import (
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketFeedbackAdded EventType = "ticket_feedback_added"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventUserCreated         EventType = "user_created"
	EventUserDeleted         EventType = "user_deleted"
)

// AllTicketEvents lists the ticket lifecycle events in publication order.
var AllTicketEvents = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketFeedbackAdded,
	EventTicketAssigned,
	EventTicketDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// ActorFrom converts the authenticated caller into event metadata.
func ActorFrom(a domain.Actor) Actor {
	return Actor{Username: a.Username, Role: a.Role}
}

// Event represents a domain event emitted by services. TicketID is zero for user events.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title     string                `json:"title"`
	Priority  domain.TicketPriority `json:"priority"`
	Category  domain.TicketCategory `json:"category"`
	Sentiment domain.Sentiment      `json:"sentiment"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	CreatedBy string              `json:"created_by"`
}

// TicketFeedbackAddedPayload payload.
type TicketFeedbackAddedPayload struct {
	Preview string `json:"preview"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssignee *string `json:"previous_assignee,omitempty"`
	Assignee         *string `json:"assignee,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title     string `json:"title"`
	CreatedBy string `json:"created_by"`
}

// UserPayload describes an account event.
type UserPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role,omitempty"`
}

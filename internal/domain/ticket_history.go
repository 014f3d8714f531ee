package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeCreated TicketChangeType = "CREATED"
	ChangeTypeStatus  TicketChangeType = "STATUS_CHANGE"
	// ChangeTypeAnnotated marks a staff save that kept the status and only
	// touched support feedback or internal notes.
	ChangeTypeAnnotated TicketChangeType = "ANNOTATED"
	ChangeTypeFeedback  TicketChangeType = "FEEDBACK_CHANGE"
	ChangeTypeAssignee  TicketChangeType = "ASSIGNEE_CHANGE"
)

// TicketHistory is an immutable audit trail entry. ChangedBy is a plain
// username so that history never blocks account removal.
type TicketHistory struct {
	ID         int64
	TicketID   int64
	ChangedBy  string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}

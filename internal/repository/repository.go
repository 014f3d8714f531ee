package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

var (
	// ErrStaleTicket reports a conditional write that lost against a concurrent update.
	ErrStaleTicket = errors.New("ticket was modified concurrently")
	// ErrUserExists reports a duplicate username.
	ErrUserExists = errors.New("user already exists")
	// ErrUserReferenced reports a user still named on a ticket.
	ErrUserReferenced = errors.New("user is referenced by tickets")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketFilter captures search parameters for ticket listings.
type TicketFilter struct {
	SearchTerm *string
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Categories []domain.TicketCategory
	CreatedBy  *string
	Assignee   *string
	Limit      int
	Offset     int
}

func (f TicketFilter) page() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (f TicketFilter) search() string {
	if f.SearchTerm == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*f.SearchTerm))
}

// StatusUpdate is a conditional status write. SupportFeedback and InternalNotes
// are left untouched when nil.
type StatusUpdate struct {
	TicketID        int64
	Version         int
	Status          domain.TicketStatus
	UpdatedAt       time.Time
	UpdatedBy       string
	SupportFeedback *string
	InternalNotes   *string
}

// FeedbackUpdate is a conditional write of the requester feedback.
type FeedbackUpdate struct {
	TicketID  int64
	Version   int
	Feedback  string
	UpdatedAt time.Time
	UpdatedBy string
}

// AssigneeUpdate is a conditional write of the assignee; nil clears it.
type AssigneeUpdate struct {
	TicketID  int64
	Version   int
	Assignee  *string
	UpdatedAt time.Time
	UpdatedBy string
}

// TicketStats aggregates figures for the administrator dashboard.
type TicketStats struct {
	Open              int
	Resolved          int
	AverageResolution time.Duration
}

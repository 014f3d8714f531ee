package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{TicketStatusNew, TicketStatusInProgress, TicketStatusResolved}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketCategory classifies the kind of request.
type TicketCategory string

const (
	TicketCategoryBug     TicketCategory = "Bug"
	TicketCategoryFeature TicketCategory = "Feature"
	TicketCategorySupport TicketCategory = "Support"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// IsOpen reports whether work on the ticket is still outstanding.
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusNew || s == TicketStatusInProgress
}

func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

func (c TicketCategory) IsValid() bool {
	switch c {
	case TicketCategoryBug, TicketCategoryFeature, TicketCategorySupport:
		return true
	}
	return false
}

func ParseTicketStatus(s string) (TicketStatus, error) {
	status := TicketStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %q", s)
	}
	return status, nil
}

func ParseTicketPriority(s string) (TicketPriority, error) {
	priority := TicketPriority(s)
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid ticket priority: %q", s)
	}
	return priority, nil
}

func ParseTicketCategory(s string) (TicketCategory, error) {
	category := TicketCategory(s)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid ticket category: %q", s)
	}
	return category, nil
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              int64
	Title           string
	Description     string
	Priority        TicketPriority
	Category        TicketCategory
	Status          TicketStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
	LastUpdatedBy   *string
	Assignee        *string
	Feedback        *string
	SupportFeedback *string
	InternalNotes   *string
	Sentiment       Sentiment
	Version         int
}

// IsOwnedBy reports whether username created the ticket.
func (t *Ticket) IsOwnedBy(username string) bool {
	return t != nil && username != "" && t.CreatedBy == username
}

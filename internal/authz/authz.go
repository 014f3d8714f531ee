// Package authz holds every role and ownership rule for tickets and accounts.
// All functions are pure: they look only at their arguments.
package authz

import "github.com/spec-kit/ticketdesk/internal/domain"

// supportTransitions is the only path Support may move a ticket along.
var supportTransitions = map[domain.TicketStatus]domain.TicketStatus{
	domain.TicketStatusNew:        domain.TicketStatusInProgress,
	domain.TicketStatusInProgress: domain.TicketStatusResolved,
}

// CanChangeStatus reports whether role may change the status of a ticket
// currently in status current.
func CanChangeStatus(role domain.Role, current domain.TicketStatus) bool {
	if !current.IsValid() {
		return false
	}
	switch role {
	case domain.RoleAdministrator:
		return true
	case domain.RoleSupport:
		return current != domain.TicketStatusResolved
	default:
		return false
	}
}

// CanTransition reports whether role may move a ticket from one status to another.
// Keeping the status unchanged counts as a transition whenever the role may change
// the status at all, so notes can be saved without moving the ticket.
func CanTransition(role domain.Role, from, to domain.TicketStatus) bool {
	if !to.IsValid() || !CanChangeStatus(role, from) {
		return false
	}
	if role == domain.RoleAdministrator || from == to {
		return true
	}
	next, ok := supportTransitions[from]
	return ok && next == to
}

// AllowedTransitions lists the target statuses role may choose from, in lifecycle
// order. The current status is included when saving without a move is permitted.
func AllowedTransitions(role domain.Role, from domain.TicketStatus) []domain.TicketStatus {
	allowed := make([]domain.TicketStatus, 0, len(domain.TicketStatuses))
	for _, to := range domain.TicketStatuses {
		if CanTransition(role, from, to) {
			allowed = append(allowed, to)
		}
	}
	return allowed
}

// CanDelete reports whether role may delete a ticket; isOwner tells whether the
// actor created it.
func CanDelete(role domain.Role, isOwner bool) bool {
	switch role {
	case domain.RoleAdministrator:
		return true
	case domain.RoleRequester:
		return isOwner
	default:
		return false
	}
}

// CanEditFeedback reports whether the actor may write the requester feedback.
// Only the creator may, and only once the ticket is resolved.
func CanEditFeedback(role domain.Role, isOwner bool, current domain.TicketStatus) bool {
	return role.IsValid() && isOwner && current == domain.TicketStatusResolved
}

// CanCreateTicket reports whether role may open tickets.
func CanCreateTicket(role domain.Role) bool {
	return role.IsValid()
}

// CanViewTicket reports whether role may read a ticket.
func CanViewTicket(role domain.Role, isOwner bool) bool {
	if role.IsStaff() {
		return true
	}
	return role == domain.RoleRequester && isOwner
}

// CanViewInternalNotes reports whether role may see notes hidden from requesters.
func CanViewInternalNotes(role domain.Role) bool {
	return role.IsStaff()
}

// CanAssign reports whether role may set or clear the assignee of a ticket.
func CanAssign(role domain.Role, current domain.TicketStatus) bool {
	switch role {
	case domain.RoleAdministrator:
		return current.IsValid()
	case domain.RoleSupport:
		return current.IsOpen()
	default:
		return false
	}
}

// CanBeAssigned reports whether a user holding role may own tickets.
func CanBeAssigned(role domain.Role) bool {
	return role.IsStaff()
}

// CanManageUsers reports whether role may create, list, or delete accounts.
func CanManageUsers(role domain.Role) bool {
	return role == domain.RoleAdministrator
}

// CanViewReports reports whether role may read the dashboard figures.
func CanViewReports(role domain.Role) bool {
	return role == domain.RoleAdministrator
}

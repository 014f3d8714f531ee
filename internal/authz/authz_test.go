package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

func TestCanChangeStatus(t *testing.T) {
	tests := []struct {
		role    domain.Role
		current domain.TicketStatus
		want    bool
	}{
		{domain.RoleAdministrator, domain.TicketStatusNew, true},
		{domain.RoleAdministrator, domain.TicketStatusInProgress, true},
		{domain.RoleAdministrator, domain.TicketStatusResolved, true},
		{domain.RoleSupport, domain.TicketStatusNew, true},
		{domain.RoleSupport, domain.TicketStatusInProgress, true},
		{domain.RoleSupport, domain.TicketStatusResolved, false},
		{domain.RoleRequester, domain.TicketStatusNew, false},
		{domain.RoleRequester, domain.TicketStatusInProgress, false},
		{domain.RoleRequester, domain.TicketStatusResolved, false},
		{domain.Role("Guest"), domain.TicketStatusNew, false},
		{domain.RoleAdministrator, domain.TicketStatus("Closed"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.current), func(t *testing.T) {
			assert.Equal(t, tt.want, CanChangeStatus(tt.role, tt.current))
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		from domain.TicketStatus
		to   domain.TicketStatus
		want bool
	}{
		{"support starts work", domain.RoleSupport, domain.TicketStatusNew, domain.TicketStatusInProgress, true},
		{"support resolves", domain.RoleSupport, domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{"support cannot skip", domain.RoleSupport, domain.TicketStatusNew, domain.TicketStatusResolved, false},
		{"support cannot revert in progress", domain.RoleSupport, domain.TicketStatusInProgress, domain.TicketStatusNew, false},
		{"support cannot reopen", domain.RoleSupport, domain.TicketStatusResolved, domain.TicketStatusInProgress, false},
		{"support keeps status to save notes", domain.RoleSupport, domain.TicketStatusInProgress, domain.TicketStatusInProgress, true},
		{"support cannot touch resolved even unchanged", domain.RoleSupport, domain.TicketStatusResolved, domain.TicketStatusResolved, false},
		{"admin reopens", domain.RoleAdministrator, domain.TicketStatusResolved, domain.TicketStatusNew, true},
		{"admin skips", domain.RoleAdministrator, domain.TicketStatusNew, domain.TicketStatusResolved, true},
		{"admin reverts", domain.RoleAdministrator, domain.TicketStatusInProgress, domain.TicketStatusNew, true},
		{"requester never", domain.RoleRequester, domain.TicketStatusResolved, domain.TicketStatusNew, false},
		{"requester not even unchanged", domain.RoleRequester, domain.TicketStatusNew, domain.TicketStatusNew, false},
		{"unknown target", domain.RoleAdministrator, domain.TicketStatusNew, domain.TicketStatus("Closed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.role, tt.from, tt.to))
		})
	}
}

func TestAllowedTransitions(t *testing.T) {
	assert.Equal(t,
		[]domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress},
		AllowedTransitions(domain.RoleSupport, domain.TicketStatusNew))
	assert.Equal(t,
		[]domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusResolved},
		AllowedTransitions(domain.RoleSupport, domain.TicketStatusInProgress))
	assert.Empty(t, AllowedTransitions(domain.RoleSupport, domain.TicketStatusResolved))
	assert.Empty(t, AllowedTransitions(domain.RoleRequester, domain.TicketStatusNew))
	assert.Equal(t, domain.TicketStatuses, AllowedTransitions(domain.RoleAdministrator, domain.TicketStatusResolved))
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		role    domain.Role
		isOwner bool
		want    bool
	}{
		{domain.RoleAdministrator, false, true},
		{domain.RoleAdministrator, true, true},
		{domain.RoleSupport, false, false},
		{domain.RoleSupport, true, false},
		{domain.RoleRequester, true, true},
		{domain.RoleRequester, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanDelete(tt.role, tt.isOwner), "role=%s owner=%v", tt.role, tt.isOwner)
	}
}

func TestCanEditFeedback(t *testing.T) {
	for _, role := range domain.Roles {
		for _, status := range domain.TicketStatuses {
			want := status == domain.TicketStatusResolved
			assert.Equal(t, want, CanEditFeedback(role, true, status), "owner role=%s status=%s", role, status)
			assert.False(t, CanEditFeedback(role, false, status), "non-owner role=%s status=%s", role, status)
		}
	}
}

func TestCanViewTicket(t *testing.T) {
	assert.True(t, CanViewTicket(domain.RoleRequester, true))
	assert.False(t, CanViewTicket(domain.RoleRequester, false))
	assert.True(t, CanViewTicket(domain.RoleSupport, false))
	assert.True(t, CanViewTicket(domain.RoleAdministrator, false))
	assert.False(t, CanViewInternalNotes(domain.RoleRequester))
	assert.True(t, CanViewInternalNotes(domain.RoleSupport))
}

func TestCanAssign(t *testing.T) {
	assert.True(t, CanAssign(domain.RoleAdministrator, domain.TicketStatusResolved))
	assert.True(t, CanAssign(domain.RoleSupport, domain.TicketStatusNew))
	assert.True(t, CanAssign(domain.RoleSupport, domain.TicketStatusInProgress))
	assert.False(t, CanAssign(domain.RoleSupport, domain.TicketStatusResolved))
	assert.False(t, CanAssign(domain.RoleRequester, domain.TicketStatusNew))

	assert.True(t, CanBeAssigned(domain.RoleSupport))
	assert.True(t, CanBeAssigned(domain.RoleAdministrator))
	assert.False(t, CanBeAssigned(domain.RoleRequester))
}

func TestAdministrativeRights(t *testing.T) {
	for _, role := range domain.Roles {
		admin := role == domain.RoleAdministrator
		assert.Equal(t, admin, CanManageUsers(role), "role=%s", role)
		assert.Equal(t, admin, CanViewReports(role), "role=%s", role)
		assert.True(t, CanCreateTicket(role), "role=%s", role)
	}
	assert.False(t, CanCreateTicket(domain.Role("")))
}

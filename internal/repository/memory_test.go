package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketdesk/internal/domain"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedTicket(t *testing.T, repo TicketRepository, title, creator string, status domain.TicketStatus, priority domain.TicketPriority, updated time.Time) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:     title,
		Priority:  priority,
		Category:  domain.TicketCategoryBug,
		Status:    status,
		CreatedAt: base,
		UpdatedAt: updated,
		CreatedBy: creator,
		Version:   1,
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	return ticket
}

func TestMemoryTickets_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Tickets()

	a := seedTicket(t, repo, "Printer broken", "alice", domain.TicketStatusNew, domain.TicketPriorityMedium, base.Add(time.Hour))
	b := seedTicket(t, repo, "VPN slow", "alice", domain.TicketStatusInProgress, domain.TicketPriorityHigh, base.Add(3*time.Hour))
	c := seedTicket(t, repo, "New laptop", "dave", domain.TicketStatusResolved, domain.TicketPriorityLow, base.Add(2*time.Hour))

	all, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	creator := "alice"
	mine, err := repo.List(ctx, TicketFilter{CreatedBy: &creator})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	term := "PRINTER"
	found, err := repo.List(ctx, TicketFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	byStatus, err := repo.List(ctx, TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusResolved}})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byPriority, err := repo.List(ctx, TicketFilter{Priorities: []domain.TicketPriority{domain.TicketPriorityHigh}})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, b.ID, byPriority[0].ID)

	paged, err := repo.List(ctx, TicketFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, c.ID, paged[0].ID)

	empty, err := repo.List(ctx, TicketFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryTickets_ConditionalUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Tickets()
	ticket := seedTicket(t, repo, "Printer broken", "alice", domain.TicketStatusNew, domain.TicketPriorityMedium, base)

	notes := "checked toner"
	err := repo.UpdateStatus(ctx, StatusUpdate{
		TicketID:      ticket.ID,
		Version:       1,
		Status:        domain.TicketStatusInProgress,
		UpdatedAt:     base.Add(time.Minute),
		UpdatedBy:     "bob",
		InternalNotes: &notes,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, got.Status)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "bob", *got.LastUpdatedBy)
	assert.Equal(t, "checked toner", *got.InternalNotes)
	assert.Nil(t, got.SupportFeedback)

	err = repo.UpdateFeedback(ctx, FeedbackUpdate{TicketID: ticket.ID, Version: 1, Feedback: "late", UpdatedBy: "alice"})
	assert.ErrorIs(t, err, ErrStaleTicket)

	err = repo.UpdateAssignee(ctx, AssigneeUpdate{TicketID: 999, Version: 1, UpdatedBy: "bob"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.ErrorIs(t, repo.Delete(ctx, 999, 1), pgx.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(ctx, ticket.ID, 1), ErrStaleTicket)
	require.NoError(t, repo.Delete(ctx, ticket.ID, 2))
	_, err = repo.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMemoryTickets_Stats(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Tickets()
	seedTicket(t, repo, "one", "alice", domain.TicketStatusNew, domain.TicketPriorityLow, base)
	seedTicket(t, repo, "two", "alice", domain.TicketStatusInProgress, domain.TicketPriorityLow, base)
	seedTicket(t, repo, "three", "alice", domain.TicketStatusResolved, domain.TicketPriorityLow, base.Add(2*time.Hour))
	seedTicket(t, repo, "four", "alice", domain.TicketStatusResolved, domain.TicketPriorityLow, base.Add(4*time.Hour))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Open)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 3*time.Hour, stats.AverageResolution)
}

func TestMemoryUsers_DeleteRestricted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := store.Users()

	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, users.Create(ctx, &domain.User{Username: name, PasswordHash: "x", Role: domain.RoleRequester}))
	}
	assert.ErrorIs(t, users.Create(ctx, &domain.User{Username: "alice"}), ErrUserExists)

	ticket := seedTicket(t, store.Tickets(), "Printer broken", "alice", domain.TicketStatusNew, domain.TicketPriorityLow, base)
	require.NoError(t, store.Tickets().UpdateStatus(ctx, StatusUpdate{
		TicketID: ticket.ID, Version: 1, Status: domain.TicketStatusInProgress, UpdatedBy: "bob",
	}))

	assert.ErrorIs(t, users.Delete(ctx, "alice"), ErrUserReferenced)
	assert.ErrorIs(t, users.Delete(ctx, "bob"), ErrUserReferenced)
	assert.NoError(t, users.Delete(ctx, "carol"))
	assert.ErrorIs(t, users.Delete(ctx, "carol"), pgx.ErrNoRows)

	list, err := users.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, u := range list {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestInClause(t *testing.T) {
	args := []any{"alice"}
	clause := inClause("status", []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusResolved}, &args)
	assert.Equal(t, "status IN ($2,$3)", clause)
	assert.Equal(t, []any{"alice", "New", "Resolved"}, args)
}

func TestMemoryHistory_FollowsTicket(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	history := store.History()

	assert.ErrorIs(t, history.Create(ctx, &domain.TicketHistory{TicketID: 7}), pgx.ErrNoRows)

	ticket := seedTicket(t, store.Tickets(), "Printer broken", "alice", domain.TicketStatusNew, domain.TicketPriorityLow, base)
	other := seedTicket(t, store.Tickets(), "VPN slow", "alice", domain.TicketStatusNew, domain.TicketPriorityLow, base)
	for _, e := range []domain.TicketHistory{
		{TicketID: ticket.ID, ChangedBy: "alice", ChangeType: domain.ChangeTypeCreated},
		{TicketID: other.ID, ChangedBy: "alice", ChangeType: domain.ChangeTypeCreated},
		{TicketID: ticket.ID, ChangedBy: "bob", ChangeType: domain.ChangeTypeStatus},
	} {
		entry := e
		require.NoError(t, history.Create(ctx, &entry))
		assert.NotZero(t, entry.ID)
	}

	entries, err := history.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ChangeTypeStatus, entries[1].ChangeType)

	require.NoError(t, store.Tickets().Delete(ctx, ticket.ID, 1))
	entries, err = history.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = history.ListByTicket(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

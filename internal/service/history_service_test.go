package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketdesk/internal/domain"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

func TestHistory_RecordsTicketLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ticket := env.createTicket(t, alice, "Printer broken")

	env.clock.Advance(time.Minute)
	_, err := env.tickets.UpdateStatus(ctx, bob, ticket.ID, StatusUpdateInput{
		Status:        domain.TicketStatusInProgress,
		InternalNotes: strPtr("toner low"),
	})
	require.NoError(t, err)
	_, err = env.tickets.AssignTicket(ctx, admin, ticket.ID, AssignInput{Assignee: strPtr("bob")})
	require.NoError(t, err)
	_, err = env.tickets.UpdateStatus(ctx, bob, ticket.ID, StatusUpdateInput{Status: domain.TicketStatusResolved})
	require.NoError(t, err)
	_, err = env.tickets.UpdateFeedback(ctx, alice, ticket.ID, FeedbackInput{Feedback: "Fixed, thanks"})
	require.NoError(t, err)

	entries, err := env.history.ListHistory(ctx, alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	kinds := make([]domain.TicketChangeType, 0, len(entries))
	for _, e := range entries {
		kinds = append(kinds, e.ChangeType)
	}
	assert.Equal(t, []domain.TicketChangeType{
		domain.ChangeTypeCreated,
		domain.ChangeTypeStatus,
		domain.ChangeTypeAssignee,
		domain.ChangeTypeStatus,
		domain.ChangeTypeFeedback,
	}, kinds)

	assert.Equal(t, "alice", entries[0].ChangedBy)
	assert.Equal(t, "Printer broken", entries[0].NewValue["title"])
	assert.Equal(t, epoch, entries[0].CreatedAt)

	assert.Equal(t, "bob", entries[1].ChangedBy)
	assert.Equal(t, "New", entries[1].OldValue["status"])
	assert.Equal(t, "InProgress", entries[1].NewValue["status"])
	assert.NotContains(t, entries[1].NewValue, "internal_notes")
	assert.Equal(t, epoch.Add(time.Minute), entries[1].CreatedAt)

	assert.Nil(t, entries[2].OldValue["assignee"])
	assert.Equal(t, "bob", entries[2].NewValue["assignee"])
	assert.Equal(t, "Fixed, thanks", entries[4].NewValue["preview"])
}

func TestHistory_Visibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ticket := env.createTicket(t, alice, "VPN slow")

	_, err := env.history.ListHistory(ctx, dave, ticket.ID)
	assert.True(t, apperrors.IsPermissionDenied(err))

	entries, err := env.history.ListHistory(ctx, bob, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = env.history.ListHistory(ctx, admin, 404)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, env.tickets.DeleteTicket(ctx, alice, ticket.ID, nil))
	_, err = env.history.ListHistory(ctx, admin, ticket.ID)
	assert.True(t, apperrors.IsNotFound(err))

	remaining, err := env.store.History().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestHistory_SameStatusSaveIsAnnotation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ticket := env.createTicket(t, alice, "Printer broken")

	_, err := env.tickets.UpdateStatus(ctx, bob, ticket.ID, StatusUpdateInput{
		Status:        domain.TicketStatusNew,
		InternalNotes: strPtr("waiting for toner delivery"),
	})
	require.NoError(t, err)

	entries, err := env.history.ListHistory(ctx, alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ChangeTypeAnnotated, entries[1].ChangeType)
	assert.Equal(t, "bob", entries[1].ChangedBy)
	assert.Nil(t, entries[1].OldValue)
	assert.Equal(t, map[string]any{"status": "New"}, entries[1].NewValue)
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
)

type captureOutbox struct {
	queued []Notification
}

func (o *captureOutbox) Enqueue(n Notification) bool {
	o.queued = append(o.queued, n)
	return true
}

func TestRenderNotificationHTML_EscapesTicketText(t *testing.T) {
	out := renderNotificationHTML("New ticket #1: <script>alert(1)</script>",
		"x<y and y>z",
		"&lt;b&gt;encoded&lt;/b&gt;",
		"   ",
	)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "<h1>New ticket #1: &lt;script&gt;alert(1)&lt;/script&gt;</h1>")
	assert.Contains(t, out, "<p>x&lt;y and y&gt;z</p>")
	assert.Contains(t, out, "&amp;lt;b&amp;gt;encoded")
	assert.Equal(t, 2, strings.Count(out, "<p>"))
}

func TestNotificationService_KeepsSubjectVerbatim(t *testing.T) {
	ctx := context.Background()
	outbox := &captureOutbox{}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	NewNotificationService(dispatcher, outbox, nil).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: 9,
		Actor:    events.Actor{Username: "alice", Role: domain.RoleRequester},
		Payload: events.TicketCreatedPayload{
			Title:    "Use <stdin> for input",
			Priority: domain.TicketPriorityHigh,
			Category: domain.TicketCategoryBug,
		},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: 9,
		Actor:    events.Actor{Username: "bob", Role: domain.RoleSupport},
		Payload: events.TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusNew,
			NewStatus: domain.TicketStatusNew,
			CreatedBy: "alice",
		},
	}))

	require.Len(t, outbox.queued, 1)
	n := outbox.queued[0]
	assert.Equal(t, "New High ticket #9: Use <stdin> for input", n.Subject)
	assert.Contains(t, n.HTMLBody, "<p>Use &lt;stdin&gt; for input</p>")
}

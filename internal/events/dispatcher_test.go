package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcher_PublishFansOutAndSwallowsErrors(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var seen []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		seen = append(seen, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "1", Type: EventTicketCreated, TicketID: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventUserCreated}))
}

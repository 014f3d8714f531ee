package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// publisher stamps and publishes domain events.
type publisher struct {
	dispatcher events.Dispatcher
	clock      clock.Clock
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock.Now()
	}
	_ = p.dispatcher.Publish(ctx, event)
}

// mapStoreError turns repository sentinels into domain errors.
func mapStoreError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrStaleTicket):
		return apperrors.NewConflict("ticket was modified by someone else; reload and retry", details)
	case errors.Is(err, repository.ErrUserExists):
		return apperrors.NewConflict("username already taken", details)
	case errors.Is(err, repository.ErrUserReferenced):
		return apperrors.NewConflict("user is still referenced by tickets", details)
	default:
		return apperrors.MapError(err)
	}
}

func orRealClock(c clock.Clock) clock.Clock {
	if c == nil {
		return clock.Real()
	}
	return c
}

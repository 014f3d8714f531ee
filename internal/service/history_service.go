package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/authz"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// HistoryService records ticket events as audit entries and serves them back.
type HistoryService struct {
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	tickets    repository.TicketRepository
	logger     *zap.Logger
}

// HistoryDependencies bundles collaborators for the history service.
type HistoryDependencies struct {
	HistoryRepo repository.TicketHistoryRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewHistoryService constructs the service.
func NewHistoryService(deps HistoryDependencies) *HistoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		dispatcher: deps.Dispatcher,
		history:    deps.HistoryRepo,
		tickets:    deps.TicketRepo,
		logger:     logger,
	}
}

// RegisterHandlers subscribes the recorder to ticket events.
func (s *HistoryService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketCreated, s.record)
	s.dispatcher.Subscribe(events.EventTicketStatusChanged, s.record)
	s.dispatcher.Subscribe(events.EventTicketFeedbackAdded, s.record)
	s.dispatcher.Subscribe(events.EventTicketAssigned, s.record)
}

// ListHistory returns the audit trail of a ticket the actor may view, oldest first.
func (s *HistoryService) ListHistory(ctx context.Context, actor domain.Actor, ticketID int64) ([]domain.TicketHistory, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreError(err, "ticket", ticketDetails(ticketID))
	}
	if !authz.CanViewTicket(actor.Role, ticket.IsOwnedBy(actor.Username)) {
		return nil, apperrors.NewPermissionDenied("not allowed to view this ticket", ticketDetails(ticketID))
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *HistoryService) record(ctx context.Context, event events.Event) error {
	entry := domain.TicketHistory{
		TicketID:  event.TicketID,
		ChangedBy: event.Actor.Username,
		CreatedAt: event.Timestamp,
	}
	switch payload := event.Payload.(type) {
	case events.TicketCreatedPayload:
		entry.ChangeType = domain.ChangeTypeCreated
		entry.NewValue = map[string]any{
			"title":     payload.Title,
			"priority":  string(payload.Priority),
			"category":  string(payload.Category),
			"sentiment": string(payload.Sentiment),
		}
	case events.TicketStatusChangedPayload:
		if payload.OldStatus == payload.NewStatus {
			entry.ChangeType = domain.ChangeTypeAnnotated
			entry.NewValue = map[string]any{"status": string(payload.NewStatus)}
			break
		}
		entry.ChangeType = domain.ChangeTypeStatus
		entry.OldValue = map[string]any{"status": string(payload.OldStatus)}
		entry.NewValue = map[string]any{"status": string(payload.NewStatus)}
	case events.TicketFeedbackAddedPayload:
		entry.ChangeType = domain.ChangeTypeFeedback
		entry.NewValue = map[string]any{"preview": payload.Preview}
	case events.TicketAssignedPayload:
		entry.ChangeType = domain.ChangeTypeAssignee
		entry.OldValue = map[string]any{"assignee": derefOrNil(payload.PreviousAssignee)}
		entry.NewValue = map[string]any{"assignee": derefOrNil(payload.Assignee)}
	default:
		return errUnexpectedPayload(event)
	}

	if err := s.history.Create(ctx, &entry); err != nil {
		return err
	}
	s.logger.Debug("history recorded",
		zap.Int64("ticket_id", entry.TicketID),
		zap.String("change_type", string(entry.ChangeType)))
	return nil
}

func derefOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/authz"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/validation"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

const feedbackPreviewLength = 80

// TicketService coordinates ticket workflows. Every mutation goes through an
// authz check and one version-guarded write.
type TicketService struct {
	publisher
	tickets repository.TicketRepository
	users   repository.UserRepository
	clock   clock.Clock
	logger  *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// StatusUpdateInput describes a status change. SupportFeedback and
// InternalNotes stay unchanged when nil. ExpectedVersion, when set, must match
// the stored ticket.
type StatusUpdateInput struct {
	Status          domain.TicketStatus
	SupportFeedback *string
	InternalNotes   *string
	ExpectedVersion *int
}

// FeedbackInput carries the requester feedback.
type FeedbackInput struct {
	Feedback        string
	ExpectedVersion *int
}

// AssignInput names the new assignee; nil clears the assignment.
type AssignInput struct {
	Assignee        *string
	ExpectedVersion *int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clk := orRealClock(deps.Clock)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		publisher: publisher{dispatcher: deps.Dispatcher, clock: clk},
		tickets:   deps.TicketRepo,
		users:     deps.UserRepo,
		clock:     clk,
		logger:    logger,
	}
}

// CreateTicket opens a ticket on behalf of actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if !authz.CanCreateTicket(actor.Role) {
		return nil, apperrors.NewPermissionDenied("role may not create tickets", roleDetails(actor))
	}
	fields, err := validation.NormalizeTicket(validation.TicketFields{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ticket := &domain.Ticket{
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
		Category:    fields.Category,
		Status:      domain.TicketStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor.Username,
		Sentiment:   domain.DetectSentiment(fields.Title + " " + fields.Description),
		Version:     1,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapStoreError(err, "ticket", nil)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("actor", actor.Username),
		zap.String("priority", string(ticket.Priority)),
		zap.String("sentiment", string(ticket.Sentiment)))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketCreatedPayload{
			Title:     ticket.Title,
			Priority:  ticket.Priority,
			Category:  ticket.Category,
			Sentiment: ticket.Sentiment,
		},
	})
	return ticket, nil
}

// GetTicket returns a ticket the actor may see, without internal notes for requesters.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, id int64) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return redact(actor, ticket), nil
}

// ListTickets searches tickets. Requesters only ever see their own.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !actor.Role.IsValid() {
		return nil, apperrors.NewPermissionDenied("unknown role", roleDetails(actor))
	}
	if !actor.Role.IsStaff() {
		owner := actor.Username
		filter.CreatedBy = &owner
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "ticket", nil)
	}
	for i := range tickets {
		tickets[i] = *redact(actor, &tickets[i])
	}
	return tickets, nil
}

// AllowedTransitions lists the statuses actor may move the ticket to.
func (s *TicketService) AllowedTransitions(ctx context.Context, actor domain.Actor, id int64) ([]domain.TicketStatus, error) {
	ticket, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return authz.AllowedTransitions(actor.Role, ticket.Status), nil
}

// UpdateStatus moves a ticket to a new status and optionally records support
// feedback and internal notes alongside.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Actor, id int64, input StatusUpdateInput) (*domain.Ticket, error) {
	if err := validation.ValidateStatus(input.Status); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanChangeStatus(actor.Role, ticket.Status) {
		return nil, apperrors.NewPermissionDenied("not allowed to change the status of this ticket", transitionDetails(actor, ticket.Status, input.Status))
	}
	if !authz.CanTransition(actor.Role, ticket.Status, input.Status) {
		return nil, apperrors.NewPermissionDenied("status transition not allowed", transitionDetails(actor, ticket.Status, input.Status))
	}
	if err := checkVersion(ticket, input.ExpectedVersion); err != nil {
		return nil, err
	}

	err = s.tickets.UpdateStatus(ctx, repository.StatusUpdate{
		TicketID:        ticket.ID,
		Version:         ticket.Version,
		Status:          input.Status,
		UpdatedAt:       s.clock.Now(),
		UpdatedBy:       actor.Username,
		SupportFeedback: validation.CleanOptional(input.SupportFeedback),
		InternalNotes:   validation.CleanOptional(input.InternalNotes),
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket", ticketDetails(id))
	}

	s.logger.Info("ticket status changed",
		zap.Int64("ticket_id", id),
		zap.String("actor", actor.Username),
		zap.String("from", string(ticket.Status)),
		zap.String("to", string(input.Status)))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: id,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: ticket.Status,
			NewStatus: input.Status,
			CreatedBy: ticket.CreatedBy,
		},
	})
	return s.reload(ctx, actor, id)
}

// UpdateFeedback stores the creator's feedback on a resolved ticket.
func (s *TicketService) UpdateFeedback(ctx context.Context, actor domain.Actor, id int64, input FeedbackInput) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditFeedback(actor.Role, ticket.IsOwnedBy(actor.Username), ticket.Status) {
		return nil, apperrors.NewPermissionDenied("feedback is only possible for the creator of a resolved ticket", map[string]any{
			"ticket_id": id,
			"status":    string(ticket.Status),
		})
	}
	feedback := validation.CleanText(input.Feedback)
	if feedback == "" {
		return nil, apperrors.NewValidationError("feedback must not be empty", map[string]any{"field": "feedback"})
	}
	if err := checkVersion(ticket, input.ExpectedVersion); err != nil {
		return nil, err
	}

	err = s.tickets.UpdateFeedback(ctx, repository.FeedbackUpdate{
		TicketID:  ticket.ID,
		Version:   ticket.Version,
		Feedback:  feedback,
		UpdatedAt: s.clock.Now(),
		UpdatedBy: actor.Username,
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket", ticketDetails(id))
	}

	s.logger.Info("ticket feedback updated", zap.Int64("ticket_id", id), zap.String("actor", actor.Username))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketFeedbackAdded,
		TicketID: id,
		Actor:    events.ActorFrom(actor),
		Payload:  events.TicketFeedbackAddedPayload{Preview: preview(feedback, feedbackPreviewLength)},
	})
	return s.reload(ctx, actor, id)
}

// AssignTicket sets or clears the staff member responsible for a ticket.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Actor, id int64, input AssignInput) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAssign(actor.Role, ticket.Status) {
		return nil, apperrors.NewPermissionDenied("not allowed to assign this ticket", map[string]any{
			"ticket_id": id,
			"role":      string(actor.Role),
			"status":    string(ticket.Status),
		})
	}

	var assignee *string
	if input.Assignee != nil {
		if err := s.checkAssignee(ctx, *input.Assignee); err != nil {
			return nil, err
		}
		name := *input.Assignee
		assignee = &name
	}
	if err := checkVersion(ticket, input.ExpectedVersion); err != nil {
		return nil, err
	}

	err = s.tickets.UpdateAssignee(ctx, repository.AssigneeUpdate{
		TicketID:  ticket.ID,
		Version:   ticket.Version,
		Assignee:  assignee,
		UpdatedAt: s.clock.Now(),
		UpdatedBy: actor.Username,
	})
	if err != nil {
		return nil, mapStoreError(err, "ticket", ticketDetails(id))
	}

	s.logger.Info("ticket assigned",
		zap.Int64("ticket_id", id),
		zap.String("actor", actor.Username),
		zap.Stringp("assignee", assignee))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: id,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketAssignedPayload{
			PreviousAssignee: ticket.Assignee,
			Assignee:         assignee,
		},
	})
	return s.reload(ctx, actor, id)
}

// DeleteTicket removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, id int64, expectedVersion *int) error {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanDelete(actor.Role, ticket.IsOwnedBy(actor.Username)) {
		return apperrors.NewPermissionDenied("not allowed to delete this ticket", map[string]any{
			"ticket_id": id,
			"role":      string(actor.Role),
		})
	}
	if err := checkVersion(ticket, expectedVersion); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID, ticket.Version); err != nil {
		return mapStoreError(err, "ticket", ticketDetails(id))
	}

	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id), zap.String("actor", actor.Username))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Actor:    events.ActorFrom(actor),
		Payload:  events.TicketDeletedPayload{Title: ticket.Title, CreatedBy: ticket.CreatedBy},
	})
	return nil
}

func (s *TicketService) checkAssignee(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationError("assignee does not exist", map[string]any{
			"field": "assignee",
			"value": username,
		})
	}
	if err != nil {
		return apperrors.MapError(err)
	}
	if !authz.CanBeAssigned(user.Role) {
		return apperrors.NewValidationError("assignee must be a support or administrator user", map[string]any{
			"field": "assignee",
			"value": username,
		})
	}
	return nil
}

func (s *TicketService) load(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "ticket", ticketDetails(id))
	}
	return ticket, nil
}

func (s *TicketService) loadVisible(ctx context.Context, actor domain.Actor, id int64) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTicket(actor.Role, ticket.IsOwnedBy(actor.Username)) {
		return nil, apperrors.NewPermissionDenied("not allowed to view this ticket", ticketDetails(id))
	}
	return ticket, nil
}

func (s *TicketService) reload(ctx context.Context, actor domain.Actor, id int64) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return redact(actor, ticket), nil
}

func checkVersion(ticket *domain.Ticket, expected *int) error {
	if expected == nil || *expected == ticket.Version {
		return nil
	}
	return apperrors.NewConflict("ticket was modified by someone else; reload and retry", map[string]any{
		"ticket_id":        ticket.ID,
		"expected_version": *expected,
		"current_version":  ticket.Version,
	})
}

func redact(actor domain.Actor, ticket *domain.Ticket) *domain.Ticket {
	if !authz.CanViewInternalNotes(actor.Role) {
		ticket.InternalNotes = nil
	}
	return ticket
}

func ticketDetails(id int64) map[string]any {
	return map[string]any{"ticket_id": id}
}

func roleDetails(actor domain.Actor) map[string]any {
	return map[string]any{"role": string(actor.Role)}
}

func transitionDetails(actor domain.Actor, from, to domain.TicketStatus) map[string]any {
	return map[string]any{
		"role": string(actor.Role),
		"from": string(from),
		"to":   string(to),
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

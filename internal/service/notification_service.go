package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/events"
)

var notificationPolicy = bluemonday.UGCPolicy()

// Notification is a message derived from a domain event for one recipient.
type Notification struct {
	Event     events.Event `json:"event"`
	Recipient string       `json:"recipient,omitempty"`
	Subject   string       `json:"subject"`
	HTMLBody  string       `json:"html_body"`
}

// Outbox accepts notifications for asynchronous delivery.
type Outbox interface {
	Enqueue(n Notification) bool
}

// NotificationService turns domain events into notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	outbox     Outbox
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, outbox Outbox, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		outbox:     outbox,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketFeedbackAdded, n.handleTicketFeedbackAdded)
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	n.send(Notification{
		Event:   event,
		Subject: fmt.Sprintf("New %s ticket #%d: %s", payload.Priority, event.TicketID, payload.Title),
	},
		payload.Title,
		fmt.Sprintf("Category %s, opened by %s.", payload.Category, event.Actor.Username),
	)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	if payload.OldStatus == payload.NewStatus || payload.CreatedBy == event.Actor.Username {
		return nil
	}
	n.send(Notification{
		Event:     event,
		Recipient: payload.CreatedBy,
		Subject:   fmt.Sprintf("Ticket #%d is now %s", event.TicketID, payload.NewStatus),
	}, fmt.Sprintf("%s moved it from %s to %s.", event.Actor.Username, payload.OldStatus, payload.NewStatus))
	return nil
}

func (n *NotificationService) handleTicketAssigned(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	if payload.Assignee == nil || *payload.Assignee == event.Actor.Username {
		return nil
	}
	n.send(Notification{
		Event:     event,
		Recipient: *payload.Assignee,
		Subject:   fmt.Sprintf("Ticket #%d was assigned to you", event.TicketID),
	}, fmt.Sprintf("Assigned by %s.", event.Actor.Username))
	return nil
}

func (n *NotificationService) handleTicketFeedbackAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketFeedbackAddedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	n.send(Notification{
		Event:   event,
		Subject: fmt.Sprintf("Feedback received on ticket #%d", event.TicketID),
	}, payload.Preview)
	return nil
}

func (n *NotificationService) send(notification Notification, paragraphs ...string) {
	if n.outbox == nil {
		return
	}
	notification.HTMLBody = renderNotificationHTML(notification.Subject, paragraphs...)
	if !n.outbox.Enqueue(notification) {
		n.logger.Warn("notification dropped",
			zap.String("event_id", notification.Event.ID),
			zap.String("event_type", string(notification.Event.Type)),
			zap.Int64("ticket_id", notification.Event.TicketID))
	}
}

func errUnexpectedPayload(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}

// renderNotificationHTML escapes ticket text into a small HTML document and
// passes the result through the UGC policy before it leaves the process.
func renderNotificationHTML(subject string, paragraphs ...string) string {
	var b strings.Builder
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(subject))
	b.WriteString("</h1>")
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	return notificationPolicy.Sanitize(b.String())
}

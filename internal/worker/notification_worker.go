package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/config"
	"github.com/spec-kit/ticketdesk/internal/service"
)

const webhookTimeout = 5 * time.Second

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n service.Notification) error
}

// NotificationWorker drains queued notifications on a background goroutine so
// ticket writes never wait on delivery.
type NotificationWorker struct {
	queue  chan service.Notification
	sender Sender
	logger *zap.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(sender Sender, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		queue:  make(chan service.Notification, queueSize),
		sender: sender,
		logger: logger,
	}
}

// Enqueue hands a notification to the worker. It never blocks and reports
// false when the queue is full or closed.
func (w *NotificationWorker) Enqueue(n service.Notification) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- n:
		return true
	default:
		return false
	}
}

// Start runs the delivery loop until Stop is called.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for n := range w.queue {
			if err := w.sender.Send(ctx, n); err != nil {
				w.logger.Warn("notification delivery failed",
					zap.String("event_id", n.Event.ID),
					zap.String("recipient", n.Recipient),
					zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for pending notifications to drain.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// StartNotificationWorker wires the notification service to a running worker.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, w *NotificationWorker) {
	if notificationService == nil || w == nil {
		return
	}
	w.Start(ctx)
	notificationService.RegisterHandlers()
}

// ConfiguredSender logs an email stub and posts to the webhook when one is configured.
type ConfiguredSender struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewConfiguredSender builds the default sender.
func NewConfiguredSender(cfg config.NotificationConfig, logger *zap.Logger) *ConfiguredSender {
	return &ConfiguredSender{cfg: cfg, logger: logger}
}

// Send implements Sender.
func (s *ConfiguredSender) Send(_ context.Context, n service.Notification) error {
	if n.Recipient != "" && strings.TrimSpace(s.cfg.EmailFrom) != "" {
		s.logger.Info("email notification",
			zap.String("from", s.cfg.EmailFrom),
			zap.String("to", n.Recipient),
			zap.String("subject", n.Subject))
	}
	if strings.TrimSpace(s.cfg.WebhookURL) == "" {
		return nil
	}

	code, _, errs := fiber.Post(s.cfg.WebhookURL).
		Timeout(webhookTimeout).
		JSON(n).
		Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post webhook: %w", errs[0])
	}
	if code >= fiber.StatusBadRequest {
		return fmt.Errorf("webhook responded with status %d", code)
	}
	s.logger.Debug("webhook notification sent",
		zap.String("event_type", string(n.Event.Type)),
		zap.Int64("ticket_id", n.Event.TicketID))
	return nil
}

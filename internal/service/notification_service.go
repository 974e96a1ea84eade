package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-relay/internal/config"
	"github.com/spec-kit/ticket-relay/internal/events"
)

// NotificationService emits log lines and an optional webhook for forward
// outcomes.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	client     *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// RegisterHandlers subscribes to relay events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketReceived, n.handleTicketReceived)
	n.dispatcher.Subscribe(events.EventTicketForwarded, n.handleTicketForwarded)
	n.dispatcher.Subscribe(events.EventTicketForwardFailed, n.handleTicketForwardFailed)
	n.dispatcher.Subscribe(events.EventTicketRejected, n.handleTicketRejected)
}

func (n *NotificationService) handleTicketReceived(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketReceived", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketForwarded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketForwarded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketForwardFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("TicketForwardFailed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketRejected(ctx context.Context, event events.Event) error {
	n.logger.Warn("TicketRejected", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

// sendWebhook is best-effort; a webhook failure never affects the forward.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Debug("webhook notification failed", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}

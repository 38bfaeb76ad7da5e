package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/config"
	"github.com/spec-kit/internship-portal/internal/events"
)

// Publisher fans out serialized events to external subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// NotificationService relays application events to logs and the notification channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil, in which case events are only logged.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to application events and returns the event types it now handles.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	handlers := []struct {
		eventType events.EventType
		handle    events.EventHandler
	}{
		{events.EventApplicationSubmitted, n.handleApplicationSubmitted},
		{events.EventApplicationStatusChanged, n.handleApplicationStatusChanged},
		{events.EventApplicationDeleted, n.handleApplicationDeleted},
	}
	subscribed := make([]events.EventType, 0, len(handlers))
	for _, h := range handlers {
		n.dispatcher.Subscribe(h.eventType, h.handle)
		subscribed = append(subscribed, h.eventType)
	}
	return subscribed
}

// Channel is the Redis channel events are published to, or "" when they are only logged.
func (n *NotificationService) Channel() string {
	if n.publisher == nil {
		return ""
	}
	return strings.TrimSpace(n.cfg.Channel)
}

func (n *NotificationService) handleApplicationSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationSubmitted", zap.String("application_id", event.ApplicationID), zap.Any("payload", event.Payload))
	return n.publish(ctx, event)
}

func (n *NotificationService) handleApplicationStatusChanged(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("application_id", event.ApplicationID),
		zap.String("student_id", event.StudentID),
	}
	if payload, ok := event.Payload.(events.ApplicationStatusChangedPayload); ok {
		fields = append(fields, zap.String("message", payload.Notification.Message))
	}
	n.logger.Info("ApplicationStatusChanged", fields...)
	return n.publish(ctx, event)
}

func (n *NotificationService) handleApplicationDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationDeleted", zap.String("application_id", event.ApplicationID), zap.Any("payload", event.Payload))
	return n.publish(ctx, event)
}

func (n *NotificationService) publish(ctx context.Context, event events.Event) error {
	channel := n.Channel()
	if channel == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	receivers, err := n.publisher.Publish(ctx, channel, body)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	n.logger.Debug("event published",
		zap.String("channel", channel),
		zap.String("event_type", string(event.Type)),
		zap.Int64("receivers", receivers))
	return nil
}

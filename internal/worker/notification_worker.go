package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/events"
	"github.com/spec-kit/internship-portal/internal/service"
)

// StartNotificationRelay attaches the notification service to the application
// event stream and returns the event types it relays.
func StartNotificationRelay(notifications *service.NotificationService, logger *zap.Logger) []events.EventType {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications == nil {
		logger.Warn("notification relay disabled")
		return nil
	}

	relayed := notifications.RegisterHandlers()
	if len(relayed) == 0 {
		logger.Warn("notification relay has no event source")
		return nil
	}

	names := make([]string, len(relayed))
	for i, t := range relayed {
		names[i] = string(t)
	}
	fields := []zap.Field{zap.Strings("events", names)}
	if channel := notifications.Channel(); channel != "" {
		logger.Info("notification relay started", append(fields, zap.String("channel", channel))...)
	} else {
		logger.Info("notification relay started, events are only logged", fields...)
	}
	return relayed
}

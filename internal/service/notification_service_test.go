package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/internship-portal/internal/config"
	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/events"
)

type recordingPublisher struct {
	channel  string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.channel = channel
	p.payloads = append(p.payloads, payload)
	return 1, nil
}

func TestNotificationServicePublishesStatusChanges(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{}
	svc := NewNotificationService(dispatcher, publisher, nil, config.NotificationConfig{Channel: " portal:test "})
	assert.Equal(t, []events.EventType{
		events.EventApplicationSubmitted,
		events.EventApplicationStatusChanged,
		events.EventApplicationDeleted,
	}, svc.RegisterHandlers())
	assert.Equal(t, "portal:test", svc.Channel())

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:            "evt-1",
		Type:          events.EventApplicationStatusChanged,
		ApplicationID: "app-1",
		StudentID:     "stu-1",
		Timestamp:     time.Date(2024, 3, 5, 5, 0, 0, 0, time.UTC),
		Payload: events.ApplicationStatusChangedPayload{
			Position:  "Backend Intern",
			OldStatus: domain.ApplicationStatusPending,
			NewStatus: domain.ApplicationStatusRejected,
			Notification: events.NotificationPayload{
				Type:    domain.ApplicationStatusRejected,
				Message: "Your application for Backend Intern has been rejected.",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "portal:test", publisher.channel)
	require.Len(t, publisher.payloads, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &decoded))
	assert.Equal(t, "application_status_changed", decoded["type"])
	assert.Equal(t, "app-1", decoded["applicationId"])
	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "rejected", payload["newStatus"])
}

func TestNotificationServiceSurfacesPublishErrors(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, &recordingPublisher{err: errors.New("redis down")}, nil, config.NotificationConfig{Channel: "portal:test"})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventApplicationDeleted, ApplicationID: "app-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestNotificationServiceWithoutPublisher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, nil, nil, config.NotificationConfig{Channel: "portal:test"})
	svc.RegisterHandlers()
	assert.Empty(t, svc.Channel())

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventApplicationSubmitted, ApplicationID: "app-1"})
	assert.NoError(t, err)
}

func TestNotificationServiceWithoutDispatcher(t *testing.T) {
	svc := NewNotificationService(nil, &recordingPublisher{}, nil, config.NotificationConfig{Channel: "portal:test"})
	assert.Empty(t, svc.RegisterHandlers())
}

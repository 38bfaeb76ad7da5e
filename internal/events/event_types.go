package events

import (
	"time"

	"github.com/spec-kit/internship-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventApplicationDeleted       EventType = "application_deleted"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ApplicationID string      `json:"applicationId"`
	StudentID     string      `json:"studentId"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	Position string `json:"position"`
	Resume   string `json:"resume"`
}

// ApplicationStatusChangedPayload payload.
type ApplicationStatusChangedPayload struct {
	Position     string                   `json:"position"`
	OldStatus    domain.ApplicationStatus `json:"oldStatus"`
	NewStatus    domain.ApplicationStatus `json:"newStatus"`
	Notification NotificationPayload      `json:"notification"`
}

// NotificationPayload mirrors domain.Notification on the wire.
type NotificationPayload struct {
	Type    domain.ApplicationStatus `json:"type"`
	Message string                   `json:"message"`
	Date    time.Time                `json:"date"`
}

// ApplicationDeletedPayload payload.
type ApplicationDeletedPayload struct {
	Position string                   `json:"position"`
	Status   domain.ApplicationStatus `json:"status"`
}

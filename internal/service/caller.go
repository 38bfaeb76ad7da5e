package service

import (
	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/events"
)

// Caller identifies the authenticated account a service call acts for.
type Caller struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

func (c Caller) actor() events.Actor {
	return events.Actor{UserID: c.UserID, Role: c.Role}
}

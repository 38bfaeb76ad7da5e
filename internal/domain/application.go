package domain

import "time"

// ApplicationStatus enumerates review states for an internship application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusOnHold   ApplicationStatus = "on hold"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every valid status in display order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusApproved,
	ApplicationStatusOnHold,
	ApplicationStatusRejected,
}

// Valid reports whether s is one of ApplicationStatuses.
func (s ApplicationStatus) Valid() bool {
	for _, candidate := range ApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// StatusStrings returns ApplicationStatuses as plain strings.
func StatusStrings() []string {
	out := make([]string, len(ApplicationStatuses))
	for i, s := range ApplicationStatuses {
		out[i] = string(s)
	}
	return out
}

// StudentSummary is the subset of the owning student shown alongside an application.
type StudentSummary struct {
	ID     string
	Name   string
	Email  string
	Branch string
}

// Application is one internship application owned by a single student.
type Application struct {
	ID                string
	StudentID         string
	Position          string
	CoverLetter       string
	ExpectedStartDate string
	Resume            string
	Status            ApplicationStatus
	SubmittedAt       time.Time
	UpdatedAt         time.Time

	// Student is populated by read queries that join the owner.
	Student *StudentSummary
}

// OwnedBy reports whether userID owns the application.
func (a *Application) OwnedBy(userID string) bool {
	return a.StudentID == userID
}

// Notification describes a status change for display by the calling client. It is never stored.
type Notification struct {
	Type    ApplicationStatus
	Message string
	Date    time.Time
}

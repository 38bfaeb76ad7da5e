package dto

import (
	"time"

	"github.com/spec-kit/internship-portal/internal/domain"
)

const dateAppliedLayout = "1/2/2006"

// UpdateStatusRequest payload. The status, including a missing one, is checked
// by the service so the error can enumerate the accepted values.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ApplicationResponse is the view of an application used by every read endpoint.
type ApplicationResponse struct {
	ID                string                   `json:"id"`
	StudentID         string                   `json:"studentId"`
	StudentName       string                   `json:"studentName"`
	Email             string                   `json:"email"`
	Branch            string                   `json:"branch"`
	Position          string                   `json:"position"`
	Status            domain.ApplicationStatus `json:"status"`
	DateApplied       string                   `json:"dateApplied"`
	Resume            string                   `json:"resume"`
	CoverLetter       string                   `json:"coverLetter"`
	ExpectedStartDate string                   `json:"expectedStartDate"`
	SubmittedAt       time.Time                `json:"submittedAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// StatusApplicationResponse is the trimmed application returned after a status change.
type StatusApplicationResponse struct {
	ID          string                   `json:"id"`
	Status      domain.ApplicationStatus `json:"status"`
	StudentName string                   `json:"studentName"`
	Email       string                   `json:"email"`
	Branch      string                   `json:"branch"`
	Position    string                   `json:"position"`
}

// NotificationResponse describes a status change for the client to display.
type NotificationResponse struct {
	Type    domain.ApplicationStatus `json:"type"`
	Message string                   `json:"message"`
	Date    string                   `json:"date"`
}

// UpdateStatusResponse is returned by the status endpoint.
type UpdateStatusResponse struct {
	Message      string                    `json:"message"`
	Status       domain.ApplicationStatus  `json:"status"`
	Application  StatusApplicationResponse `json:"application"`
	Notification NotificationResponse      `json:"notification"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewApplicationResponse builds the application view, filling in placeholders
// when the owning student cannot be resolved.
func NewApplicationResponse(app *domain.Application) ApplicationResponse {
	name, email, branch := studentFields(app)
	return ApplicationResponse{
		ID:                app.ID,
		StudentID:         app.StudentID,
		StudentName:       name,
		Email:             email,
		Branch:            branch,
		Position:          app.Position,
		Status:            app.Status,
		DateApplied:       FormatDateApplied(app.SubmittedAt),
		Resume:            app.Resume,
		CoverLetter:       app.CoverLetter,
		ExpectedStartDate: app.ExpectedStartDate,
		SubmittedAt:       app.SubmittedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}

// NewApplicationList maps a slice of applications, never returning nil.
func NewApplicationList(apps []domain.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, NewApplicationResponse(&apps[i]))
	}
	return out
}

// NewUpdateStatusResponse builds the status endpoint body.
func NewUpdateStatusResponse(app *domain.Application, notification domain.Notification) UpdateStatusResponse {
	name, email, branch := studentFields(app)
	return UpdateStatusResponse{
		Message: "Status updated successfully",
		Status:  app.Status,
		Application: StatusApplicationResponse{
			ID:          app.ID,
			Status:      app.Status,
			StudentName: name,
			Email:       email,
			Branch:      branch,
			Position:    app.Position,
		},
		Notification: NotificationResponse{
			Type:    notification.Type,
			Message: notification.Message,
			Date:    notification.Date.UTC().Format(time.RFC3339),
		},
	}
}

// FormatDateApplied renders a submission time as M/D/YYYY in UTC.
func FormatDateApplied(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateAppliedLayout)
}

func studentFields(app *domain.Application) (name, email, branch string) {
	name, email, branch = "Unknown", "No email", "Not specified"
	if app.Student == nil {
		return
	}
	if app.Student.Name != "" {
		name = app.Student.Name
	}
	if app.Student.Email != "" {
		email = app.Student.Email
	}
	if app.Student.Branch != "" {
		branch = app.Student.Branch
	}
	return
}

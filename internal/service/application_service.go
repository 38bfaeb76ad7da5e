package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/events"
	"github.com/spec-kit/internship-portal/internal/repository"
	"github.com/spec-kit/internship-portal/internal/storage"
	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

// ResumeStorage stores uploaded resume files.
type ResumeStorage interface {
	Save(header *multipart.FileHeader) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	MaxBytes() int64
}

// ApplicationService coordinates application workflows.
type ApplicationService struct {
	applications repository.ApplicationRepository
	resumes      ResumeStorage
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

// ApplicationDependencies bundles collaborators for the application service.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	Resumes         ResumeStorage
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// ApplicationCreateInput describes a new submission.
type ApplicationCreateInput struct {
	Position          string
	CoverLetter       string
	ExpectedStartDate string
	Resume            *multipart.FileHeader
}

// ApplicationListFilter describes admin listing filters. Statuses are raw query values.
type ApplicationListFilter struct {
	Statuses []string
	Position string
}

// StatusUpdateResult is the outcome of an admin status change.
type StatusUpdateResult struct {
	Application  *domain.Application
	Notification domain.Notification
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		resumes:      deps.Resumes,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores the resume and records a pending application for the calling student.
func (s *ApplicationService) Create(ctx context.Context, caller Caller, input ApplicationCreateInput) (*domain.Application, error) {
	position := strings.TrimSpace(input.Position)
	if position == "" || input.Resume == nil {
		return nil, apperrors.NewValidationError("position and resume are required", nil)
	}

	filename, err := s.resumes.Save(input.Resume)
	if err != nil {
		return nil, s.resumeError(err)
	}

	app := &domain.Application{
		StudentID:         caller.UserID,
		Position:          position,
		CoverLetter:       strings.TrimSpace(input.CoverLetter),
		ExpectedStartDate: strings.TrimSpace(input.ExpectedStartDate),
		Resume:            filename,
		Status:            domain.ApplicationStatusPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if rmErr := s.resumes.Delete(filename); rmErr != nil {
			s.logger.Warn("failed to remove orphaned resume", zap.String("resume", filename), zap.Error(rmErr))
		}
		return nil, err
	}
	if populated, err := s.applications.GetByID(ctx, app.ID); err == nil {
		app = populated
	}

	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("student_id", app.StudentID),
		zap.String("position", app.Position))
	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationSubmitted,
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		Actor:         caller.actor(),
		Payload:       events.ApplicationSubmittedPayload{Position: app.Position, Resume: app.Resume},
	})
	return app, nil
}

// ListAll returns every application matching the filter, newest first.
func (s *ApplicationService) ListAll(ctx context.Context, filter ApplicationListFilter) ([]domain.Application, error) {
	statuses, err := parseStatuses(filter.Statuses)
	if err != nil {
		return nil, err
	}
	return s.applications.List(ctx, repository.ApplicationFilter{
		Statuses: statuses,
		Position: strings.TrimSpace(filter.Position),
	})
}

// ListMine returns the calling student's applications, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, caller Caller) ([]domain.Application, error) {
	studentID := caller.UserID
	return s.applications.List(ctx, repository.ApplicationFilter{StudentID: &studentID})
}

// Get returns one application visible to the caller.
func (s *ApplicationService) Get(ctx context.Context, caller Caller, id string) (*domain.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !app.OwnedBy(caller.UserID) {
		return nil, apperrors.NewForbidden("not authorized to view this application")
	}
	return app, nil
}

// UpdateStatus moves an application to a new review status and builds the notification for it.
func (s *ApplicationService) UpdateStatus(ctx context.Context, caller Caller, id, rawStatus string) (*StatusUpdateResult, error) {
	status := domain.ApplicationStatus(rawStatus)
	if !status.Valid() {
		return nil, apperrors.NewInvalidChoice("status", rawStatus, domain.StatusStrings())
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applications.UpdateStatus(ctx, current.ID, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", nil)
		}
		return nil, err
	}
	updated, err := s.load(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	notification := domain.Notification{
		Type:    status,
		Message: fmt.Sprintf("Your application for %s has been %s.", updated.Position, status),
		Date:    s.now().UTC(),
	}

	s.logger.Info("application status updated",
		zap.String("application_id", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
		zap.String("by", caller.UserID))
	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationStatusChanged,
		ApplicationID: updated.ID,
		StudentID:     updated.StudentID,
		Actor:         caller.actor(),
		Payload: events.ApplicationStatusChangedPayload{
			Position:  updated.Position,
			OldStatus: current.Status,
			NewStatus: status,
			Notification: events.NotificationPayload{
				Type:    notification.Type,
				Message: notification.Message,
				Date:    notification.Date,
			},
		},
	})
	return &StatusUpdateResult{Application: updated, Notification: notification}, nil
}

// Delete removes the caller's own application along with its resume file.
func (s *ApplicationService) Delete(ctx context.Context, caller Caller, id string) error {
	app, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !app.OwnedBy(caller.UserID) {
		return apperrors.NewForbidden("not authorized to delete this application")
	}
	if err := s.applications.Delete(ctx, app.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("application", nil)
		}
		return err
	}
	if err := s.resumes.Delete(app.Resume); err != nil {
		s.logger.Warn("failed to remove resume file", zap.String("resume", app.Resume), zap.Error(err))
	}

	s.logger.Info("application deleted", zap.String("application_id", app.ID), zap.String("student_id", app.StudentID))
	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationDeleted,
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		Actor:         caller.actor(),
		Payload:       events.ApplicationDeletedPayload{Position: app.Position, Status: app.Status},
	})
	return nil
}

// OpenResume returns the stored resume behind filename if the caller may read it.
// The caller closes the returned file.
func (s *ApplicationService) OpenResume(ctx context.Context, caller Caller, filename string) (*os.File, error) {
	if !storage.ValidName(filename) {
		return nil, apperrors.NewNotFound("resume", nil)
	}
	app, err := s.applications.GetByResume(ctx, filename)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("resume", nil)
		}
		return nil, err
	}
	if !caller.IsAdmin() && !app.OwnedBy(caller.UserID) {
		return nil, apperrors.NewForbidden("not authorized to view this resume")
	}
	f, err := s.resumes.Open(filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			return nil, apperrors.NewNotFound("resume", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return f, nil
}

func (s *ApplicationService) load(ctx context.Context, id string) (*domain.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("application", nil)
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", nil)
		}
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) resumeError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotPDF):
		return apperrors.NewValidationError("only PDF files are allowed", map[string]any{"resume": err.Error()})
	case errors.Is(err, storage.ErrTooLarge):
		return apperrors.NewValidationError(
			fmt.Sprintf("resume must be at most %d MB", s.resumes.MaxBytes()/(1024*1024)),
			map[string]any{"resume": err.Error()},
		)
	case errors.Is(err, storage.ErrNotExist):
		return apperrors.NewValidationError("position and resume are required", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}

func parseStatuses(raw []string) ([]domain.ApplicationStatus, error) {
	var statuses []domain.ApplicationStatus
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		status := domain.ApplicationStatus(value)
		if !status.Valid() {
			return nil, apperrors.NewInvalidChoice("status", value, domain.StatusStrings())
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *ApplicationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

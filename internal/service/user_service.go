package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/repository"
	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

// fieldRules checks single profile values; the update is a partial merge, so
// there is no struct to tag.
var fieldRules = validator.New()

const (
	emailRule = "required,email"
	phoneRule = "omitempty,len=10,number"
)

// UserService manages profiles and roles of portal accounts.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// UserDependencies bundles what the user service needs.
type UserDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// ProfileUpdate carries the profile fields a caller wants to change.
// Nil fields are left untouched; an empty string clears optional fields.
type ProfileUpdate struct {
	Name       *string
	Email      *string
	Phone      *string
	Branch     *string
	CGPA       *string
	Year       *string
	University *string
	Location   *string
	Department *string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: deps.UserRepo, logger: logger}
}

// GetProfile returns the caller's own record.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile merges the update into the caller's record and recomputes profile completion.
func (s *UserService) UpdateProfile(ctx context.Context, caller Caller, input ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	problems := map[string]any{}
	var messages []string
	fail := func(field, msg string) {
		problems[field] = msg
		messages = append(messages, msg)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
			fail("name", "name must be between 2 and 100 characters")
		} else {
			user.Name = name
		}
	}
	emailChanged := false
	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if fieldRules.Var(email, emailRule) != nil {
			fail("email", "please enter a valid email")
		} else if email != user.Email {
			user.Email = email
			emailChanged = true
		}
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if fieldRules.Var(phone, phoneRule) != nil {
			fail("phone", "phone number must be 10 digits")
		} else {
			user.Phone = phone
		}
	}
	if input.CGPA != nil {
		cgpa := strings.TrimSpace(*input.CGPA)
		if cgpa != "" && !validCGPA(cgpa) {
			fail("cgpa", "CGPA must be between 0 and 10")
		} else {
			user.CGPA = cgpa
		}
	}
	if input.Year != nil {
		year := strings.TrimSpace(*input.Year)
		if year != "" && !domain.IsValidYear(year) {
			fail("year", fmt.Sprintf("year must be one of: %s", strings.Join(domain.ValidYears, ", ")))
		} else {
			user.Year = year
		}
	}
	setBounded(input.Branch, &user.Branch, "branch", 100, fail)
	setBounded(input.University, &user.University, "university", 200, fail)
	setBounded(input.Location, &user.Location, "location", 100, fail)
	if input.Department != nil && caller.IsAdmin() {
		setBounded(input.Department, &user.Department, "department", 100, fail)
	}

	if len(messages) > 0 {
		return nil, apperrors.NewValidationError(strings.Join(messages, ", "), problems)
	}

	if emailChanged {
		existing, err := s.users.GetByEmail(ctx, user.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, apperrors.NewValidationError("email already in use", map[string]any{"email": "email already in use"})
		case err != nil && !errors.Is(err, pgx.ErrNoRows):
			return nil, err
		}
	}

	user.RecomputeProfileCompleted()
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewValidationError("email already in use", map[string]any{"email": "email already in use"})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	s.logger.Info("profile updated",
		zap.String("user_id", user.ID),
		zap.Bool("profile_completed", user.ProfileCompleted))
	return user, nil
}

// SetRole changes the role of another account.
func (s *UserService) SetRole(ctx context.Context, caller Caller, userID string, role domain.Role) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewForbidden("admin access required")
	}
	if !role.Valid() {
		return nil, apperrors.NewInvalidChoice("role", string(role), []string{string(domain.RoleStudent), string(domain.RoleAdmin)})
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperrors.NewNotFound("user", nil)
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	s.logger.Info("role changed",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("by", caller.UserID))
	return s.GetProfile(ctx, userID)
}

func setBounded(value *string, target *string, field string, max int, fail func(field, msg string)) {
	if value == nil {
		return
	}
	trimmed := strings.TrimSpace(*value)
	if utf8.RuneCountInString(trimmed) > max {
		fail(field, fmt.Sprintf("%s must be at most %d characters", field, max))
		return
	}
	*target = trimmed
}

func validCGPA(raw string) bool {
	v, err := strconv.ParseFloat(raw, 64)
	return err == nil && v >= 0 && v <= 10
}

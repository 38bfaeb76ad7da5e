// Package testutils provides in-memory repositories and fixtures for tests.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/repository"
)

// MemoryStore holds users and applications in memory, mimicking the Postgres repositories.
type MemoryStore struct {
	mu    sync.Mutex
	clock time.Time
	users map[string]domain.User
	apps  map[string]domain.Application

	Users        repository.UserRepository
	Applications repository.ApplicationRepository
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users: make(map[string]domain.User),
		apps:  make(map[string]domain.Application),
	}
	s.Users = &memoryUsers{s}
	s.Applications = &memoryApplications{s}
	return s
}

// tick advances the store clock so insertion order is reflected in timestamps.
func (s *MemoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// ApplicationCount returns the number of stored applications.
func (s *MemoryStore) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.apps)
}

type memoryUsers struct{ s *MemoryStore }

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, "") {
		return repository.ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	now := r.s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) UpdateProfile(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicateEmail
	}
	user.UpdatedAt = r.s.tick()
	user.PasswordHash = stored.PasswordHash
	user.Role = stored.Role
	r.s.users[user.ID] = *user
	return nil
}

func (r *memoryUsers) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Role = role
	stored.UpdatedAt = r.s.tick()
	r.s.users[id] = stored
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &stored, nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUsers) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type memoryApplications struct{ s *MemoryStore }

func (r *memoryApplications) Create(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app.ID = uuid.NewString()
	now := r.s.tick()
	app.SubmittedAt, app.UpdatedAt = now, now
	stored := *app
	stored.Student = nil
	r.s.apps[app.ID] = stored
	return nil
}

func (r *memoryApplications) GetByID(_ context.Context, id string) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.apps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.populate(stored), nil
}

func (r *memoryApplications) GetByResume(_ context.Context, filename string) (*domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, stored := range r.s.apps {
		if stored.Resume == filename {
			return r.populate(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryApplications) List(_ context.Context, filter repository.ApplicationFilter) ([]domain.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Application, 0, len(r.s.apps))
	for _, stored := range r.s.apps {
		if filter.StudentID != nil && stored.StudentID != *filter.StudentID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, stored.Status) {
			continue
		}
		if filter.Position != "" && !strings.Contains(strings.ToLower(stored.Position), strings.ToLower(filter.Position)) {
			continue
		}
		out = append(out, *r.populate(stored))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (r *memoryApplications) UpdateStatus(_ context.Context, id string, status domain.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.apps[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = status
	stored.UpdatedAt = r.s.tick()
	r.s.apps[id] = stored
	return nil
}

func (r *memoryApplications) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.apps[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.apps, id)
	return nil
}

func (r *memoryApplications) populate(stored domain.Application) *domain.Application {
	app := stored
	if owner, ok := r.s.users[stored.StudentID]; ok {
		app.Student = &domain.StudentSummary{
			ID:     owner.ID,
			Name:   owner.Name,
			Email:  owner.Email,
			Branch: owner.Branch,
		}
	}
	return &app
}

func containsStatus(list []domain.ApplicationStatus, status domain.ApplicationStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

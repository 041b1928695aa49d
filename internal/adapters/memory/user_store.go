// Package memory provides in-process adapters for single-instance deployments and tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	apperrors "github.com/Digitalmustiii/novaauthentication/internal/errors"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
	"github.com/google/uuid"
)

var _ ports.UserStore = (*UserStore)(nil)

// UserStore keeps users in memory. Data does not survive a restart.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]domainauth.User
	byEmail map[string]string
	now     func() time.Time
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]domainauth.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// CreateUser stores a new user. Email uniqueness is checked under the write lock,
// so concurrent sign-ups for one email yield exactly one success.
func (s *UserStore) CreateUser(ctx context.Context, in domainauth.NewUser) (*domainauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.PasswordHash == "" {
		return nil, apperrors.Validation("name, email and password hash are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, apperrors.ConflictField("email", "Email already in use")
	}

	now := s.now().UTC()
	u := domainauth.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byEmail[email] = u.ID
	return &u, nil
}

// FindUserByEmail returns the user with exactly this email.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*domainauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.TrimSpace(email)]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	u := s.byID[id]
	return &u, nil
}

// FindUserByID returns the user with this id.
func (s *UserStore) FindUserByID(ctx context.Context, id string) (*domainauth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return &u, nil
}

// Delete removes a user. It exists for tests exercising deleted accounts.
func (s *UserStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.byID, id)
	}
}

package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters, internal/data, internal/password and
// internal/token; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
)

// UserStore persists and looks up user records.
// Implementations must enforce email uniqueness and report a duplicate as a conflict
// (see internal/errors.IsConflict) and a missing record as not found.
type UserStore interface {
	CreateUser(ctx context.Context, in domainauth.NewUser) (*domainauth.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domainauth.User, error)
	FindUserByID(ctx context.Context, id string) (*domainauth.User, error)
}

// UserCache holds public user records keyed by id.
// A miss is reported as (nil, nil).
type UserCache interface {
	Get(ctx context.Context, id string) (*domainauth.PublicUser, error)
	Set(ctx context.Context, user domainauth.PublicUser, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way encoding of password.
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. Malformed input yields false.
	Verify(password, encoded string) bool
}

// TokenCodec signs session claims into opaque tokens and verifies them.
type TokenCodec interface {
	Sign(claim domainauth.SessionClaim) (string, error)
	// Verify returns the decoded claim, or an error for any malformed, forged or expired token.
	Verify(token string) (domainauth.SessionClaim, error)
}

package auth

// Package auth contains domain-level types for credentials, users and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// User is the stored account record. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"            db:"id"`
	Name         string    `json:"name"          db:"name"`
	Email        string    `json:"email"         db:"email"`
	PasswordHash string    `json:"-"             db:"password_hash"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// Public strips everything but the fields a client may see.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicUser is the only user shape returned to callers and cached.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser carries the fields needed to create a user record.
// PasswordHash must already be hashed.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// Credentials is the transient sign-in input. Never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims surrounding whitespace from the email. The password is kept verbatim.
func (c Credentials) Normalize() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	return c
}

// SignUpInput is the transient sign-up input. Never persisted.
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims surrounding whitespace from name and email. The password is kept verbatim.
func (in SignUpInput) Normalize() SignUpInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// SessionClaim is the payload authenticated by a session token.
type SessionClaim struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.PasswordHasher = (*FakeHasher)(nil)
	_ ports.UserCache      = (*MemoryUserCache)(nil)
)

// FakeHasher is a fast, salted stand-in for the Argon2id hasher.
// Hashes look like "fake$<n>$<password>"; never use outside tests.
type FakeHasher struct {
	HashFunc func(password string) (string, error)

	mu    sync.Mutex
	count int
	verifications int
}

// Hash returns a salted fake hash, or HashFunc's result when set.
func (h *FakeHasher) Hash(password string) (string, error) {
	if h.HashFunc != nil {
		return h.HashFunc(password)
	}
	h.mu.Lock()
	h.count++
	n := h.count
	h.mu.Unlock()
	return fmt.Sprintf("fake$%d$%s", n, password), nil
}

// Verify reports whether password is the one embedded in encoded.
func (h *FakeHasher) Verify(password, encoded string) bool {
	h.mu.Lock()
	h.verifications++
	h.mu.Unlock()

	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 || parts[0] != "fake" {
		return false
	}
	return parts[2] == password
}

// VerifyCount returns the number of Verify calls so far.
func (h *FakeHasher) VerifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifications
}

// MemoryUserCache is an in-memory ports.UserCache for unit tests.
// TTLs are recorded but never enforced.
type MemoryUserCache struct {
	mu    sync.Mutex
	users map[string]domainauth.PublicUser
	ttls  map[string]time.Duration

	// GetErr, when set, is returned from every Get.
	GetErr error
}

// NewMemoryUserCache creates an empty cache.
func NewMemoryUserCache() *MemoryUserCache {
	return &MemoryUserCache{
		users: make(map[string]domainauth.PublicUser),
		ttls:  make(map[string]time.Duration),
	}
}

func (c *MemoryUserCache) Get(_ context.Context, id string) (*domainauth.PublicUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	u, ok := c.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *MemoryUserCache) Set(_ context.Context, user domainauth.PublicUser, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.ID] = user
	c.ttls[user.ID] = ttl
	return nil
}

func (c *MemoryUserCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
	delete(c.ttls, id)
	return nil
}

// TTL returns the TTL recorded for id.
func (c *MemoryUserCache) TTL(id string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ttl, ok := c.ttls[id]
	return ttl, ok
}

// Len returns the number of cached users.
func (c *MemoryUserCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users)
}

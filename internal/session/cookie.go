// Package session maps session tokens to and from the HTTP cookie that carries them.
//
// The manager never touches a token's validity, only its transport. Cookie
// mutations are returned as values so callers decide when to write them.
package session

import (
	"net/http"
	"time"
)

const (
	// DefaultCookieName is the wire name of the session cookie.
	DefaultCookieName = "auth_token"
	// DefaultMaxAge is the client-side lifetime of a session cookie.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// CookieConfig configures a CookieManager.
type CookieConfig struct {
	Name   string
	Domain string
	MaxAge time.Duration
	// Secure adds the Secure attribute; enable in production.
	Secure bool
}

// CookieManager builds, clears and reads the session cookie.
type CookieManager struct {
	name   string
	domain string
	maxAge int
	secure bool
}

// NewCookieManager returns a manager with defaults applied for empty fields.
func NewCookieManager(cfg CookieConfig) *CookieManager {
	name := cfg.Name
	if name == "" {
		name = DefaultCookieName
	}
	maxAge := cfg.MaxAge
	// Sub-second values would serialize without a Max-Age attribute.
	if maxAge < time.Second {
		maxAge = DefaultMaxAge
	}
	return &CookieManager{
		name:   name,
		domain: cfg.Domain,
		maxAge: int(maxAge / time.Second),
		secure: cfg.Secure,
	}
}

// Name returns the cookie name.
func (m *CookieManager) Name() string { return m.name }

// Attach returns the cookie that stores token on the client.
// Setting it replaces any existing cookie of the same name.
func (m *CookieManager) Attach(token string) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Clear returns the cookie that expires the session cookie immediately.
// It mirrors the attributes used by Attach so browsers match and drop it.
func (m *CookieManager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   -1, // serialized as Max-Age=0
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Extract returns the token carried by r, or ok=false when the cookie is absent or empty.
func (m *CookieManager) Extract(r *http.Request) (token string, ok bool) {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Apply writes cookies to w in order.
func Apply(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

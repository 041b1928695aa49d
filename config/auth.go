package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// Secret holds sensitive text. It prints and logs as a placeholder.
type Secret string

// String implements fmt.Stringer.
func (Secret) String() string { return "[REDACTED]" }

// LogValue implements slog.LogValuer.
func (Secret) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// Bytes returns the raw secret.
func (s Secret) Bytes() []byte { return []byte(s) }

// PasswordConfig holds the Argon2id cost for new password hashes.
type PasswordConfig struct {
	MemoryKB    uint32 `env:"MEMORY_KB"   envDefault:"65536"`
	Time        uint32 `env:"TIME"        envDefault:"3"`
	Parallelism uint8  `env:"PARALLELISM" envDefault:"2"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// SigningSecret signs session tokens. Supplied out-of-band; never logged.
	SigningSecret Secret `env:"AUTH_SIGNING_SECRET"`

	// TokenTTL is the token lifetime. The cookie Max-Age stays at 7 days.
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"168h"`

	// TokenIssuer is written to and required in the iss claim.
	TokenIssuer string `env:"AUTH_TOKEN_ISSUER" envDefault:"novaauth"`

	// CookieName is the session cookie name.
	CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"auth_token"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"AUTH_COOKIE_DOMAIN" envDefault:""`

	Password PasswordConfig `envPrefix:"AUTH_PASSWORD_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.TokenTTL < time.Second {
		a.TokenTTL = 7 * 24 * time.Hour
	}
	if a.TokenIssuer == "" {
		a.TokenIssuer = "novaauth"
	}
	if a.CookieName == "" {
		a.CookieName = "auth_token"
	}
}

// Validate rejects a missing or weak signing secret.
func (a *AuthConfig) Validate() error {
	switch {
	case a.SigningSecret == "":
		return errors.New("AUTH_SIGNING_SECRET is required")
	case len(a.SigningSecret) < MinSecretLength:
		return fmt.Errorf("AUTH_SIGNING_SECRET must be at least %d bytes", MinSecretLength)
	}
	return nil
}

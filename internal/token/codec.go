// Package token signs session claims into compact HS256 JWTs and verifies them.
//
// A Codec is built once at startup from the configured secret and is
// immutable afterwards, so it is safe for concurrent use without locking.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
)

const (
	minSecretLen  = 32
	defaultIssuer = "novaauth"
	clockSkew     = time.Minute
)

var (
	// ErrInvalidToken is returned by Verify for any token that must not be trusted.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned by NewCodec when the secret is too short.
	ErrWeakSecret = fmt.Errorf("signing secret must be at least %d bytes", minSecretLen)
)

// Config configures a Codec.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Codec issues and verifies session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewCodec validates cfg and returns a Codec. The secret is copied.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	c := &Codec{
		secret: secret,
		ttl:    cfg.TTL,
		issuer: issuer,
		now:    now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(now),
		jwt.WithStrictDecoding(),
	)
	return c, nil
}

// TTL is the lifetime given to new tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign mints a token for claim. IssuedAt, ExpiresAt and TokenID are filled in
// when zero.
func (c *Codec) Sign(claim domainauth.SessionClaim) (string, error) {
	if claim.UserID == "" {
		return "", errors.New("session claim requires a user id")
	}
	issuedAt := claim.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = c.now()
	}
	expiresAt := claim.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(c.ttl)
	}
	tokenID := claim.TokenID
	if tokenID == "" {
		tokenID = uuid.NewString()
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.UserID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        tokenID,
		},
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer and lifetime of raw and returns its claim.
// Every failure is reported as ErrInvalidToken (wrapping the parser's reason).
func (c *Codec) Verify(raw string) (domainauth.SessionClaim, error) {
	if raw == "" {
		return domainauth.SessionClaim{}, ErrInvalidToken
	}

	claims := &sessionClaims{}
	tok, err := c.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil {
		return domainauth.SessionClaim{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return domainauth.SessionClaim{}, ErrInvalidToken
	}

	return domainauth.SessionClaim{
		UserID:    claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		TokenID:   claims.ID,
	}, nil
}

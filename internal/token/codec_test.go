package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(t *testing.T, clock *fakeClock) *Codec {
	t.Helper()
	c, err := NewCodec(Config{Secret: testSecret, TTL: 7 * 24 * time.Hour, Now: clock.Now})
	require.NoError(t, err)
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	claim := domainauth.SessionClaim{UserID: "user-123", IssuedAt: clock.t, TokenID: "tid-1"}
	raw, err := c.Sign(claim)
	require.NoError(t, err)

	got, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got.UserID)
	assert.Equal(t, "tid-1", got.TokenID)
	assert.True(t, got.IssuedAt.Equal(clock.t))
	assert.True(t, got.ExpiresAt.Equal(clock.t.Add(7*24*time.Hour)))
}

func TestCodec_SignFillsDefaults(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	first, err := c.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)
	second, err := c.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	// Random jti keeps two tokens for the same user distinct.
	assert.NotEqual(t, first, second)

	got, err := c.Verify(first)
	require.NoError(t, err)
	assert.NotEmpty(t, got.TokenID)
	assert.True(t, got.IssuedAt.Equal(clock.t))
}

func TestCodec_SignRequiresUserID(t *testing.T) {
	c := newTestCodec(t, &fakeClock{t: time.Now()})
	_, err := c.Sign(domainauth.SessionClaim{})
	assert.Error(t, err)
}

func TestCodec_AnyByteAlterationInvalidates(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	raw, err := c.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	for i := range len(raw) {
		b := []byte(raw)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, verr := c.Verify(string(b))
		assert.ErrorIs(t, verr, ErrInvalidToken, "byte %d", i)
	}
}

func TestCodec_RejectsNonCanonicalFinalCharacter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	raw, err := c.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	// Siblings of the last signature character differ only in the unused low
	// bits and decode to the same bytes under a lenient decoder.
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := len(raw) - 1
	for _, ch := range []byte(alphabet) {
		if ch == raw[last] {
			continue
		}
		tampered := raw[:last] + string(ch)
		_, verr := c.Verify(tampered)
		assert.ErrorIs(t, verr, ErrInvalidToken, "final character %q", ch)
	}
}

func TestCodec_RejectsWrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)
	other, err := NewCodec(Config{Secret: []byte(strings.Repeat("z", 32)), TTL: time.Hour, Now: clock.Now})
	require.NoError(t, err)

	raw, err := other.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsExpired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	raw, err := c.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	clock.t = clock.t.Add(7*24*time.Hour + 2*time.Minute)
	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestCodec_RejectsFutureIssuedAt(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	raw, err := c.Sign(domainauth.SessionClaim{UserID: "user-123", IssuedAt: clock.t.Add(time.Hour)})
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsOtherIssuer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)
	other, err := NewCodec(Config{Secret: testSecret, TTL: time.Hour, Issuer: "someone-else", Now: clock.Now})
	require.NoError(t, err)

	raw, err := other.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsAlgNone(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-123",
		Issuer:    defaultIssuer,
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsMissingExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c := newTestCodec(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "user-123",
		Issuer:   defaultIssuer,
		IssuedAt: jwt.NewNumericDate(clock.t),
	})
	raw, err := tok.SignedString(testSecret)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_MalformedInputIsInvalidNotPanic(t *testing.T) {
	c := newTestCodec(t, &fakeClock{t: time.Now()})
	junk := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256"}`))

	for _, raw := range []string{
		"",
		"not-a-token",
		"a.b.c",
		"....",
		junk + "." + junk + ".",
		strings.Repeat("x", 10_000),
	} {
		assert.NotPanics(t, func() {
			_, err := c.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
		})
	}
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := NewCodec(Config{Secret: []byte("short"), TTL: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewCodec(Config{Secret: testSecret})
	assert.Error(t, err)
}

func TestNewCodec_CopiesSecret(t *testing.T) {
	secret := append([]byte(nil), testSecret...)
	clock := &fakeClock{t: time.Unix(1_760_000_000, 0)}
	c, err := NewCodec(Config{Secret: secret, TTL: time.Hour, Now: clock.Now})
	require.NoError(t, err)

	raw, err := c.Sign(domainauth.SessionClaim{UserID: "user-123"})
	require.NoError(t, err)

	secret[0] ^= 0xff
	_, err = c.Verify(raw)
	assert.NoError(t, err)
}

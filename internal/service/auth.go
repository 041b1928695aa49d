package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	apperrors "github.com/Digitalmustiii/novaauthentication/internal/errors"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
	"github.com/Digitalmustiii/novaauthentication/internal/session"
)

// dummyPassword is hashed once at construction; sign-in for an unknown email
// verifies against that hash so both failure paths cost the same.
const dummyPassword = "novaauth-timing-equalizer"

const msgMissingFields = "Missing fields"

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users   ports.UserStore
	Hasher  ports.PasswordHasher
	Tokens  ports.TokenCodec
	Cookies *session.CookieManager
	Logger  *slog.Logger
}

// AuthService orchestrates sign-up, sign-in, sign-out and identity lookup.
type AuthService struct {
	users     ports.UserStore
	hasher    ports.PasswordHasher
	tokens    ports.TokenCodec
	cookies   *session.CookieManager
	resolver  *IdentityResolver
	logger    *slog.Logger
	dummyHash string
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("user store is required")
	}
	if opts.Hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token codec is required")
	}
	cookies := opts.Cookies
	if cookies == nil {
		cookies = session.NewCookieManager(session.CookieConfig{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dummy, err := opts.Hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:   opts.Users,
		hasher:  opts.Hasher,
		tokens:  opts.Tokens,
		cookies: cookies,
		resolver: NewIdentityResolver(IdentityResolverOptions{
			Users:   opts.Users,
			Tokens:  opts.Tokens,
			Cookies: cookies,
			Logger:  logger,
		}),
		logger:    logger.With("component", "auth_service"),
		dummyHash: dummy,
	}, nil
}

// AuthResult is returned by every auth operation. User is nil when there is
// no identity; Cookies must be written to the response in order.
type AuthResult struct {
	User    *domainauth.PublicUser
	Cookies []*http.Cookie
}

// SignUp registers a new account and starts a session for it.
func (s *AuthService) SignUp(ctx context.Context, input domainauth.SignUpInput) (*AuthResult, error) {
	in := input.Normalize()
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation(msgMissingFields)
	}

	existing, err := s.users.FindUserByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, apperrors.ConflictField("email", "Email already in use")
	case err != nil && !apperrors.IsNotFound(err):
		return nil, s.internal(ctx, err, "find user by email")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, err, "hash password")
	}

	user, err := s.users.CreateUser(ctx, domainauth.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// The pre-check races with concurrent sign-ups; the store has the final say.
		if apperrors.IsConflict(err) {
			return nil, apperrors.ConflictField("email", "Email already in use")
		}
		return nil, s.internal(ctx, err, "create user")
	}

	cookie, err := s.startSession(user.ID)
	if err != nil {
		return nil, s.internal(ctx, err, "sign session token")
	}

	s.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return &AuthResult{User: user.Public(), Cookies: []*http.Cookie{cookie}}, nil
}

// SignIn checks credentials and starts a session. Unknown email and wrong
// password fail with the same error.
func (s *AuthService) SignIn(ctx context.Context, input domainauth.Credentials) (*AuthResult, error) {
	creds := input.Normalize()
	if creds.Email == "" || creds.Password == "" {
		return nil, apperrors.Validation(msgMissingFields)
	}

	user, err := s.users.FindUserByEmail(ctx, creds.Email)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, s.internal(ctx, err, "find user by email")
	}
	if user == nil {
		s.hasher.Verify(creds.Password, s.dummyHash)
		return nil, apperrors.InvalidCredentials()
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	cookie, err := s.startSession(user.ID)
	if err != nil {
		return nil, s.internal(ctx, err, "sign session token")
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID)
	return &AuthResult{User: user.Public(), Cookies: []*http.Cookie{cookie}}, nil
}

// SignOut clears the session cookie. It is idempotent and never fails.
// Tokens are not revoked server-side; a copied token stays valid until it expires.
func (s *AuthService) SignOut(_ context.Context) *AuthResult {
	return &AuthResult{Cookies: []*http.Cookie{s.cookies.Clear()}}
}

// WhoAmI resolves the caller's identity. It never fails: an unreadable
// session is reported as no identity, and a store fault is logged.
func (s *AuthService) WhoAmI(ctx context.Context, r *http.Request) *AuthResult {
	res, err := s.resolver.Resolve(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "resolve identity", "error", err)
		return &AuthResult{}
	}
	return &AuthResult{User: res.User, Cookies: res.Cookies}
}

// Resolver exposes the identity resolver used by WhoAmI, for middleware.
func (s *AuthService) Resolver() *IdentityResolver { return s.resolver }

func (s *AuthService) startSession(userID string) (*http.Cookie, error) {
	token, err := s.tokens.Sign(domainauth.SessionClaim{UserID: userID})
	if err != nil {
		return nil, err
	}
	return s.cookies.Attach(token), nil
}

// internal logs err and returns a client-safe internal error. Context
// cancellation and deadlines keep their own codes.
func (s *AuthService) internal(ctx context.Context, err error, op string) error {
	switch {
	case apperrors.IsTimeout(err), apperrors.IsCanceled(err):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, op)
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, op)
	}
	s.logger.ErrorContext(ctx, "auth operation failed", "op", op, "error", err)
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, op)
}

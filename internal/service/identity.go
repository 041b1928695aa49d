package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	apperrors "github.com/Digitalmustiii/novaauthentication/internal/errors"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
	"github.com/Digitalmustiii/novaauthentication/internal/session"
)

// IdentityResolverOptions groups dependencies for IdentityResolver.
type IdentityResolverOptions struct {
	Users   ports.UserStore
	Tokens  ports.TokenCodec
	Cookies *session.CookieManager
	Logger  *slog.Logger
}

// IdentityResolver turns an inbound request into a verified user or no identity.
type IdentityResolver struct {
	users   ports.UserStore
	tokens  ports.TokenCodec
	cookies *session.CookieManager
	logger  *slog.Logger
}

// NewIdentityResolver constructs a new IdentityResolver.
func NewIdentityResolver(opts IdentityResolverOptions) *IdentityResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityResolver{
		users:   opts.Users,
		tokens:  opts.Tokens,
		cookies: opts.Cookies,
		logger:  logger.With("component", "identity_resolver"),
	}
}

// Resolution is the outcome of resolving a request.
// User is nil when there is no identity; Cookies lists cookie mutations the
// caller must write to the response.
type Resolution struct {
	User    *domainauth.PublicUser
	Cookies []*http.Cookie
}

// Resolve reads the session cookie from r and resolves it to a user.
//
//   - no cookie: no identity, no cookie mutation
//   - token fails verification: no identity, session cookie cleared
//   - token valid but user gone: no identity, no cookie mutation
//
// An error is returned only when the user store fails; "not logged in" is never an error.
func (r *IdentityResolver) Resolve(ctx context.Context, req *http.Request) (Resolution, error) {
	raw, ok := r.cookies.Extract(req)
	if !ok {
		return Resolution{}, nil
	}

	claim, err := r.tokens.Verify(raw)
	if err != nil {
		r.logger.DebugContext(ctx, "rejected session token", "error", err)
		return Resolution{Cookies: []*http.Cookie{r.cookies.Clear()}}, nil
	}

	user, err := r.users.FindUserByID(ctx, claim.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return Resolution{}, nil
		}
		return Resolution{}, fmt.Errorf("find user by id: %w", err)
	}
	if user == nil {
		return Resolution{}, nil
	}

	return Resolution{User: user.Public()}, nil
}

package httpx

import (
	"context"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
)

// userKey is an unexported context key type to avoid collisions across packages.
type userKey struct{}

// SetUserInContext returns a child context that carries the given user.
// If user is nil, the original ctx is returned unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.PublicUser) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserFromContext returns the authenticated user and whether one is present.
func GetUserFromContext(ctx context.Context) (*domainauth.PublicUser, bool) {
	if u, ok := ctx.Value(userKey{}).(*domainauth.PublicUser); ok && u != nil {
		return u, true
	}
	return nil, false
}

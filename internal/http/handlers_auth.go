package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	"github.com/Digitalmustiii/novaauthentication/internal/service"
	"github.com/Digitalmustiii/novaauthentication/internal/session"
)

// AuthServiceInterface defines the auth operations the handlers depend on.
type AuthServiceInterface interface {
	SignUp(ctx context.Context, in domainauth.SignUpInput) (*service.AuthResult, error)
	SignIn(ctx context.Context, in domainauth.Credentials) (*service.AuthResult, error)
	SignOut(ctx context.Context) *service.AuthResult
	WhoAmI(ctx context.Context, r *http.Request) *service.AuthResult
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type userResponse struct {
	User *domainauth.PublicUser `json:"user"`
}

// SignUp handles account registration.
// POST /signup {name, email, password} -> 201 {user}.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in domainauth.SignUpInput
	if !DecodeJSON(w, r, &in) {
		return
	}

	res, err := h.Svc.SignUp(r.Context(), in)
	if err != nil {
		h.writeFailure(w, r, "signup", err)
		return
	}

	session.Apply(w, res.Cookies)
	WriteJSON(w, http.StatusCreated, userResponse{User: res.User})
}

// SignIn handles credential sign-in.
// POST /signin {email, password} -> 200 {user}.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var in domainauth.Credentials
	if !DecodeJSON(w, r, &in) {
		return
	}

	res, err := h.Svc.SignIn(r.Context(), in)
	if err != nil {
		h.writeFailure(w, r, "signin", err)
		return
	}

	session.Apply(w, res.Cookies)
	WriteJSON(w, http.StatusOK, userResponse{User: res.User})
}

// SignOut clears the session cookie. Any request body is ignored.
// POST /signout -> 200 {success: true}.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	res := h.Svc.SignOut(r.Context())
	session.Apply(w, res.Cookies)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me reports the caller's identity as placed in the request context by
// OptionalAuth.
// GET /me -> 200 {user | null}.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())
	WriteJSON(w, http.StatusOK, userResponse{User: user})
}

// whoAmIResolver adapts AuthServiceInterface.WhoAmI to IdentityResolver for
// routers built without a dedicated resolver.
type whoAmIResolver struct {
	svc AuthServiceInterface
}

func (w whoAmIResolver) Resolve(ctx context.Context, r *http.Request) (service.Resolution, error) {
	res := w.svc.WhoAmI(ctx, r)
	if res == nil {
		return service.Resolution{}, nil
	}
	return service.Resolution{User: res.User, Cookies: res.Cookies}, nil
}

func (h *AuthHandlers) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	if StatusForError(err) >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "auth request failed", "op", op, "error", err)
	}
	WriteAppError(w, err)
}

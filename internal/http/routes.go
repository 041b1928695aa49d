package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth AuthServiceInterface
	// Identity resolves the caller for GET /me. When nil, Auth.WhoAmI is used.
	Identity IdentityResolver
	Logger   *slog.Logger
}

// authPrefixes lists the mount points for the auth routes. The /api/auth
// prefix matches the paths the existing frontend calls.
var authPrefixes = []string{"", "/api/auth"}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		identity := services.Identity
		if identity == nil {
			identity = whoAmIResolver{svc: services.Auth}
		}
		registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Logger: services.Logger}, identity)
	}

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, identity IdentityResolver) {
	me := OptionalAuth(identity, h.logger())(http.HandlerFunc(h.Me))
	for _, prefix := range authPrefixes {
		mux.HandleFunc("POST "+prefix+"/signup", h.SignUp)
		mux.HandleFunc("POST "+prefix+"/signin", h.SignIn)
		mux.HandleFunc("POST "+prefix+"/signout", h.SignOut)
		mux.Handle("GET "+prefix+"/me", me)
	}
}

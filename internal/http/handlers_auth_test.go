package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	apperrors "github.com/Digitalmustiii/novaauthentication/internal/errors"
	"github.com/Digitalmustiii/novaauthentication/internal/service"
	"github.com/Digitalmustiii/novaauthentication/internal/session"
)

var testCookies = session.NewCookieManager(session.CookieConfig{})

var testUser = &domainauth.PublicUser{ID: "u-1", Name: "Ada", Email: "a@x.io"}

// mockAuthService is a test double for service.AuthService.
type mockAuthService struct {
	signUpFunc  func(ctx context.Context, in domainauth.SignUpInput) (*service.AuthResult, error)
	signInFunc  func(ctx context.Context, in domainauth.Credentials) (*service.AuthResult, error)
	whoAmIFunc  func(ctx context.Context, r *http.Request) *service.AuthResult
	signOutHits int
}

func (m *mockAuthService) SignUp(ctx context.Context, in domainauth.SignUpInput) (*service.AuthResult, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, in)
	}
	return &service.AuthResult{User: testUser, Cookies: []*http.Cookie{testCookies.Attach("tok")}}, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, in domainauth.Credentials) (*service.AuthResult, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, in)
	}
	return &service.AuthResult{User: testUser, Cookies: []*http.Cookie{testCookies.Attach("tok")}}, nil
}

func (m *mockAuthService) SignOut(context.Context) *service.AuthResult {
	m.signOutHits++
	return &service.AuthResult{Cookies: []*http.Cookie{testCookies.Clear()}}
}

func (m *mockAuthService) WhoAmI(ctx context.Context, r *http.Request) *service.AuthResult {
	if m.whoAmIFunc != nil {
		return m.whoAmIFunc(ctx, r)
	}
	return &service.AuthResult{}
}

func serve(t *testing.T, svc AuthServiceInterface, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewRouter(RouterServices{Auth: svc}).ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthHandlers_SignUp_Created(t *testing.T) {
	var got domainauth.SignUpInput
	svc := &mockAuthService{signUpFunc: func(_ context.Context, in domainauth.SignUpInput) (*service.AuthResult, error) {
		got = in
		return &service.AuthResult{User: testUser, Cookies: []*http.Cookie{testCookies.Attach("tok")}}, nil
	}}

	rec := serve(t, svc, http.MethodPost, "/signup", `{"name":"Ada","email":"a@x.io","password":"Secr3t!"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"user":{"id":"u-1","name":"Ada","email":"a@x.io"}}`, rec.Body.String())
	assert.Equal(t, domainauth.SignUpInput{Name: "Ada", Email: "a@x.io", Password: "Secr3t!"}, got)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "auth_token=tok")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAuthHandlers_SignUp_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing fields",
			err:        apperrors.Validation("Missing fields"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"validation","message":"Missing fields"}`,
		},
		{
			name:       "duplicate email",
			err:        apperrors.ConflictField("email", "Email already in use"),
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"conflict","message":"Email already in use"}`,
		},
		{
			name:       "internal fault is not leaked",
			err:        apperrors.Wrap(errors.New("dial tcp 10.0.0.7:5432: refused"), apperrors.ErrCodeInternal, "create user"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal","message":"internal server error"}`,
		},
		{
			name:       "unclassified error is internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal","message":"internal server error"}`,
		},
		{
			name:       "timeout",
			err:        apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeTimeout, "find user"),
			wantStatus: http.StatusGatewayTimeout,
			wantBody:   `{"error":"timeout","message":"request timed out"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{signUpFunc: func(context.Context, domainauth.SignUpInput) (*service.AuthResult, error) {
				return nil, tt.err
			}}

			rec := serve(t, svc, http.MethodPost, "/signup", `{"name":"Ada","email":"a@x.io","password":"p"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Empty(t, rec.Header().Get("Set-Cookie"))
		})
	}
}

func TestAuthHandlers_BadBodies(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "empty body", body: "", wantStatus: http.StatusBadRequest},
		{name: "not json", body: "email=a", wantStatus: http.StatusBadRequest},
		{name: "wrong type", body: `{"email":1,"password":"p"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"email":"a@x.io","password":"p","admin":true}`, wantStatus: http.StatusBadRequest},
		{name: "trailing data", body: `{"email":"a@x.io","password":"p"}{}`, wantStatus: http.StatusBadRequest},
		{name: "too large", body: `{"email":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{signInFunc: func(context.Context, domainauth.Credentials) (*service.AuthResult, error) {
				t.Fatal("service must not be called")
				return nil, nil
			}}

			rec := serve(t, svc, http.MethodPost, "/signin", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestAuthHandlers_SignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rec := serve(t, &mockAuthService{}, http.MethodPost, "/signin", `{"email":"a@x.io","password":"p"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":{"id":"u-1","name":"Ada","email":"a@x.io"}}`, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "auth_token=tok")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &mockAuthService{signInFunc: func(context.Context, domainauth.Credentials) (*service.AuthResult, error) {
			return nil, apperrors.InvalidCredentials()
		}}

		rec := serve(t, svc, http.MethodPost, "/signin", `{"email":"a@x.io","password":"p"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid_credentials","message":"Invalid credentials"}`, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
	})
}

func TestAuthHandlers_SignOut(t *testing.T) {
	svc := &mockAuthService{}

	rec := serve(t, svc, http.MethodPost, "/signout", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Equal(t, 1, svc.signOutHits)
}

func TestAuthHandlers_Me(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		rec := serve(t, &mockAuthService{}, http.MethodGet, "/me", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":null}`, rec.Body.String())
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
	})

	t.Run("signed in", func(t *testing.T) {
		svc := &mockAuthService{whoAmIFunc: func(context.Context, *http.Request) *service.AuthResult {
			return &service.AuthResult{User: testUser}
		}}

		rec := serve(t, svc, http.MethodGet, "/me", "")

		assert.JSONEq(t, `{"user":{"id":"u-1","name":"Ada","email":"a@x.io"}}`, rec.Body.String())
	})

	t.Run("clears cookie when told to", func(t *testing.T) {
		svc := &mockAuthService{whoAmIFunc: func(context.Context, *http.Request) *service.AuthResult {
			return &service.AuthResult{Cookies: []*http.Cookie{testCookies.Clear()}}
		}}

		rec := serve(t, svc, http.MethodGet, "/me", "")

		assert.JSONEq(t, `{"user":null}`, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "auth_token=;")
	})
}

func TestAuthRoutes_MeUsesIdentityResolver(t *testing.T) {
	svc := &mockAuthService{whoAmIFunc: func(context.Context, *http.Request) *service.AuthResult {
		t.Fatal("WhoAmI must not be called when a resolver is configured")
		return nil
	}}
	router := NewRouter(RouterServices{
		Auth:     svc,
		Identity: staticResolver(service.Resolution{User: testUser}, nil),
	})

	for _, path := range []string{"/me", "/api/auth/me"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"user":{"id":"u-1","name":"Ada","email":"a@x.io"}}`, rec.Body.String(), path)
	}
}

func TestAuthRoutes_MeStoreFaultIsAnonymous(t *testing.T) {
	router := NewRouter(RouterServices{
		Auth:     &mockAuthService{},
		Identity: staticResolver(service.Resolution{}, errors.New("db down")),
		Logger:   slog.New(slog.DiscardHandler),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestAuthRoutes_APIPrefix(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{method: http.MethodPost, path: "/api/auth/signup", body: `{"name":"Ada","email":"a@x.io","password":"p"}`, wantStatus: http.StatusCreated},
		{method: http.MethodPost, path: "/api/auth/signin", body: `{"email":"a@x.io","password":"p"}`, wantStatus: http.StatusOK},
		{method: http.MethodPost, path: "/api/auth/signout", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/api/auth/me", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(t, &mockAuthService{}, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuthRoutes_MethodNotAllowed(t *testing.T) {
	rec := serve(t, &mockAuthService{}, http.MethodGet, "/signin", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(t, &mockAuthService{}, http.MethodPost, "/me", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

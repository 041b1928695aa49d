package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieManager_AttachAttributes(t *testing.T) {
	m := NewCookieManager(CookieConfig{})

	c := m.Attach("tok-123")

	assert.Equal(t, "auth_token", c.Name)
	assert.Equal(t, "tok-123", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestCookieManager_AttachWireFormat(t *testing.T) {
	tests := []struct {
		name       string
		secure     bool
		wantSecure bool
	}{
		{name: "development", secure: false, wantSecure: false},
		{name: "production", secure: true, wantSecure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewCookieManager(CookieConfig{Secure: tt.secure})
			w := httptest.NewRecorder()
			Apply(w, []*http.Cookie{m.Attach("tok-123")})

			header := w.Header().Get("Set-Cookie")
			assert.True(t, strings.HasPrefix(header, "auth_token=tok-123"), header)
			assert.Contains(t, header, "Path=/")
			assert.Contains(t, header, "Max-Age=604800")
			assert.Contains(t, header, "HttpOnly")
			assert.Contains(t, header, "SameSite=Lax")
			assert.Equal(t, tt.wantSecure, strings.Contains(header, "Secure"), header)
		})
	}
}

func TestCookieManager_ClearWireFormat(t *testing.T) {
	m := NewCookieManager(CookieConfig{Secure: true})
	w := httptest.NewRecorder()
	Apply(w, []*http.Cookie{m.Clear()})

	header := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "auth_token=;"), header)
	assert.Contains(t, header, "Max-Age=0")
	assert.Contains(t, header, "Path=/")
}

func TestCookieManager_ClearIsStable(t *testing.T) {
	m := NewCookieManager(CookieConfig{})
	assert.Equal(t, m.Clear(), m.Clear())
}

func TestCookieManager_SubSecondMaxAgeUsesDefault(t *testing.T) {
	m := NewCookieManager(CookieConfig{MaxAge: 500 * time.Millisecond})

	w := httptest.NewRecorder()
	Apply(w, []*http.Cookie{m.Attach("v")})
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=604800")
}

func TestCookieManager_CustomConfig(t *testing.T) {
	m := NewCookieManager(CookieConfig{Name: "sid", Domain: "example.com", MaxAge: time.Hour})

	c := m.Attach("v")
	assert.Equal(t, "sid", c.Name)
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Equal(t, "sid", m.Name())
	assert.Equal(t, "example.com", m.Clear().Domain)
}

func TestCookieManager_Extract(t *testing.T) {
	m := NewCookieManager(CookieConfig{})

	t.Run("present", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok-123"})
		tok, ok := m.Extract(r)
		require.True(t, ok)
		assert.Equal(t, "tok-123", tok)
	})

	t.Run("absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.AddCookie(&http.Cookie{Name: "other", Value: "x"})
		_, ok := m.Extract(r)
		assert.False(t, ok)
	})

	t.Run("empty value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Cookie", "auth_token=")
		_, ok := m.Extract(r)
		assert.False(t, ok)
	})
}

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Digitalmustiii/novaauthentication/config"
)

func TestBuildHTTPServer_Defaults(t *testing.T) {
	comps, err := BuildAuthService(AuthConfig{Config: testAppConfig(), Logger: discardLogger()})
	if err != nil {
		t.Fatalf("BuildAuthService() error = %v", err)
	}

	server := BuildHTTPServer(HTTPServerConfig{Auth: comps.Service, Logger: discardLogger()})

	assert.Equal(t, ":8080", server.Addr)
	assert.Positive(t, server.ReadTimeout)
	assert.Positive(t, server.WriteTimeout)
	assert.Positive(t, server.IdleTimeout)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
}

func TestShutdownHTTPServer_Nil(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(context.Background(), nil, discardLogger()))
}

func TestBuildHTTPServer_CustomAddr(t *testing.T) {
	server := BuildHTTPServer(HTTPServerConfig{HTTP: config.HTTPConfig{Addr: "127.0.0.1:9999"}})
	assert.Equal(t, "127.0.0.1:9999", server.Addr)
}

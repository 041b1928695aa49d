package bootstrap

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Digitalmustiii/novaauthentication/config"
)

func TestRun_ServesUntilCanceled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := testAppConfig()
	cfg.HTTP.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, RunConfig{Config: cfg, Logger: discardLogger(), Listener: ln}) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, getErr := http.Get(base + "/healthz")
		if getErr != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(base+"/signup", "application/json",
		strings.NewReader(`{"name":"A","email":"a@x.com","password":"Secr3t!"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	assert.Error(t, Run(context.Background(), RunConfig{}))
}

func TestRun_FailsOnBadWiring(t *testing.T) {
	cfg := testAppConfig()
	cfg.Auth.SigningSecret = "short"

	err := Run(context.Background(), RunConfig{Config: cfg, Logger: discardLogger()})
	assert.ErrorContains(t, err, "token codec")
}

func TestInfrastructure_CloseEmpty(t *testing.T) {
	assert.NoError(t, (&Infrastructure{}).Close())
}

func TestConnectInfrastructure_MemoryNeedsNothing(t *testing.T) {
	infra, err := ConnectInfrastructure(context.Background(), testAppConfig(), discardLogger())
	require.NoError(t, err)
	assert.Nil(t, infra.DB)
	assert.Nil(t, infra.Redis)
}

func TestApplyLogLevel(t *testing.T) {
	t.Cleanup(func() { ApplyLogLevel(nil) })

	ApplyLogLevel(&config.AppConfig{Env: config.EnvProduction})
	assert.Equal(t, "INFO", logLevel.Level().String())

	ApplyLogLevel(&config.AppConfig{Env: config.EnvDevelopment})
	assert.Equal(t, "DEBUG", logLevel.Level().String())
}

package main

import (
	"context"
	"errors"

	"github.com/Digitalmustiii/novaauthentication/internal/bootstrap"
	"github.com/Digitalmustiii/novaauthentication/internal/data"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
)

// storeHandle is an open user store plus whatever must be closed with it.
type storeHandle struct {
	Users ports.UserStore
	// Cache is nil unless the user cache is enabled.
	Cache *data.CachedUserStore
	close func() error
}

func (h *storeHandle) Close() error {
	if h == nil || h.close == nil {
		return nil
	}
	return h.close()
}

func openConfiguredStore(ctx context.Context, cmdCtx *commandContext) (*storeHandle, error) {
	infra, err := bootstrap.ConnectInfrastructure(ctx, &cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return nil, err
	}
	users, cache, err := bootstrap.BuildUserStore(bootstrap.AuthConfig{
		Config:      &cmdCtx.Config,
		DB:          infra.DB,
		RedisClient: infra.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, infra.Close())
	}
	return &storeHandle{Users: users, Cache: cache, close: infra.Close}, nil
}

// withStore opens the user store, runs fn and closes the store.
func withStore(cmdCtx *commandContext, fn func(ctx context.Context, h *storeHandle) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	h, err := cmdCtx.openStore(ctx, cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("close store failed", "error", closeErr)
		}
	}()
	return fn(ctx, h)
}

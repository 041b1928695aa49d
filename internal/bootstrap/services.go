package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/Digitalmustiii/novaauthentication/config"
)

// RunConfig contains everything Run needs to serve requests.
type RunConfig struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// Listener overrides HTTP.Addr; tests pass a port-0 listener.
	Listener net.Listener
}

// Infrastructure holds shared connections. Either field may be nil when the
// configuration does not need it.
type Infrastructure struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// Close releases all connections.
func (i *Infrastructure) Close() error {
	var errs []error
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ConnectInfrastructure opens the Postgres and Redis connections cfg needs
// and applies migrations when enabled.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	if cfg.NeedsPostgres() {
		db, err := ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db

		if cfg.Postgres.RunMigrationsOnStart {
			if err = RunMigrations(ctx, db, logger); err != nil {
				return nil, errors.Join(err, infra.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	if cfg.NeedsRedis() {
		client, err := ConnectRedis(ctx, dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
		infra.Redis = client
	}

	return infra, nil
}

// Run connects infrastructure, wires the auth service and serves HTTP until
// ctx is canceled or the server fails. In-flight requests get
// HTTP.ShutdownTimeout to finish.
func Run(ctx context.Context, cfg RunConfig) error {
	if cfg.Config == nil {
		return errors.New("app config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	infra, err := ConnectInfrastructure(ctx, appCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			logger.Error("close infrastructure failed", "error", cerr)
		}
	}()

	comps, err := BuildAuthService(AuthConfig{
		Config:      appCfg,
		DB:          infra.DB,
		RedisClient: infra.Redis,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpCfg := appCfg.HTTP
	httpCfg.Sanitize()
	server := BuildHTTPServer(HTTPServerConfig{
		HTTP:     httpCfg,
		Auth:     comps.Service,
		Identity: comps.Service.Resolver(),
		Logger:   logger,
	})

	ln := cfg.Listener
	if ln == nil {
		var lc net.ListenConfig
		if ln, err = lc.Listen(ctx, "tcp", server.Addr); err != nil {
			return fmt.Errorf("listen on %s: %w", server.Addr, err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- ServeHTTP(server, ln, logger) }()

	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpCfg.ShutdownTimeout)
	defer cancel()
	if err = ShutdownHTTPServer(shutdownCtx, server, logger); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

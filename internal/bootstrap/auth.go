package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Digitalmustiii/novaauthentication/config"
	"github.com/Digitalmustiii/novaauthentication/internal/adapters/memory"
	redisadapter "github.com/Digitalmustiii/novaauthentication/internal/adapters/redis"
	"github.com/Digitalmustiii/novaauthentication/internal/data"
	"github.com/Digitalmustiii/novaauthentication/internal/password"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
	"github.com/Digitalmustiii/novaauthentication/internal/service"
	"github.com/Digitalmustiii/novaauthentication/internal/session"
	"github.com/Digitalmustiii/novaauthentication/internal/token"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents are the pieces BuildAuthService assembles. The admin CLI
// uses Users and Hasher directly.
type AuthComponents struct {
	Service *service.AuthService
	Users   ports.UserStore
	Hasher  *password.Hasher
	// Cache is nil unless CACHE_USER_ENABLED is set.
	Cache *data.CachedUserStore
}

// BuildAuthService wires the user store, hasher, token codec and cookie
// manager into an AuthService according to cfg.
func BuildAuthService(cfg AuthConfig) (*AuthComponents, error) {
	if cfg.Config == nil {
		return nil, errors.New("app config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	users, cache, err := BuildUserStore(cfg)
	if err != nil {
		return nil, err
	}

	hasher, err := BuildHasher(appCfg.Auth.Password)
	if err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		Secret: appCfg.Auth.SigningSecret.Bytes(),
		TTL:    appCfg.Auth.TokenTTL,
		Issuer: appCfg.Auth.TokenIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("create token codec: %w", err)
	}

	cookies := session.NewCookieManager(session.CookieConfig{
		Name:   appCfg.Auth.CookieName,
		Domain: appCfg.Auth.CookieDomain,
		Secure: appCfg.IsProduction(),
	})

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Users:   users,
		Hasher:  hasher,
		Tokens:  codec,
		Cookies: cookies,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create auth service: %w", err)
	}

	logger.Info("auth service configured",
		"user_store", appCfg.UserStore,
		"user_cache", cache != nil,
		"token_ttl", appCfg.Auth.TokenTTL,
		"secure_cookie", appCfg.IsProduction(),
	)

	return &AuthComponents{Service: svc, Users: users, Hasher: hasher, Cache: cache}, nil
}

// BuildUserStore returns the configured user store, wrapped in a Redis-backed
// cache when enabled.
//
//nolint:ireturn // the store implementation is chosen at runtime.
func BuildUserStore(cfg AuthConfig) (ports.UserStore, *data.CachedUserStore, error) {
	appCfg := cfg.Config

	switch appCfg.UserStore {
	case config.UserStoreMemory:
		return memory.NewUserStore(), nil, nil
	case config.UserStorePostgres, "":
	default:
		return nil, nil, fmt.Errorf("unknown user store %q", appCfg.UserStore)
	}

	if cfg.DB == nil {
		return nil, nil, errors.New("postgres user store requires a database connection")
	}
	repo := data.NewUserRepo(cfg.DB)
	if !appCfg.Cache.UserEnabled {
		return repo, nil, nil
	}

	if cfg.RedisClient == nil {
		return nil, nil, errors.New("user cache requires a redis connection")
	}
	cached := data.NewCachedUserStore(data.CachedUserStoreOptions{
		Store:  repo,
		Cache:  redisadapter.NewUserCache(cfg.RedisClient),
		TTL:    appCfg.Cache.UserTTL,
		Logger: cfg.Logger,
	})
	return cached, cached, nil
}

// BuildHasher returns an Argon2id hasher with the configured cost.
func BuildHasher(cfg config.PasswordConfig) (*password.Hasher, error) {
	p := password.DefaultParams()
	p.MemoryKB = cfg.MemoryKB
	p.Time = cfg.Time
	p.Parallelism = cfg.Parallelism

	h, err := password.NewHasher(p)
	if err != nil {
		return nil, fmt.Errorf("create password hasher: %w", err)
	}
	return h, nil
}

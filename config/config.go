package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment names the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default for local runs.
	EnvDevelopment Environment = "development"
	// EnvProduction enables Secure cookies and Info-level logging.
	EnvProduction Environment = "production"
	// EnvTest is used by CI and test harnesses.
	EnvTest Environment = "test"
)

// UnmarshalText implements encoding.TextUnmarshaler for Environment.
func (e *Environment) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "development", "dev":
		*e = EnvDevelopment
	case "production", "prod":
		*e = EnvProduction
	case "test":
		*e = EnvTest
	default:
		return fmt.Errorf("invalid Environment: %q (valid options: development, production, test)", v)
	}
	return nil
}

// UserStoreMode selects the user store backend.
type UserStoreMode string

const (
	// UserStorePostgres keeps users in PostgreSQL.
	UserStorePostgres UserStoreMode = "postgres"
	// UserStoreMemory keeps users in process memory; data is lost on restart.
	UserStoreMemory UserStoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for UserStoreMode.
func (m *UserStoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "memory":
		*m = UserStoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid UserStoreMode: %q (valid options: postgres, memory)", v)
	}
}

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: signing secret, token lifetime, cookie and password cost
//   - database.go: Postgres, Redis and user cache configuration
//   - http.go: HTTP server configuration
type AppConfig struct {
	// Env is the deployment environment. NODE_ENV is honoured when APP_ENV is unset.
	Env Environment `env:"APP_ENV" envDefault:"development"`

	// UserStore selects where accounts live.
	UserStore UserStoreMode `env:"USER_STORE" envDefault:"postgres"`

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Cache.Sanitize()
	c.Auth.Sanitize()
	c.detectEnvironment()
}

// detectEnvironment falls back to NODE_ENV when APP_ENV is not set.
// Older deployments only ever exported NODE_ENV.
func (c *AppConfig) detectEnvironment() {
	if _, ok := os.LookupEnv("APP_ENV"); ok {
		return
	}
	var env Environment
	if err := env.UnmarshalText([]byte(os.Getenv("NODE_ENV"))); err == nil {
		c.Env = env
	}
}

// IsProduction reports whether the service runs in production.
func (c *AppConfig) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate reports configuration that cannot be started with.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.UserStore == UserStoreMemory && c.IsProduction() {
		errs = append(errs, errors.New("USER_STORE=memory is not allowed in production"))
	}
	if c.Cache.UserEnabled && c.UserStore == UserStoreMemory {
		errs = append(errs, errors.New("CACHE_USER_ENABLED requires USER_STORE=postgres"))
	}
	return errors.Join(errs...)
}

// NeedsPostgres reports whether a database connection is required.
func (c *AppConfig) NeedsPostgres() bool {
	return c.UserStore == UserStorePostgres
}

// NeedsRedis reports whether a Redis connection is required.
func (c *AppConfig) NeedsRedis() bool {
	return c.Cache.UserEnabled
}

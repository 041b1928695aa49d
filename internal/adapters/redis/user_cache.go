package redis

// Package redis provides Redis-based adapters for novaauth.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	"github.com/redis/go-redis/v9"
)

// DefaultUserCachePrefix namespaces cached user records.
const DefaultUserCachePrefix = "novaauth:user:"

// UserCache is a Redis-backed cache of public user records.
// Password hashes are never written to Redis; only PublicUser is stored.
type UserCache struct {
	client redis.UniversalClient
	prefix string
}

// NewUserCache creates a Redis user cache with the default key prefix.
func NewUserCache(client redis.UniversalClient) *UserCache {
	return &UserCache{
		client: client,
		prefix: DefaultUserCachePrefix,
	}
}

// NewUserCacheWithPrefix creates a Redis user cache with a custom key prefix.
func NewUserCacheWithPrefix(client redis.UniversalClient, prefix string) *UserCache {
	return &UserCache{
		client: client,
		prefix: prefix,
	}
}

// Get returns the cached user, or (nil, nil) on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*domainauth.PublicUser, error) {
	if id == "" {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var user domainauth.PublicUser
	if unmarshalErr := json.Unmarshal(data, &user); unmarshalErr != nil {
		// A corrupt entry is dropped and treated as a miss.
		if delErr := c.Delete(ctx, id); delErr != nil {
			return nil, fmt.Errorf("drop corrupt user entry: %w", delErr)
		}
		return nil, nil
	}
	if user.ID != id {
		return nil, nil
	}
	return &user, nil
}

// Set stores user for ttl. A non-positive ttl is rejected so entries never live forever.
func (c *UserCache) Set(ctx context.Context, user domainauth.PublicUser, ttl time.Duration) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return c.client.Set(ctx, c.prefix+user.ID, data, ttl).Err()
}

// Delete evicts id. Deleting a missing key is not an error.
func (c *UserCache) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+id).Err()
}

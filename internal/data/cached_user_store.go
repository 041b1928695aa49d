package data

import (
	"context"
	"log/slog"
	"time"

	domainauth "github.com/Digitalmustiii/novaauthentication/internal/domain/auth"
	"github.com/Digitalmustiii/novaauthentication/internal/ports"
	"golang.org/x/sync/singleflight"
)

// DefaultUserCacheTTL bounds how long a renamed or deleted user can still resolve from cache.
const DefaultUserCacheTTL = 5 * time.Minute

// DefaultSharedLookupTimeout bounds a store lookup shared by concurrent misses.
const DefaultSharedLookupTimeout = 5 * time.Second

// CachedUserStoreOptions groups dependencies for CachedUserStore.
type CachedUserStoreOptions struct {
	Store  ports.UserStore
	Cache  ports.UserCache
	TTL    time.Duration
	// LookupTimeout bounds a shared store lookup, which does not follow any
	// single caller's cancellation.
	LookupTimeout time.Duration
	Logger        *slog.Logger
}

// CachedUserStore fronts a UserStore with a read-through cache for lookups by ID.
//
// Only public fields are cached, so users served from the cache have an empty
// PasswordHash. FindUserByEmail always reads the underlying store because
// sign-in needs the hash. Cache faults are logged and never fail a lookup.
type CachedUserStore struct {
	store  ports.UserStore
	cache  ports.UserCache
	ttl    time.Duration
	lookup time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

var _ ports.UserStore = (*CachedUserStore)(nil)

// NewCachedUserStore creates a CachedUserStore.
func NewCachedUserStore(opts CachedUserStoreOptions) *CachedUserStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	lookup := opts.LookupTimeout
	if lookup <= 0 {
		lookup = DefaultSharedLookupTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedUserStore{
		store:  opts.Store,
		cache:  opts.Cache,
		ttl:    ttl,
		lookup: lookup,
		logger: logger.With("component", "user_cache"),
	}
}

// CreateUser creates the user in the store and writes it through to the cache.
func (s *CachedUserStore) CreateUser(ctx context.Context, in domainauth.NewUser) (*domainauth.User, error) {
	u, err := s.store.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.put(ctx, u)
	return u, nil
}

// FindUserByEmail reads the underlying store directly.
func (s *CachedUserStore) FindUserByEmail(ctx context.Context, email string) (*domainauth.User, error) {
	return s.store.FindUserByEmail(ctx, email)
}

// FindUserByID serves from cache when possible. Concurrent misses for the same
// id share one store lookup. The shared lookup runs detached from the caller
// that started it, so a canceled caller returns ctx.Err() without failing the
// others.
func (s *CachedUserStore) FindUserByID(ctx context.Context, id string) (*domainauth.User, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "user cache get failed", "user_id", id, "error", err)
	}
	if cached != nil {
		return &domainauth.User{ID: cached.ID, Name: cached.Name, Email: cached.Email}, nil
	}

	ch := s.group.DoChan(id, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookup)
		defer cancel()

		u, findErr := s.store.FindUserByID(lookupCtx, id)
		if findErr != nil {
			return nil, findErr
		}
		s.put(lookupCtx, u)
		return u, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		found, _ := res.Val.(*domainauth.User)
		if found == nil {
			return nil, nil
		}
		u := *found
		return &u, nil
	}
}

// Evict drops id from the cache.
func (s *CachedUserStore) Evict(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, id)
}

func (s *CachedUserStore) put(ctx context.Context, u *domainauth.User) {
	if u == nil {
		return
	}
	if err := s.cache.Set(ctx, *u.Public(), s.ttl); err != nil {
		s.logger.WarnContext(ctx, "user cache set failed", "user_id", u.ID, "error", err)
	}
}

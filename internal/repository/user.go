// Package repository implements the cached façades in front of the data
// sources. Repositories are explicitly constructed and injected; they hold
// the only shared mutable state in the data layer, and every
// check-cache-else-fetch-and-populate sequence is atomic per key.
package repository

import (
	"context"
	"image"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/devidclub/devid-go/internal/cache"
	"github.com/devidclub/devid-go/internal/metrics"
	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

// UserSource is the data source contract the user repository wraps.
type UserSource interface {
	GetByID(ctx context.Context, id string) result.Result[models.User]
	GetByUserName(ctx context.Context, name string) result.Result[models.User]
	ProfilePicture(ctx context.Context, id string) result.Result[image.Image]
}

// UserRepository caches users under both their id and their user name.
// Entries are never invalidated except by capacity eviction; staleness is
// an accepted limitation.
type UserRepository struct {
	source UserSource
	byID   cache.Store[models.User]
	byName cache.Store[models.User]
	group  singleflight.Group
	logger zerolog.Logger
}

// UserOption configures a UserRepository.
type UserOption func(*UserRepository)

// WithUserLogger sets the repository logger.
func WithUserLogger(logger zerolog.Logger) UserOption {
	return func(r *UserRepository) { r.logger = logger }
}

// WithUserStores replaces both cache stores, e.g. with Redis-backed ones.
// The two stores are then maintained independently (no paired eviction).
func WithUserStores(byID, byName cache.Store[models.User]) UserOption {
	return func(r *UserRepository) {
		r.byID = byID
		r.byName = byName
	}
}

// WithUserCacheCapacity sizes the default in-memory stores.
func WithUserCacheCapacity(capacity int) UserOption {
	return func(r *UserRepository) {
		r.byID, r.byName = newPairedUserStores(capacity)
	}
}

// newPairedUserStores builds the default memory store pair: evicting a user
// from the id store also drops their user name entry, so the two caches
// never drift apart.
func newPairedUserStores(capacity int) (cache.Store[models.User], cache.Store[models.User]) {
	byName := cache.NewMemory[models.User](capacity)
	byID := cache.NewMemory[models.User](capacity, cache.WithOnEvict[models.User](
		func(_ string, user models.User) {
			_ = byName.Remove(context.Background(), user.UserName)
			metrics.CacheEvictionsTotal.WithLabelValues("user").Inc()
		},
	))
	return byID, byName
}

// NewUserRepository creates a user repository with in-memory caches of the
// default capacity unless configured otherwise.
func NewUserRepository(source UserSource, opts ...UserOption) *UserRepository {
	r := &UserRepository{source: source, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.byID == nil {
		r.byID, r.byName = newPairedUserStores(cache.DefaultCapacity)
	}
	return r
}

// GetByID returns the cached user when present, otherwise fetches and
// populates both caches. Concurrent misses for the same id share one
// upstream call.
func (r *UserRepository) GetByID(ctx context.Context, id string) result.Result[models.User] {
	return r.lookup(ctx, r.byID, "id:"+id, id, r.source.GetByID)
}

// GetByUserName is the user-name counterpart of GetByID.
func (r *UserRepository) GetByUserName(ctx context.Context, name string) result.Result[models.User] {
	return r.lookup(ctx, r.byName, "name:"+name, name, r.source.GetByUserName)
}

// ProfilePicture passes through to the data source; pictures are not
// cached in memory.
func (r *UserRepository) ProfilePicture(ctx context.Context, id string) result.Result[image.Image] {
	return r.source.ProfilePicture(ctx, id)
}

// ClearCache drops every cached user.
func (r *UserRepository) ClearCache(ctx context.Context) error {
	if err := r.byID.Clear(ctx); err != nil {
		return err
	}
	return r.byName.Clear(ctx)
}

func (r *UserRepository) lookup(
	ctx context.Context,
	store cache.Store[models.User],
	flightKey, cacheKey string,
	fetch func(context.Context, string) result.Result[models.User],
) result.Result[models.User] {
	if user, ok, err := store.Get(ctx, cacheKey); err == nil && ok {
		metrics.CacheHitsTotal.WithLabelValues("user").Inc()
		return result.Success(user)
	} else if err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("user cache read failed")
	}
	metrics.CacheMissesTotal.WithLabelValues("user").Inc()

	v, err, _ := r.group.Do(flightKey, func() (any, error) {
		user, err := fetch(ctx, cacheKey).Get()
		if err != nil {
			return nil, err
		}
		r.store(ctx, user)
		return user, nil
	})
	if err != nil {
		return result.Failure[models.User](err)
	}
	return result.Success(v.(models.User))
}

func (r *UserRepository) store(ctx context.Context, user models.User) {
	if err := r.byID.Put(ctx, user.ID, user); err != nil {
		r.logger.Warn().Err(err).Str("user_id", user.ID).Msg("user cache write failed")
	}
	if err := r.byName.Put(ctx, user.UserName, user); err != nil {
		r.logger.Warn().Err(err).Str("user_name", user.UserName).Msg("user cache write failed")
	}
}

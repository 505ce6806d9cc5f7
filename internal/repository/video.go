package repository

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/devidclub/devid-go/internal/cache"
	"github.com/devidclub/devid-go/internal/metrics"
	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

// VideoSource is the data source contract the video repository wraps.
type VideoSource interface {
	GetByID(ctx context.Context, id string) result.Result[models.Video]
	Vote(ctx context.Context, id string, rating models.Rating) result.Result[models.Video]
}

// VideoRepository caches video metadata by id. Votes pass through without
// touching the cache: the cached entry keeps the counters from its fetch
// until it is evicted.
type VideoRepository struct {
	source VideoSource
	store  cache.Store[models.Video]
	group  singleflight.Group
	logger zerolog.Logger
}

// VideoOption configures a VideoRepository.
type VideoOption func(*VideoRepository)

// WithVideoLogger sets the repository logger.
func WithVideoLogger(logger zerolog.Logger) VideoOption {
	return func(r *VideoRepository) { r.logger = logger }
}

// WithVideoStore replaces the cache store, e.g. with a Redis-backed one.
func WithVideoStore(store cache.Store[models.Video]) VideoOption {
	return func(r *VideoRepository) { r.store = store }
}

// WithVideoCacheCapacity sizes the default in-memory store.
func WithVideoCacheCapacity(capacity int) VideoOption {
	return func(r *VideoRepository) {
		r.store = newVideoMemoryStore(capacity)
	}
}

func newVideoMemoryStore(capacity int) cache.Store[models.Video] {
	return cache.NewMemory[models.Video](capacity, cache.WithOnEvict[models.Video](
		func(string, models.Video) {
			metrics.CacheEvictionsTotal.WithLabelValues("video").Inc()
		},
	))
}

// NewVideoRepository creates a video repository with an in-memory cache of
// the default capacity unless configured otherwise.
func NewVideoRepository(source VideoSource, opts ...VideoOption) *VideoRepository {
	r := &VideoRepository{source: source, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = newVideoMemoryStore(cache.DefaultCapacity)
	}
	return r
}

// GetByID returns the cached video when present, otherwise fetches and
// populates the cache. Concurrent misses for the same id share one
// upstream call; errors are never cached.
func (r *VideoRepository) GetByID(ctx context.Context, id string) result.Result[models.Video] {
	if video, ok, err := r.store.Get(ctx, id); err == nil && ok {
		metrics.CacheHitsTotal.WithLabelValues("video").Inc()
		return result.Success(video)
	} else if err != nil {
		r.logger.Warn().Err(err).Str("video_id", id).Msg("video cache read failed")
	}
	metrics.CacheMissesTotal.WithLabelValues("video").Inc()

	v, err, _ := r.group.Do(id, func() (any, error) {
		video, err := r.source.GetByID(ctx, id).Get()
		if err != nil {
			return nil, err
		}
		if err := r.store.Put(ctx, id, video); err != nil {
			r.logger.Warn().Err(err).Str("video_id", id).Msg("video cache write failed")
		}
		return video, nil
	})
	if err != nil {
		return result.Failure[models.Video](err)
	}
	return result.Success(v.(models.Video))
}

// Vote casts the caller's vote and returns the updated video metadata.
func (r *VideoRepository) Vote(ctx context.Context, id string, rating models.Rating) result.Result[models.Video] {
	return r.source.Vote(ctx, id, rating)
}

// ClearCache drops every cached video.
func (r *VideoRepository) ClearCache(ctx context.Context) error {
	return r.store.Clear(ctx)
}

// Package cache provides a read-through decorator for a URL registry.
//
// Lookups go to an in-process ristretto cache first, then to Redis, and only
// then to the wrapped registry. Concurrent misses for the same identifier
// share one registry call. Stored records never change their origin URL, so
// entries are only evicted by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix           = "url:"
	defaultFetchTimeout = 5 * time.Second
)

type urlRepository interface {
	GetOrCreate(ctx context.Context, originalURL string) (*entity.URL, error)
	GetByID(ctx context.Context, id int64) (*entity.URL, error)
}

type Option func(*URLRepository)

// WithLocal enables the in-process cache level.
func WithLocal(c *ristretto.Cache, ttl time.Duration) Option {
	return func(r *URLRepository) {
		r.local = c
		r.localTTL = ttl
	}
}

// WithRedis enables the shared cache level.
func WithRedis(client *redis.Client, ttl time.Duration) Option {
	return func(r *URLRepository) {
		r.redis = client
		r.redisTTL = ttl
	}
}

// WithFetchTimeout bounds a shared registry lookup, which no longer follows
// the cancellation of any single caller.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *URLRepository) {
		r.fetchTimeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *URLRepository) {
		r.logger = logger
	}
}

type URLRepository struct {
	next     urlRepository
	local    *ristretto.Cache
	localTTL time.Duration
	redis    *redis.Client
	redisTTL time.Duration
	group    singleflight.Group
	logger   *slog.Logger

	fetchTimeout time.Duration
}

func NewURLRepository(next urlRepository, opts ...Option) *URLRepository {
	r := &URLRepository{
		next:         next,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		fetchTimeout: defaultFetchTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NewLocal builds a ristretto cache sized for maxItems records.
func NewLocal(maxItems int64) (*ristretto.Cache, error) {
	const op = "adapter.repository.cache.NewLocal"

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// GetOrCreate always reaches the wrapped registry and primes the caches with
// the result.
func (r *URLRepository) GetOrCreate(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.cache.URLRepository.GetOrCreate"

	url, err := r.next.GetOrCreate(ctx, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.store(ctx, url)

	return url, nil
}

func (r *URLRepository) GetByID(ctx context.Context, id int64) (*entity.URL, error) {
	const op = "adapter.repository.cache.URLRepository.GetByID"

	if url, ok := r.getLocal(id); ok {
		return url, nil
	}

	if url, ok := r.getRedis(ctx, id); ok {
		r.setLocal(url)
		return url, nil
	}

	// Not-found results are never cached: the id may be issued later.
	// The shared lookup ignores cancellation of the caller that started it;
	// each caller stops waiting on its own context.
	ch := r.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		url, err := r.next.GetByID(fetchCtx, id)
		if err != nil {
			return nil, err
		}

		r.store(fetchCtx, url)

		return *url, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, res.Err)
		}

		url := res.Val.(entity.URL)
		return &url, nil
	}
}

func (r *URLRepository) store(ctx context.Context, url *entity.URL) {
	r.setLocal(url)
	r.setRedis(ctx, url)
}

func (r *URLRepository) getLocal(id int64) (*entity.URL, bool) {
	if r.local == nil {
		return nil, false
	}

	v, ok := r.local.Get(id)
	if !ok {
		return nil, false
	}

	url, ok := v.(entity.URL)
	if !ok {
		return nil, false
	}

	return &url, true
}

func (r *URLRepository) setLocal(url *entity.URL) {
	if r.local == nil {
		return
	}

	r.local.SetWithTTL(url.ID, *url, 1, r.localTTL)
}

type redisRecord struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func redisKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (r *URLRepository) getRedis(ctx context.Context, id int64) (*entity.URL, bool) {
	if r.redis == nil {
		return nil, false
	}

	data, err := r.redis.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "failed to read url from redis", slog.Int64("id", id), slog.Any("err", err))
		}
		return nil, false
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.WarnContext(ctx, "failed to decode cached url", slog.Int64("id", id), slog.Any("err", err))
		return nil, false
	}

	return &entity.URL{
		ID:          rec.ID,
		OriginalURL: rec.OriginalURL,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, true
}

func (r *URLRepository) setRedis(ctx context.Context, url *entity.URL) {
	if r.redis == nil {
		return
	}

	data, err := json.Marshal(redisRecord{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		CreatedAt:   url.CreatedAt,
		UpdatedAt:   url.UpdatedAt,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to encode url for redis", slog.Int64("id", url.ID), slog.Any("err", err))
		return
	}

	if err := r.redis.Set(ctx, redisKey(url.ID), data, r.redisTTL).Err(); err != nil {
		r.logger.WarnContext(ctx, "failed to write url to redis", slog.Int64("id", url.ID), slog.Any("err", err))
	}
}

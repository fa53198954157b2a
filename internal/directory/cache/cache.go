// Package cache is a read-through Redis decorator for a directory.Directory.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"certportal/internal/certificate/models"
	"certportal/internal/directory"
	id "certportal/pkg/domain"
)

const (
	learnerKeyPrefix = "directory:learner:"
	courseKeyPrefix  = "directory:course:"
)

// Cached serves lookups from Redis and falls through to the wrapped directory
// for misses. Redis failures degrade to direct lookups.
type Cached struct {
	inner  directory.Directory
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Cached)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cached) {
		c.logger = logger
	}
}

func New(inner directory.Directory, client redis.Cmdable, ttl time.Duration, opts ...Option) *Cached {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &Cached{inner: inner, client: client, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cached) Learners(ctx context.Context, ids []id.LearnerID) (map[id.LearnerID]models.Learner, error) {
	return readThrough(ctx, c, directory.Unique(ids), learnerKeyPrefix, c.inner.Learners)
}

func (c *Cached) Courses(ctx context.Context, ids []id.CourseID) (map[id.CourseID]models.Course, error) {
	return readThrough(ctx, c, directory.Unique(ids), courseKeyPrefix, c.inner.Courses)
}

func readThrough[K interface {
	comparable
	String() string
}, V any](
	ctx context.Context,
	c *Cached,
	ids []K,
	prefix string,
	load func(context.Context, []K) (map[K]V, error),
) (map[K]V, error) {
	out := make(map[K]V, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, v := range ids {
		keys[i] = prefix + v.String()
	}

	misses := ids
	if vals, err := c.client.MGet(ctx, keys...).Result(); err != nil {
		c.logger.WarnContext(ctx, "directory cache read failed", "error", err)
	} else {
		misses = misses[:0:0]
		for i, raw := range vals {
			s, ok := raw.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			var v V
			if err := json.Unmarshal([]byte(s), &v); err != nil {
				misses = append(misses, ids[i])
				continue
			}
			out[ids[i]] = v
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := load(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := c.client.Pipeline()
	for k, v := range loaded {
		out[k] = v
		body, err := json.Marshal(v)
		if err != nil {
			continue
		}
		pipe.Set(ctx, prefix+k.String(), body, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "directory cache write failed", "error", err)
	}
	return out, nil
}

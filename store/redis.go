package store

import (
	"context"
	"errors"
	"net/url"

	"github.com/redis/go-redis/v9"

	"github.com/ardnew/maillist/pkg"
)

// DefaultKey is the Redis key used when a target URL has no key parameter.
const DefaultKey = "maillist:lists"

// Redis is a [Store] holding the registry text in a single Redis string key.
type Redis struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to the server named by a redis:// or rediss:// URL.
// The key is taken from the URL's key query parameter, e.g.
// redis://localhost:6379/0?key=lists. Remaining parameters are passed to
// [redis.ParseURL].
func OpenRedis(ctx context.Context, target string) (*Redis, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, pkg.ErrInvalidTarget.Wrap(err)
	}

	q := u.Query()

	key := q.Get("key")
	if key == "" {
		key = DefaultKey
	}

	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, pkg.ErrInvalidTarget.Wrap(err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, pkg.ErrInvalidTarget.Wrapf("redis ping failed: %w", err)
	}

	return NewRedis(client, key), nil
}

// NewRedis returns a store that keeps its text under key using client.
// The store owns client and closes it on [Redis.Close].
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}

	return &Redis{client: client, key: key}
}

// Key returns the Redis key holding the registry text.
func (r *Redis) Key() string { return r.key }

// Load returns the stored text. A missing key loads as "".
func (r *Redis) Load(ctx context.Context) (string, error) {
	text, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}

		return "", pkg.ErrReadInput.Wrap(err)
	}

	return text, nil
}

// Save replaces the stored text.
func (r *Redis) Save(ctx context.Context, text string) error {
	if err := r.client.Set(ctx, r.key, text, 0).Err(); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// Health reports whether the server answers a ping.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

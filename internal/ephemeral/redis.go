package ephemeral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared by every API instance. Values are JSON encoded.
type Redis[V any] struct {
	Client redis.Cmdable
	Prefix string
}

func NewRedis[V any](client redis.Cmdable, prefix string) *Redis[V] {
	return &Redis[V]{Client: client, Prefix: prefix}
}

func (r *Redis[V]) key(k string) string {
	return r.Prefix + k
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var out V
	b, err := r.Client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return out, true, nil
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.Client.Set(ctx, r.key(key), b, ttl).Err()
}

func (r *Redis[V]) SetNX(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.Client.SetNX(ctx, r.key(key), b, ttl).Result()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.Client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var incrScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisCounter runs INCR and the first-hit PEXPIRE atomically in one script.
type RedisCounter struct {
	Client redis.Scripter
	Prefix string
}

func NewRedisCounter(client redis.Scripter, prefix string) *RedisCounter {
	return &RedisCounter{Client: client, Prefix: prefix}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, c.Client, []string{c.Prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("redis incr %s: unexpected reply", key)
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return res[0], ttl, nil
}

// OpenRedis parses a redis:// URL and pings the server.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Package redislock implements a small Redis lock: SET NX PX to take it and Lua
// scripts that only refresh or release it for the token holder.
package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "brushwork:lock:"
	defaultTTL    = 30 * time.Second
)

var errEmpty = errors.New("lock key and token are required")

type Client struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// New returns a lock client. An empty prefix or non-positive ttl selects the defaults.
func New(rdb redis.Cmdable, prefix string, ttl time.Duration) *Client {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Client{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Client) Key(name string) string {
	return c.prefix + strings.TrimSpace(name)
}

func Token() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func (c *Client) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if key == "" || token == "" {
		return false, errEmpty
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.rdb.SetNX(ctx, key, token, ttl).Result()
}

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
  return 0
end
`)

// Refresh extends the lock when token still holds it.
func (c *Client) Refresh(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if key == "" || token == "" {
		return false, errEmpty
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	n, err := refreshScript.Run(ctx, c.rdb, []string{key}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// Release deletes the lock when token still holds it.
func (c *Client) Release(ctx context.Context, key, token string) (bool, error) {
	if key == "" || token == "" {
		return false, errEmpty
	}
	n, err := releaseScript.Run(ctx, c.rdb, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// TryLock takes the named lock once without waiting. ok is false when someone
// else holds it. The returned unlock releases it on a fresh context.
func (c *Client) TryLock(ctx context.Context, name string) (unlock func(), ok bool, err error) {
	token, err := Token()
	if err != nil {
		return nil, false, err
	}
	key := c.Key(name)
	ok, err = c.Acquire(ctx, key, token, c.ttl)
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = c.Release(ctx, key, token)
	}, true, nil
}

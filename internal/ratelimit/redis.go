package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "callup:cooldown:"

// checkAndReserveScript performs the read-decide-write in one server-side
// step. Returns -1 when the submission is allowed (and the timestamp has been
// recorded), otherwise the remaining cooldown in milliseconds.
var checkAndReserveScript = redis.NewScript(`
local last = redis.call('GET', KEYS[1])
local now = tonumber(ARGV[1])
local cooldown = tonumber(ARGV[2])
if last then
	local elapsed = now - tonumber(last)
	if elapsed < cooldown then
		return cooldown - elapsed
	end
end
redis.call('SET', KEYS[1], ARGV[1])
return -1
`)

// RedisStore is the Redis-backed cooldown ledger.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, timeout: defaultOpTimeout}, nil
}

// CheckAndReserve implements Store.
func (s *RedisStore) CheckAndReserve(ctx context.Context, userID string, now time.Time, cooldown time.Duration) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	remaining, err := checkAndReserveScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + userID},
		now.UnixMilli(), cooldown.Milliseconds(),
	).Int64()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if remaining < 0 {
		return Outcome{Allowed: true}, nil
	}
	return Outcome{Remaining: time.Duration(remaining) * time.Millisecond}, nil
}

// Client exposes the underlying client for shared use (flood limiting,
// health checks).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Ping checks whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
